package figure

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/mitchellh/go-wordwrap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/nedved1/rpma/internal/figure/mappings"
	"github.com/nedved1/rpma/internal/logging"
)

// Canvas geometry shared by all figures: 6.4in x 4.8in at 200 DPI with a
// small layout pad.
const (
	canvasWidth  = 6.4 * vg.Inch
	canvasHeight = 4.8 * vg.Inch
	canvasDPI    = 200
	canvasPad    = 6 * vg.Millimeter

	titleWrapColumns = 60
)

// ToPNG renders the figure as a line chart to <file>_<key>.png in the
// result directory.
func (f *Figure) ToPNG(resultDir string) error {
	logger := logging.GetLogger()

	p := plot.New()
	p.Title.Text = wordwrap.WrapString(f.Output.Title, titleWrapColumns)
	p.Title.TextStyle.Font.Size = vg.Points(10)
	p.Title.Padding = vg.Points(6)

	var xvalues []float64
	for i, series := range f.Series {
		pts := make(plotter.XYs, len(series.Points))
		for j, point := range series.Points {
			pts[j].X = point.X
			pts[j].Y = point.Y
			xvalues = append(xvalues, point.X)
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("figure %s: failed to build series %s: %w", f.Output.Key, series.Label, err)
		}
		line.Color = plotutil.Color(i)
		points.Color = plotutil.Color(i)
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(1.5)

		p.Add(line, points)
		p.Legend.Add(series.Label, line, points)
	}

	// Linear scale only; every x value present in any series gets a tick.
	p.X.Tick.Marker = plot.ConstantTicks(xTicks(xvalues))
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	p.X.Label.Text = mappings.Label(f.Output.X)
	p.Y.Label.Text = mappings.Label(f.Output.Y)
	p.Y.Min = 0

	p.Legend.TextStyle.Font.Size = vg.Points(6)
	p.Add(plotter.NewGrid())

	canvas := vgimg.NewWith(
		vgimg.UseWH(canvasWidth, canvasHeight),
		vgimg.UseDPI(canvasDPI),
	)
	dc := draw.New(canvas)
	dc = draw.Crop(dc, canvasPad, -canvasPad, canvasPad, -canvasPad)
	p.Draw(dc)

	output := filepath.Join(resultDir, f.Output.File+"_"+f.Output.Key+".png")
	w, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create figure file: %w", err)
	}
	defer w.Close()

	png := vgimg.PngCanvas{Canvas: canvas}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write figure file %s: %w", output, err)
	}

	logger.WithField("output", output).Debug("Figure rendered")
	return nil
}

// xTicks builds the tick set from the sorted, deduplicated union of the
// x values of all series.
func xTicks(xvalues []float64) []plot.Tick {
	seen := make(map[float64]bool, len(xvalues))
	var unique []float64
	for _, x := range xvalues {
		if !seen[x] {
			unique = append(unique, x)
			seen[x] = true
		}
	}
	sort.Float64s(unique)

	ticks := make([]plot.Tick, len(unique))
	for i, x := range unique {
		ticks[i] = plot.Tick{Value: x, Label: strconv.FormatFloat(x, 'f', -1, 64)}
	}
	return ticks
}
