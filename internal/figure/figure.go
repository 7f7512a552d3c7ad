// Package figure turns flattened figure configurations into series data and
// rendered chart files.
package figure

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nedved1/rpma/internal/flat"
)

// ErrMissingData reports that a figure marked done has no entry in the
// series cache file.
var ErrMissingData = errors.New("missing cached series data")

// Output is the core descriptor of a figure. Done defaults to false.
type Output struct {
	Title string
	File  string
	X     string
	Y     string
	Key   string
	Done  bool
}

// Point is one (x, y) pair of a series. It marshals as the two-element
// array [x, y] to keep the cache file format stable.
type Point struct {
	X float64
	Y float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}

// SeriesData is one labeled, extracted line of a figure.
type SeriesData struct {
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

// Figure is one chart specification plus its associated series data.
//
// A figure is either pending (raw series spec retained, no points yet) or
// done (points already extracted and cached). PrepareSeries moves a pending
// figure to done; done is terminal.
type Figure struct {
	Output Output

	// Series holds the extracted plot data. Populated by PrepareSeries for
	// a pending figure, or read from the cache file for a done one.
	Series []SeriesData

	raw  map[string]any
	spec []map[string]any
}

// New builds a Figure from one flattened figure configuration. For a done
// figure the series data is read from the cache file in resultDir; a
// missing file or key yields an error wrapping ErrMissingData.
func New(raw map[string]any, resultDir string) (*Figure, error) {
	out, ok := raw["output"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("figure config has no output descriptor")
	}

	output := Output{}
	for _, field := range []struct {
		name string
		dst  *string
	}{
		{"title", &output.Title},
		{"file", &output.File},
		{"x", &output.X},
		{"y", &output.Y},
		{"key", &output.Key},
	} {
		v, ok := out[field.name].(string)
		if !ok || v == "" {
			return nil, fmt.Errorf("figure config: output.%s is required", field.name)
		}
		*field.dst = v
	}
	output.Done, _ = out["done"].(bool)

	f := &Figure{Output: output, raw: raw}

	if !output.Done {
		spec, err := seriesSpec(raw["series"])
		if err != nil {
			return nil, fmt.Errorf("figure %s: %w", output.Key, err)
		}
		f.spec = spec
		return f, nil
	}

	entry, err := readCacheEntry(f.cachePath(resultDir), output.Key)
	if err != nil {
		return nil, err
	}
	f.Series = entry.Series
	return f, nil
}

// Flatten expands a list of raw figure configs into concrete figures, in
// expansion order and without deduplication. Each config's output
// descriptor is expanded over its list-valued parameters and templated;
// the nested series list is then expanded the same way against the
// figure's series_common base, with derive supplying derived fields for
// placeholder substitution.
func Flatten(raws []map[string]any, resultDir string, derive flat.Derivatives) ([]*Figure, error) {
	expanded := flat.MakeFlat(raws, "output", nil)
	expanded = flat.ProcessFstrings(expanded, "output", nil)

	var figures []*Figure
	for _, cfg := range expanded {
		// Done figures read their series from the cache; only pending ones
		// carry a raw spec to expand.
		done := false
		if out, ok := cfg["output"].(map[string]any); ok {
			done, _ = out["done"].(bool)
		}
		if !done {
			series, err := seriesSpec(cfg["series"])
			if err != nil {
				return nil, fmt.Errorf("figure config: %w", err)
			}
			common, _ := cfg["series_common"].(map[string]any)

			series = flat.MakeFlat(series, "", common)
			series = flat.ProcessFstrings(series, "", derive)
			cfg["series"] = series
		}

		figure, err := New(cfg, resultDir)
		if err != nil {
			return nil, err
		}
		figures = append(figures, figure)
	}
	return figures, nil
}

// OneseriesDerivatives is the stock derivation function: it maps a boolean
// rw field to an rw_order of "rand" or "seq", when present.
func OneseriesDerivatives(desc map[string]any) map[string]any {
	out := map[string]any{}
	if rw, ok := desc["rw"].(bool); ok {
		if rw {
			out["rw_order"] = "rand"
		} else {
			out["rw_order"] = "seq"
		}
	}
	return out
}

// IsDone reports whether series extraction has already run.
func (f *Figure) IsDone() bool {
	return f.Output.Done
}

// Cache returns the current state of execution for persisting the figure
// config list. The underlying map reflects the done transition performed
// by PrepareSeries.
func (f *Figure) Cache() map[string]any {
	return f.raw
}

func seriesSpec(v any) ([]map[string]any, error) {
	switch list := v.(type) {
	case []map[string]any:
		return list, nil
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, entry := range list {
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("series entry is not a mapping: %v", entry)
			}
			out = append(out, m)
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("series list is required")
	default:
		return nil, fmt.Errorf("series is not a list: %v", v)
	}
}

func toFloat64(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case int:
		return float64(val)
	default:
		return 0
	}
}
