package figure

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nedved1/rpma/internal/flat"
	"github.com/nedved1/rpma/internal/logging"
	"github.com/nedved1/rpma/internal/results"
)

// cacheEntry is one figure's record in the series cache file.
type cacheEntry struct {
	Title  string       `json:"title"`
	X      string       `json:"x"`
	Y      string       `json:"y"`
	Series []SeriesData `json:"series"`
}

func (f *Figure) cachePath(resultDir string) string {
	return filepath.Join(resultDir, f.Output.File+".json")
}

// PrepareSeries extracts all series of the figure from their benchmark
// result files and appends the assembled entry to the series cache file.
//
// A missing result file is fatal for the whole figure. A series whose first
// row lacks the figure's x or y column is skipped silently and omitted from
// the output, even if later rows contain it.
func (f *Figure) PrepareSeries(resultDir string) error {
	if f.Output.Done {
		return fmt.Errorf("figure %s: series already prepared", f.Output.Key)
	}

	logger := logging.GetLogger()

	out := cacheEntry{
		Title:  f.Output.Title,
		X:      f.Output.X,
		Y:      f.Output.Y,
		Series: []SeriesData{},
	}

	for _, oneseries := range f.spec {
		id, ok := oneseries["id"]
		if !ok {
			return fmt.Errorf("figure %s: series entry has no id", f.Output.Key)
		}

		rows, err := results.Load(resultDir, flat.FormatValue(id))
		if err != nil {
			return fmt.Errorf("figure %s: %w", f.Output.Key, err)
		}

		columns := results.Columns(rows)
		if !columns[f.Output.X] || !columns[f.Output.Y] {
			logger.WithField("id", flat.FormatValue(id)).Debug("Series lacks required columns, skipping")
			continue
		}

		points := make([]Point, 0, len(rows))
		for _, row := range rows {
			points = append(points, Point{
				X: toFloat64(row[f.Output.X]),
				Y: toFloat64(row[f.Output.Y]),
			})
		}

		label, _ := oneseries["label"].(string)
		out.Series = append(out.Series, SeriesData{Label: label, Points: points})
	}

	if err := f.writeCacheEntry(resultDir, out); err != nil {
		return err
	}

	f.Series = out.Series
	f.Output.Done = true
	if desc, ok := f.raw["output"].(map[string]any); ok {
		desc["done"] = true
	}

	logger.WithField("key", f.Output.Key).Debug("Series prepared and cached")
	return nil
}

// writeCacheEntry inserts the figure's entry into the cache file, keeping
// the entries of every other figure that shares it.
func (f *Figure) writeCacheEntry(resultDir string, entry cacheEntry) error {
	path := f.cachePath(resultDir)

	figures := map[string]cacheEntry{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &figures); err != nil {
			return fmt.Errorf("failed to parse series cache file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// First figure to use this cache file.
	default:
		return fmt.Errorf("failed to read series cache file: %w", err)
	}

	figures[f.Output.Key] = entry

	out, err := json.MarshalIndent(figures, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode series cache: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write series cache file: %w", err)
	}
	return nil
}

// readCacheEntry loads one figure's entry from the cache file. An absent
// file or key yields an error wrapping ErrMissingData.
func readCacheEntry(path, key string) (cacheEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cacheEntry{}, fmt.Errorf("%w: series cache file %s does not exist", ErrMissingData, path)
		}
		return cacheEntry{}, fmt.Errorf("failed to read series cache file: %w", err)
	}

	figures := map[string]cacheEntry{}
	if err := json.Unmarshal(data, &figures); err != nil {
		return cacheEntry{}, fmt.Errorf("failed to parse series cache file %s: %w", path, err)
	}

	entry, ok := figures[key]
	if !ok {
		return cacheEntry{}, fmt.Errorf("%w: key %s not present in %s", ErrMissingData, key, path)
	}
	return entry, nil
}
