package figure

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func rawFigure(title, file, x, y, key string, series []any) map[string]any {
	return map[string]any{
		"output": map[string]any{
			"title": title,
			"file":  file,
			"x":     x,
			"y":     y,
			"key":   key,
		},
		"series": series,
	}
}

func TestNew_MissingRequiredField(t *testing.T) {
	raw := map[string]any{
		"output": map[string]any{
			"title": "t", "file": "f", "x": "bs", "y": "iops",
		},
		"series": []any{},
	}
	if _, err := New(raw, t.TempDir()); err == nil {
		t.Fatalf("expected error for missing output.key")
	}
}

func TestNew_PendingKeepsSeriesSpec(t *testing.T) {
	raw := rawFigure("t", "f", "bs", "iops", "k", []any{
		map[string]any{"id": 1, "label": "one"},
	})

	f, err := New(raw, t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f.IsDone() {
		t.Fatalf("fresh figure must be pending")
	}
	if len(f.spec) != 1 || f.spec[0]["label"] != "one" {
		t.Fatalf("series spec not retained: %v", f.spec)
	}
}

func TestNew_DoneWithoutCacheFile(t *testing.T) {
	raw := rawFigure("t", "f", "bs", "iops", "k", nil)
	raw["output"].(map[string]any)["done"] = true

	_, err := New(raw, t.TempDir())
	if err == nil {
		t.Fatalf("expected error for missing cache file")
	}
	if !errors.Is(err, ErrMissingData) {
		t.Fatalf("expected ErrMissingData, got %v", err)
	}
}

func TestNew_DoneWithMissingKey(t *testing.T) {
	dir := t.TempDir()
	cache := `{"other": {"title": "o", "x": "bs", "y": "iops", "series": []}}`
	if err := os.WriteFile(filepath.Join(dir, "f.json"), []byte(cache), 0644); err != nil {
		t.Fatalf("failed to seed cache file: %v", err)
	}

	raw := rawFigure("t", "f", "bs", "iops", "k", nil)
	raw["output"].(map[string]any)["done"] = true

	_, err := New(raw, dir)
	if !errors.Is(err, ErrMissingData) {
		t.Fatalf("expected ErrMissingData for absent key, got %v", err)
	}
}

func TestNew_DoneReadsSeriesFromCache(t *testing.T) {
	dir := t.TempDir()
	cache := `{"k": {"title": "t", "x": "bs", "y": "iops",
		"series": [{"label": "one", "points": [[4, 100], [8, 150]]}]}}`
	if err := os.WriteFile(filepath.Join(dir, "f.json"), []byte(cache), 0644); err != nil {
		t.Fatalf("failed to seed cache file: %v", err)
	}

	raw := rawFigure("t", "f", "bs", "iops", "k", nil)
	raw["output"].(map[string]any)["done"] = true

	f, err := New(raw, dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(f.Series) != 1 || f.Series[0].Label != "one" {
		t.Fatalf("cached series not loaded: %v", f.Series)
	}
	if f.Series[0].Points[1] != (Point{X: 8, Y: 150}) {
		t.Fatalf("cached points not loaded: %v", f.Series[0].Points)
	}
}

func TestFlatten_ExpansionCountAndOrder(t *testing.T) {
	raws := []map[string]any{
		{
			"output": map[string]any{
				"title": "iops for {x}", "file": "fig", "key": "sweep_{x}",
				"x": []any{"bs", "threads"}, "y": "iops",
			},
			"series": []any{map[string]any{"id": 1, "label": "one"}},
		},
		{
			"output": map[string]any{
				"title": "latency", "file": "fig", "key": "lat",
				"x": "bs", "y": "lat_avg",
			},
			"series": []any{map[string]any{"id": 2, "label": "two"}},
		},
	}

	figures, err := Flatten(raws, t.TempDir(), OneseriesDerivatives)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(figures) != 3 {
		t.Fatalf("expected 3 figures, got %d", len(figures))
	}

	wantKeys := []string{"sweep_bs", "sweep_threads", "lat"}
	for i, key := range wantKeys {
		if figures[i].Output.Key != key {
			t.Fatalf("figure %d: expected key %q, got %q", i, key, figures[i].Output.Key)
		}
	}
	if figures[0].Output.Title != "iops for bs" {
		t.Fatalf("descriptor templating failed: %q", figures[0].Output.Title)
	}
	if figures[0].Output.X != "bs" || figures[1].Output.X != "threads" {
		t.Fatalf("x column expansion failed: %q / %q", figures[0].Output.X, figures[1].Output.X)
	}
}

func TestFlatten_SeriesCommonAndDerivatives(t *testing.T) {
	raws := []map[string]any{
		{
			"output": map[string]any{
				"title": "t", "file": "fig", "key": "k", "x": "bs", "y": "iops",
			},
			"series_common": map[string]any{"tool": "fio", "rw": true},
			"series": []any{
				map[string]any{"id": 1, "label": "{rw_order} read"},
				map[string]any{"id": 2, "label": "{rw_order} write", "rw": false},
			},
		},
	}

	figures, err := Flatten(raws, t.TempDir(), OneseriesDerivatives)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(figures) != 1 {
		t.Fatalf("expected 1 figure, got %d", len(figures))
	}

	spec := figures[0].spec
	if len(spec) != 2 {
		t.Fatalf("expected 2 series entries, got %d", len(spec))
	}
	if spec[0]["label"] != "rand read" {
		t.Fatalf("series_common rw not applied: %v", spec[0]["label"])
	}
	if spec[1]["label"] != "seq write" {
		t.Fatalf("entry rw must override series_common: %v", spec[1]["label"])
	}
	if spec[0]["tool"] != "fio" {
		t.Fatalf("series_common field not merged: %v", spec[0])
	}
}

func TestFlatten_SeriesSweep(t *testing.T) {
	raws := []map[string]any{
		{
			"output": map[string]any{
				"title": "t", "file": "fig", "key": "k", "x": "bs", "y": "iops",
			},
			"series": []any{
				map[string]any{"id": []any{1, 2, 3}, "label": "run {id}"},
			},
		},
	}

	figures, err := Flatten(raws, t.TempDir(), OneseriesDerivatives)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	spec := figures[0].spec
	if len(spec) != 3 {
		t.Fatalf("expected 3 series entries, got %d", len(spec))
	}
	wantLabels := []string{"run 1", "run 2", "run 3"}
	for i, label := range wantLabels {
		if spec[i]["label"] != label {
			t.Fatalf("entry %d: expected label %q, got %v", i, label, spec[i]["label"])
		}
	}
}

func TestOneseriesDerivatives(t *testing.T) {
	if out := OneseriesDerivatives(map[string]any{"rw": true}); out["rw_order"] != "rand" {
		t.Fatalf("expected rand, got %v", out["rw_order"])
	}
	if out := OneseriesDerivatives(map[string]any{"rw": false}); out["rw_order"] != "seq" {
		t.Fatalf("expected seq, got %v", out["rw_order"])
	}
	if out := OneseriesDerivatives(map[string]any{}); len(out) != 0 {
		t.Fatalf("expected no derivatives without rw, got %v", out)
	}
}
