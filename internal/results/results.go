// Package results reads per-run benchmark result files.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Path returns the location of the result file for the given run id.
// Result files are named benchmark_<id>.json.
func Path(resultDir, id string) string {
	return filepath.Join(resultDir, "benchmark_"+id+".json")
}

// Load parses the result file for the given run id into an ordered list of
// rows. Each row maps column name to value; every row of one run is assumed
// to carry the same columns.
func Load(resultDir, id string) ([]map[string]any, error) {
	path := Path(resultDir, id)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark result file: %w", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark result file %s: %w", path, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("benchmark result file %s contains no rows", path)
	}

	return rows, nil
}

// Columns returns the column-name set of a run, determined from the first
// row only.
func Columns(rows []map[string]any) map[string]bool {
	if len(rows) == 0 {
		return nil
	}
	columns := make(map[string]bool, len(rows[0]))
	for name := range rows[0] {
		columns[name] = true
	}
	return columns
}
