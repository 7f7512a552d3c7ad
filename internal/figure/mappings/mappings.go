// Package mappings translates benchmark column names into human-readable
// axis labels.
package mappings

type ColumnMapping struct {
	Label string
	Unit  string
}

var ColumnMappings = map[string]ColumnMapping{
	"bs": {
		Label: "block size",
		Unit:  "B",
	},
	"threads": {
		Label: "# of threads",
		Unit:  "",
	},
	"iodepth": {
		Label: "iodepth",
		Unit:  "",
	},
	"iops": {
		Label: "throughput",
		Unit:  "iops",
	},
	"bw_avg": {
		Label: "bandwidth",
		Unit:  "Gb/s",
	},
	"bw_min": {
		Label: "bandwidth (min)",
		Unit:  "Gb/s",
	},
	"bw_max": {
		Label: "bandwidth (max)",
		Unit:  "Gb/s",
	},
	"lat_avg": {
		Label: "latency",
		Unit:  "usec",
	},
	"lat_min": {
		Label: "latency (min)",
		Unit:  "usec",
	},
	"lat_max": {
		Label: "latency (max)",
		Unit:  "usec",
	},
	"lat_stdev": {
		Label: "latency (stdev)",
		Unit:  "usec",
	},
	"cpuload": {
		Label: "CPU load",
		Unit:  "%",
	},
}

func GetColumnMapping(column string) (ColumnMapping, bool) {
	mapping, exists := ColumnMappings[column]
	return mapping, exists
}

// Label returns the axis label for a column. Unknown columns pass through
// unchanged.
func Label(column string) string {
	mapping, exists := ColumnMappings[column]
	if !exists {
		return column
	}
	if mapping.Unit == "" {
		return mapping.Label
	}
	return mapping.Label + " [" + mapping.Unit + "]"
}
