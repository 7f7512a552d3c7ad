package config

// ReportConfig is the top-level configuration of one figure report: where
// the benchmark results live plus the list of raw (possibly parametrized)
// figure configs.
type ReportConfig struct {
	Report  ReportInfo       `yaml:"report" json:"report"`
	Figures []map[string]any `yaml:"figures" json:"figures"`
}

type ReportInfo struct {
	ResultDir string          `yaml:"result_dir" json:"result_dir"`
	LogLevel  string          `yaml:"log_level" json:"log_level"`
	Publish   *DatabaseConfig `yaml:"publish,omitempty" json:"publish,omitempty"`
}

// DatabaseConfig describes the optional InfluxDB target for extracted
// series points. Values usually reference environment variables through
// ${VAR} placeholders expanded at load time.
type DatabaseConfig struct {
	Host   string `yaml:"host" json:"host"`
	Bucket string `yaml:"bucket" json:"bucket"`
	Org    string `yaml:"org" json:"org"`
	Token  string `yaml:"token" json:"token"`
}
