package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nedved1/rpma/internal/logging"
)

// LoadConfig reads a report configuration file. YAML is the native format;
// files ending in .json are parsed as JSON since upstream template tooling
// emits JSON figure lists. ${VAR} references are expanded from the
// environment before parsing.
func LoadConfig(filepath string) (*ReportConfig, error) {
	logger := logging.GetLogger()

	data, err := os.ReadFile(filepath)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to read config file")
		return nil, err
	}

	expanded := expandEnvVars(string(data))

	var config ReportConfig
	if isJSON(filepath) {
		err = json.Unmarshal([]byte(expanded), &config)
	} else {
		err = yaml.Unmarshal([]byte(expanded), &config)
	}
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to parse config file")
		return nil, err
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})
}

func validateConfig(config *ReportConfig) error {
	if len(config.Figures) == 0 {
		return fmt.Errorf("at least one figure must be defined")
	}

	for i, figure := range config.Figures {
		output, ok := figure["output"].(map[string]any)
		if !ok {
			return fmt.Errorf("figure %d: output descriptor is required", i)
		}

		for _, key := range []string{"title", "file", "x", "y", "key"} {
			if _, ok := output[key]; !ok {
				return fmt.Errorf("figure %d: output.%s is required", i, key)
			}
		}

		done, _ := output["done"].(bool)
		if done {
			continue
		}
		if _, ok := figure["series"]; !ok {
			return fmt.Errorf("figure %d: series list is required", i)
		}
	}

	if db := config.Report.Publish; db != nil {
		if db.Host == "" || db.Bucket == "" || db.Org == "" || db.Token == "" {
			return fmt.Errorf("incomplete publish database configuration")
		}
	}

	return nil
}
