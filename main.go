package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nedved1/rpma/internal/config"
	"github.com/nedved1/rpma/internal/database"
	"github.com/nedved1/rpma/internal/figure"
	"github.com/nedved1/rpma/internal/logging"
)

const Version = "1.0.0"

func loadEnvironment() {
	logger := logging.GetLogger()

	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
		} else {
			logger.WithField("file", envFile).Debug("Loaded environment variables")
		}
	} else {
		// Try to load from the application directory
		if execPath, err := os.Executable(); err == nil {
			appDir := filepath.Dir(execPath)
			envFile = filepath.Join(appDir, ".env")
			if _, err := os.Stat(envFile); err == nil {
				if err := godotenv.Load(envFile); err != nil {
					logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
				} else {
					logger.WithField("file", envFile).Debug("Loaded environment variables")
				}
			}
		}
	}
}

func main() {
	logger := logging.GetLogger()

	loadEnvironment()

	var configFile string
	var resultDir string
	var logLevel string

	rootCmd := &cobra.Command{
		Use:     "rpma-perf-report",
		Short:   "Benchmark figure generation tool",
		Long:    "Renders benchmark result figures (PNG charts) from JSON-encoded performance series data",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				if err := logging.SetLogLevel(logLevel); err != nil {
					return fmt.Errorf("invalid log level: %w", err)
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Extract series data and render all figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFigures(configFile, resultDir, false)
		},
	}

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Re-render figures from cached series data",
		Long:  "Render PNG charts from the series cache only, without touching benchmark result files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFigures(configFile, resultDir, true)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a report configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateReportConfig(configFile)
		},
	}

	for _, cmd := range []*cobra.Command{generateCmd, renderCmd, validateCmd} {
		cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to report configuration file")
		cmd.MarkFlagRequired("config")
	}
	generateCmd.Flags().StringVarP(&resultDir, "result-dir", "r", "", "Benchmark result directory (overrides config)")
	renderCmd.Flags().StringVarP(&resultDir, "result-dir", "r", "", "Benchmark result directory (overrides config)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(validateCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Fatal("Command execution failed")
	}
}

func validateReportConfig(configFile string) error {
	logger := logging.GetLogger()

	_, err := config.LoadConfig(configFile)
	if err != nil {
		logger.WithField("config_file", configFile).WithError(err).Error("Configuration validation failed")
		return err
	}
	logger.WithField("config_file", configFile).Info("Configuration is valid")
	return nil
}

// runFigures drives the whole pipeline for one report config: flatten the
// figure list, extract series for every pending figure, then render. With
// cachedOnly set, every figure is treated as done and read from the cache.
func runFigures(configFile, resultDir string, cachedOnly bool) error {
	logger := logging.GetLogger()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logger.WithField("config_file", configFile).WithError(err).Error("Failed to load configuration")
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Report.LogLevel != "" {
		if err := logging.SetLogLevel(cfg.Report.LogLevel); err != nil {
			logger.WithField("log_level", cfg.Report.LogLevel).WithError(err).Warn("Invalid log level in config, using INFO")
			logging.SetLogLevel("info")
		}
	}

	if resultDir == "" {
		resultDir = cfg.Report.ResultDir
	}
	if resultDir == "" {
		resultDir = "."
	}

	if cachedOnly {
		for _, raw := range cfg.Figures {
			if output, ok := raw["output"].(map[string]any); ok {
				output["done"] = true
			}
		}
	}

	figures, err := figure.Flatten(cfg.Figures, resultDir, figure.OneseriesDerivatives)
	if err != nil {
		logger.WithError(err).Error("Failed to flatten figure configs")
		return fmt.Errorf("failed to flatten figures: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"figures":    len(figures),
		"result_dir": resultDir,
	}).Info("Generating figures")

	var publisher *database.SeriesDBClient
	if cfg.Report.Publish != nil && !cachedOnly {
		publisher, err = database.NewSeriesDBClient(*cfg.Report.Publish)
		if err != nil {
			logger.WithError(err).Error("Failed to create series database client")
			return fmt.Errorf("failed to create series database client: %w", err)
		}
		defer publisher.Close()
	}

	for _, f := range figures {
		fields := logrus.Fields{
			"key":  f.Output.Key,
			"file": f.Output.File,
		}

		if !f.IsDone() {
			logger.WithFields(fields).Info("Preparing series")
			if err := f.PrepareSeries(resultDir); err != nil {
				logger.WithFields(fields).WithError(err).Error("Failed to prepare series")
				return fmt.Errorf("failed to prepare series for figure %s: %w", f.Output.Key, err)
			}

			if publisher != nil {
				if err := publisher.WriteFigureSeries(f); err != nil {
					logger.WithFields(fields).WithError(err).Error("Failed to publish series")
					return fmt.Errorf("failed to publish series for figure %s: %w", f.Output.Key, err)
				}
			}
		}

		logger.WithFields(fields).Info("Rendering figure")
		if err := f.ToPNG(resultDir); err != nil {
			logger.WithFields(fields).WithError(err).Error("Failed to render figure")
			return fmt.Errorf("failed to render figure %s: %w", f.Output.Key, err)
		}
	}

	logger.WithField("figures", len(figures)).Info("All figures generated")
	return nil
}
