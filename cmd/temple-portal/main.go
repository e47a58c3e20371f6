package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iwvelando/temple-portal/internal/config"
	"github.com/iwvelando/temple-portal/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configLocation       string
	serverConfigLocation string
	logLevel             string
	outputFormatFlag     string
)

var rootCmd = &cobra.Command{
	Use:   "temple-portal",
	Short: "Temple website with pooja schedules and the Tamil calendar",
	Long: `temple-portal serves the public temple site and its administrator API.

It also resolves Gregorian dates to Tamil month dates from the command line,
using the same calendar and configured overrides as the site.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configLocation, "config", constants.DefaultConfigFile, "path to site configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	serveCmd.Flags().StringVar(&serverConfigLocation, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	tamilDateCmd.Flags().StringVar(&outputFormatFlag, "output-format", constants.OutputFormatPretty, "output format: pretty, csv")
	transitionsCmd.Flags().StringVar(&outputFormatFlag, "output-format", constants.OutputFormatPretty, "output format: pretty, csv")

	rootCmd.AddCommand(serveCmd, tamilDateCmd, transitionsCmd, hashPasswordCmd)
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = constants.LogFormatJSON
	}

	var cfg zap.Config
	switch format {
	case constants.LogFormatConsole:
		cfg = zap.NewDevelopmentConfig()
	case constants.LogFormatJSON:
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		cfg.OutputPaths = []string{loggingConfig.OutputFile}
		cfg.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return cfg.Build()
}

// loadSiteConfig reads the site configuration. A missing file at the default
// location falls back to defaults so the calendar commands work anywhere.
func loadSiteConfig(cmd *cobra.Command) (*config.Configuration, error) {
	if _, err := os.Stat(configLocation); os.IsNotExist(err) && !cmd.Flags().Changed("config") {
		return config.Defaults(), nil
	}
	conf, err := config.LoadConfiguration(configLocation)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", configLocation, err)
	}
	return conf, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"command failed\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
}
