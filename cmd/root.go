package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shortlist-ai/shortlist/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "shortlist",
	Short: "Recruiting assistance pipeline",
	Long: `shortlist analyzes job descriptions, scores GitHub repositories, and
generates capstone projects, scaffolds, and portfolio materials tailored to a
target role and company type.

Model output is treated as untrusted: every response is extracted, sanitized
against a declared schema, and bounded before it is stored or returned.`,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (environment variables override)")
}

// loadSettings loads configuration honoring the --config flag.
func loadSettings() (settings config.Settings, err error) {
	settings, err = config.Load(configFile)
	if err != nil {
		err = errors.Wrap(err, "failed to load configuration")
		return settings, err
	}
	return settings, err
}

// buildLogger constructs the application logger. --verbose forces debug
// level regardless of configuration.
func buildLogger(settings config.Settings) (logger *zap.Logger, err error) {
	level := zapcore.InfoLevel
	if parsed, parseErr := zapcore.ParseLevel(settings.LogLevel); parseErr == nil {
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zapConfig := zap.NewProductionConfig()
	if !settings.IsProduction() {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err = zapConfig.Build()
	if err != nil {
		err = errors.Wrap(err, "failed to build logger")
		return logger, err
	}
	return logger, err
}
