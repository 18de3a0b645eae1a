package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jefferyharrell/Captioner-backend/internal/config"
	"github.com/jefferyharrell/Captioner-backend/internal/storage"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.Fatal(err)
	}
}

// newRootCommand builds the command tree with its persistent flags
func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "captioner",
		Short: "Captioner - photo catalog over pluggable storage backends",
		Long: `Captioner catalogs photos held in an external storage provider
(local filesystem or Dropbox) and manages their captions.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add configuration flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringP("backend", "b", "", "Storage backend (filesystem, dropbox, s3)")
	rootCmd.PersistentFlags().StringP("storage-root", "", "", "Root directory for the filesystem backend")
	rootCmd.PersistentFlags().StringP("catalog-path", "", "", "Path to the catalog database")
	rootCmd.PersistentFlags().StringP("log-level", "", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newListCommand(),
		newGetCommand(),
		newCaptionCommand(),
		newRescanCommand(),
		newAuthorizeCommand(),
	)

	return rootCmd
}

// loadConfig loads configuration and configures logging for a subcommand
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

// newBackend builds the configured storage backend
func newBackend(cmd *cobra.Command) (storage.PhotoSource, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	backend, err := storage.NewBackend(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	return backend, cfg, nil
}

func setupLogging(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	switch level {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
