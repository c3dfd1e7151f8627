// Package main implements the bok CLI for extracting engineering metadata from
// drawing sets.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/book-of-knowledge/internal/common"
)

var (
	// configPath is an optional YAML file layered over the environment
	configPath string
	logLevel   string
	version    = "dev"

	cfg    *common.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bok",
	Short: "Extract engineering metadata from drawing sets",
	Long: `bok reads engineering drawing sets (PDF, scanned images, text dumps) and
extracts job number, design codes, seismic and wind parameters, project name
and location into a fixed record.

Configuration comes from the environment, an optional .env file in the working
directory and an optional YAML file passed with --config.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(chunkCmd)
	rootCmd.AddCommand(flipCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	loaded, err := common.LoadConfigFile(configPath)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	// stdout carries command output, logs go to stderr
	logger = newLogger(cmd.ErrOrStderr(), level)
	slog.SetDefault(logger)
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
