package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "casewatch",
	Short: "casewatch watches a case statistics page and notifies a webhook when the counts change.",
}

var workdir *string
var configName *string
var verbose *bool

func init() {
	workdir = rootCmd.PersistentFlags().String("workdir", ".", "The directory holding the config, the stored history and the logs.")
	configName = rootCmd.PersistentFlags().String("config", "config.json5", "The config file, relative to the workdir.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fatal(message string, err error) {
	slog.Error(message, "err", err)
	os.Exit(1)
}

func resolveWorkdir() string {
	dir, err := filepath.Abs(*workdir)
	if err != nil {
		fatal("failed to resolve workdir", err)
	}
	return dir
}
