package commands

import (
	"fmt"
	"os"

	"casewatch/internal/components/telemetry"
	"casewatch/internal/config"
	"casewatch/internal/detect"
	"casewatch/internal/history"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--workdir <dir>] [--config <file>]",
	Short: "Prints the stored history, newest first.",
	Run: func(cmd *cobra.Command, args []string) {
		dir := resolveWorkdir()

		cfg, err := config.Read(dir, *configName)
		if err != nil {
			fatal("failed to read config", err)
		}
		backend, err := history.Open(cmd.Context(), cfg.Store, dir)
		if err != nil {
			fatal("failed to open history store", err)
		}
		store := history.NewStore(backend, telemetry.SlogAPI{})
		defer store.Close()

		h, found, err := store.Read(cmd.Context())
		if err != nil {
			fatal("failed to read history", err)
		}
		if !found {
			fmt.Fprintln(os.Stderr, "no history has been stored yet")
			return
		}

		renderHistory(h)
	},
}

func formatCounter(entry []int, i int) string {
	if i >= len(entry) {
		return "-"
	}
	return humanize.Comma(int64(entry[i]))
}

func formatDelta(entry, older []int, i int) string {
	if older == nil || i >= len(entry) || i >= len(older) {
		return "-"
	}
	delta := entry[i] - older[i]
	if delta > 0 {
		return "+" + humanize.Comma(int64(delta))
	}
	return humanize.Comma(int64(delta))
}

func renderHistory(h history.History) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{
		"#", "Confirmed", "Discharged", "Deaths", "Testing",
		"Δ Confirmed", "Δ Discharged", "Δ Deaths",
	})

	for i, entry := range h.Entries {
		var older []int
		if i+1 < len(h.Entries) {
			older = h.Entries[i+1]
		}
		row := table.Row{i}
		for c := 0; c < 4; c++ {
			row = append(row, formatCounter(entry, c))
		}
		for c := 0; c < detect.TrackedCount; c++ {
			row = append(row, formatDelta(entry, older, c))
		}
		t.AppendRow(row)
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
