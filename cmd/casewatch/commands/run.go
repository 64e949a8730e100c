package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"casewatch/internal/components/chrono"
	"casewatch/internal/components/telemetry"
	"casewatch/internal/config"
	"casewatch/internal/history"
	"casewatch/internal/notify"
	"casewatch/internal/pipeline"
	"casewatch/internal/scrapers/casepage"
	"casewatch/lib/restyutil"

	"github.com/spf13/cobra"
)

var dryRun *bool
var dumpHttp *string

func init() {
	dryRun = runCmd.Flags().Bool("dry-run", false, "Compose the notification and log it without sending it or saving the history.")
	dumpHttp = runCmd.Flags().String("dump-http", "", "Write every http request and response into a new casewatch-http-* directory under this one.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--workdir <dir>] [--config <file>] [-v] [--dry-run] [--dump-http <dir>]",
	Short: "Checks the page once, notifies on changes and saves the history.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		dir := resolveWorkdir()

		closeLogs, err := telemetry.InitSlog(telemetry.LogOptions{
			Verbose: *verbose,
			File:    filepath.Join(dir, "logs", "casewatch.log"),
			Console: os.Stdout,
		})
		if err != nil {
			fatal("failed to open log file", err)
		}
		defer closeLogs()

		otelSetup, err := telemetry.SetupFromEnv(ctx, "casewatch")
		if err != nil {
			slog.Warn("failed to setup otel exporters, continuing without them", "err", err)
		}
		defer func() {
			err := otelSetup.Shutdown(ctx)
			if err != nil {
				slog.Warn("failed to flush telemetry", "err", err)
			}
		}()

		tel := telemetry.SlogAPI{}

		cfg, err := config.Read(dir, *configName)
		if err != nil {
			fatal("failed to read config", err)
		}
		clock, err := chrono.NewStandardImpl(cfg.Timezone)
		if err != nil {
			fatal("failed to load timezone", err)
		}
		timeout, err := cfg.PageTimeout()
		if err != nil {
			fatal("invalid page timeout", err)
		}

		var dump restyutil.Output
		if *dumpHttp != "" {
			output, err := restyutil.NewFilesystemOutput(*dumpHttp)
			if err != nil {
				fatal("failed to prepare http dump directory", err)
			}
			slog.Info("dumping http messages", "dir", output.Dir())
			dump = output
		}

		backend, err := history.Open(ctx, cfg.Store, dir)
		if err != nil {
			fatal("failed to open history store", err)
		}
		store := history.NewStore(backend, tel)
		defer store.Close()

		fetcher := casepage.NewClient(casepage.Options{
			URL:              cfg.Page.Url,
			UserAgent:        cfg.Page.UserAgent,
			Timeout:          timeout,
			CloudflareBypass: cfg.Page.CloudflareBypass,
			Dump:             dump,
		}, tel)

		var shortener notify.Shortener = notify.Passthrough{}
		if cfg.Shortener.Url != "" {
			shortener = notify.NewNaverShortener(notify.NaverOptions{
				URL:          cfg.Shortener.Url,
				ClientID:     cfg.Shortener.ClientId,
				ClientSecret: cfg.Shortener.ClientSecret,
				Timeout:      timeout,
				Dump:         dump,
			}, tel)
		}

		notifier := notify.NewNotifier(notify.Options{
			Host:         cfg.Page.Host,
			BoardLink:    cfg.Links.Board,
			MovementLink: cfg.Links.Movement,
			WebhookURL:   cfg.Notify.Url,
			Token:        cfg.Notify.Token,
			Timeout:      timeout,
			Dump:         dump,
		}, shortener, clock, tel)

		pipeline.Run(ctx, pipeline.Deps{
			Fetcher:  fetcher,
			Store:    store,
			Notifier: notifier,
			Time:     clock,
			Tel:      tel,
			DryRun:   *dryRun,
		})
	},
}
