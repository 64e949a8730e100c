package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"casewatch/internal/components/assert"
	"casewatch/internal/components/chrono"
	"casewatch/internal/components/telemetry"
	"casewatch/internal/detect"
	"casewatch/internal/history"
	"casewatch/internal/notify"
	"casewatch/internal/scrapers/casepage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_pipeline_load   = "pipeline.load"
	report_pipeline_fetch  = "pipeline.fetch"
	report_pipeline_notify = "pipeline.notify"
	report_pipeline_save   = "pipeline.save"
	report_pipeline_panic  = "pipeline.panic"

	report_extractor_parse_fallbacks = "extractor.parse-fallbacks"
)

var tracer = otel.Tracer("casewatch/pipeline")
var meter = otel.Meter("casewatch/pipeline")

var runCounter, _ = meter.Int64Counter(
	"casewatch.runs",
	metric.WithDescription("Completed runs, by outcome."),
)
var notificationCounter, _ = meter.Int64Counter(
	"casewatch.notifications",
	metric.WithDescription("Notification attempts, by status."),
)

type Fetcher interface {
	Fetch(ctx context.Context) (casepage.Snapshot, error)
}

type Store interface {
	Load(ctx context.Context) (history.History, bool, error)
	Save(ctx context.Context, h history.History) error
}

type Notifier interface {
	Prepare(ctx context.Context, snapshot casepage.Snapshot, delta detect.Delta) notify.Prepared
	Send(ctx context.Context, prepared notify.Prepared) error
}

type Deps struct {
	Fetcher  Fetcher
	Store    Store
	Notifier Notifier
	Time     chrono.API
	Tel      telemetry.API
	// DryRun composes the notification but neither sends it nor saves the
	// history.
	DryRun bool
}

// Result records the outcome of every step of a run.
type Result struct {
	RunID        string
	Bootstrapped bool
	LoadErr      error
	Snapshot     casepage.Snapshot
	FetchErr     error
	Detection    detect.Detection
	// Message is the composed notification text, empty if nothing changed.
	Message   string
	Notified  bool
	NotifyErr error
	Saved     bool
	SaveErr   error
	// Err holds a recovered panic.
	Err error
}

// Outcome summarizes the result in a single word for logs and metrics.
func (r Result) Outcome() string {
	switch {
	case r.Err != nil:
		return "panic"
	case r.LoadErr != nil:
		return "load_failed"
	case r.Bootstrapped:
		return "bootstrapped"
	case r.SaveErr != nil:
		return "save_failed"
	case r.FetchErr != nil:
		return "fetch_failed"
	case r.NotifyErr != nil:
		return "notify_failed"
	case r.Notified:
		return "notified"
	case r.Detection.Changed:
		return "changed"
	default:
		return "unchanged"
	}
}

// Run performs a single fetch, compare, notify and persist pass.
func Run(ctx context.Context, deps Deps) (result Result) {
	assert.NotNil(deps.Fetcher, "fetcher")
	assert.NotNil(deps.Store, "store")
	assert.NotNil(deps.Notifier, "notifier")
	assert.NotNil(deps.Time, "time")
	assert.NotNil(deps.Tel, "telemetry")

	result.RunID = uuid.NewString()
	logger := slog.Default().With("run_id", result.RunID)
	tel := telemetry.NewScopedAPI("pipeline", deps.Tel)

	ctx, span := tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.String("run_id", result.RunID),
		attribute.Bool("dry_run", deps.DryRun),
	))
	startedAt := deps.Time.Now()
	logger.InfoContext(ctx, "Start process", "dry_run", deps.DryRun)

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("panic: %v", r)
			tel.ReportBroken(report_pipeline_panic, result.Err, string(debug.Stack()))
			span.RecordError(result.Err)
			span.SetStatus(codes.Error, "panic")
		}
		outcome := result.Outcome()
		runCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		span.SetAttributes(attribute.String("outcome", outcome))
		span.End()
		logger.InfoContext(
			ctx, "End Process",
			"outcome", outcome,
			"duration", deps.Time.Now().Sub(startedAt).String(),
		)
	}()

	run(ctx, deps, tel, logger, &result)
	return result
}

func run(ctx context.Context, deps Deps, tel telemetry.API, logger *slog.Logger, result *Result) {
	current, bootstrapped, err := load(ctx, deps.Store)
	if err != nil {
		result.LoadErr = err
		tel.ReportBroken(report_pipeline_load, err)
		return
	}
	if bootstrapped {
		result.Bootstrapped = true
		logger.InfoContext(ctx, "first loading, wrote empty history and exiting")
		return
	}

	next := current
	snapshot, err := fetch(ctx, deps.Fetcher)
	if err != nil {
		result.FetchErr = err
		tel.ReportBroken(report_pipeline_fetch, err)
	} else {
		result.Snapshot = snapshot
		if snapshot.ParseFallbacks > 0 {
			tel.ReportCount(report_extractor_parse_fallbacks, int64(snapshot.ParseFallbacks))
		}
		previous, hasPrevious := current.Previous()
		result.Detection = detect.Compare(previous, hasPrevious, snapshot.Counters[:], tel)
		logger.InfoContext(
			ctx, "checked changes",
			"changed", result.Detection.Changed,
			"confirm", result.Detection.Delta.Confirm,
			"discharge", result.Detection.Delta.Discharge,
			"death", result.Detection.Delta.Death,
		)

		if result.Detection.Changed {
			sendNotification(ctx, deps, tel, logger, result)
		}
		next = current.Append(snapshot.Counters[:])
	}

	if deps.DryRun {
		logger.InfoContext(ctx, "dry run, not saving history", "entries", len(next.Entries))
		return
	}

	err = save(ctx, deps.Store, next)
	if err != nil {
		result.SaveErr = err
		tel.ReportBroken(report_pipeline_save, err)
		return
	}
	result.Saved = true
}

func load(ctx context.Context, store Store) (history.History, bool, error) {
	ctx, span := tracer.Start(ctx, "load")
	defer span.End()

	h, bootstrapped, err := store.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return history.History{}, false, err
	}
	span.SetAttributes(
		attribute.Bool("bootstrapped", bootstrapped),
		attribute.Int("entries", len(h.Entries)),
	)
	return h, bootstrapped, nil
}

func fetch(ctx context.Context, fetcher Fetcher) (casepage.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "fetch")
	defer span.End()

	snapshot, err := fetcher.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return casepage.Snapshot{}, err
	}
	span.SetAttributes(
		attribute.IntSlice("counters", snapshot.Counters[:]),
		attribute.Int("parse_fallbacks", snapshot.ParseFallbacks),
	)
	return snapshot, nil
}

func sendNotification(ctx context.Context, deps Deps, tel telemetry.API, logger *slog.Logger, result *Result) {
	ctx, span := tracer.Start(ctx, "notify")
	defer span.End()

	// a panicking notifier must not keep the history from being saved
	defer func() {
		if r := recover(); r != nil {
			result.Notified = false
			result.NotifyErr = fmt.Errorf("notify panic: %v", r)
			tel.ReportBroken(report_pipeline_panic, result.NotifyErr, string(debug.Stack()))
			span.RecordError(result.NotifyErr)
			span.SetStatus(codes.Error, "panic")
			notificationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "failed")))
		}
	}()

	prepared := deps.Notifier.Prepare(ctx, result.Snapshot, result.Detection.Delta)
	result.Message = prepared.Text()

	if deps.DryRun {
		logger.InfoContext(ctx, "dry run, not sending notification", "message", result.Message)
		return
	}

	logger.InfoContext(ctx, "sending notification")
	err := deps.Notifier.Send(ctx, prepared)
	if err != nil {
		result.NotifyErr = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		notificationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "failed")))

		var notifyErr *notify.NotifyError
		if errors.As(err, &notifyErr) && notifyErr.Status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", notifyErr.Status))
		}
		tel.ReportBroken(report_pipeline_notify, err)
		return
	}

	result.Notified = true
	notificationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "sent")))
}

func save(ctx context.Context, store Store, h history.History) error {
	ctx, span := tracer.Start(ctx, "save")
	defer span.End()

	err := store.Save(ctx, h)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("entries", len(h.Entries)))
	return nil
}
