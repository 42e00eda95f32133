package verifier

import (
	"context"
	"errors"
	"fmt"
	"path"
	"runtime/debug"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/JakeFAU/tzverify/internal/clock/system"
	"github.com/JakeFAU/tzverify/internal/id/uuid"
	"github.com/JakeFAU/tzverify/internal/metrics"
)

// Options configures a Runner. Store is required; everything else has a default.
type Options struct {
	Store     BlobStore
	Publisher Publisher
	Topic     string
	IDs       IDGenerator
	Clock     Clock
	Logger    *zap.Logger
	// Prefix is the object path prefix for reports and dumps.
	Prefix string
	// Format is the report encoding, FormatJSON or FormatYAML.
	Format string
}

// Runner evaluates scenarios, archives the report and publishes a summary.
type Runner struct {
	store     BlobStore
	publisher Publisher
	topic     string
	ids       IDGenerator
	clock     Clock
	logger    *zap.Logger
	prefix    string
	format    string
}

// NewRunner validates opts and fills in defaults.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if _, _, err := EncodeReport(Report{}, opts.Format); err != nil {
		return nil, err
	}
	r := &Runner{
		store:     opts.Store,
		publisher: opts.Publisher,
		topic:     opts.Topic,
		ids:       opts.IDs,
		clock:     opts.Clock,
		logger:    opts.Logger,
		prefix:    opts.Prefix,
		format:    opts.Format,
	}
	if r.ids == nil {
		r.ids = uuid.New()
	}
	if r.clock == nil {
		r.clock = system.New()
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.prefix == "" {
		r.prefix = "reports"
	}
	if r.format == "" {
		r.format = FormatJSON
	}
	return r, nil
}

// Run evaluates scenarios in order. A scenario failure is recorded in the
// report, not returned; the error covers only run-level problems (ID
// generation, archiving, publishing, cancellation).
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (Report, error) {
	runID, err := r.ids.NewID()
	if err != nil {
		return Report{}, fmt.Errorf("generate run id: %w", err)
	}
	ctx, span := otel.Tracer("github.com/JakeFAU/tzverify/internal/verifier").Start(ctx, "verifier.Run")
	span.SetAttributes(attribute.String("run_id", runID), attribute.Int("scenarios", len(scenarios)))
	defer span.End()

	logger := r.logger.With(zap.String("run_id", runID))
	report := Report{RunID: runID, StartedAt: r.clock.Now()}
	logger.Info("run started", zap.Int("scenarios", len(scenarios)))

	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("run %s cancelled: %w", runID, err)
		}
		harness := NewHarness(r.store, report.StartedAt, path.Join(r.prefix, runID, "dumps", sc.Name))
		res := r.evaluate(ctx, sc, harness)
		metrics.ObserveScenario(string(sc.Rule), string(res.Outcome))
		fields := []zap.Field{
			zap.String("scenario", sc.Name),
			zap.String("rule", string(sc.Rule)),
			zap.String("outcome", string(res.Outcome)),
		}
		if res.Outcome == OutcomePass {
			logger.Debug("scenario passed", fields...)
		} else {
			logger.Warn("scenario did not pass", append(fields, zap.String("detail", res.Detail))...)
		}
		report.add(res)
	}

	report.FinishedAt = r.clock.Now()
	metrics.ObserveRun(report.Status(), report.FinishedAt.Sub(report.StartedAt))
	span.SetAttributes(
		attribute.Int("passed", report.Passed),
		attribute.Int("failed", report.Failed),
		attribute.Int("errored", report.Errored),
	)
	if !report.OK() {
		span.SetStatus(codes.Error, "scenarios did not pass")
	}

	uri, err := r.archive(ctx, report)
	if err != nil {
		return report, err
	}
	report.URI = uri

	if r.publisher != nil {
		msgID, err := r.publisher.Publish(ctx, r.topic, report.Summary())
		if err != nil {
			return report, fmt.Errorf("publish run summary: %w", err)
		}
		logger.Debug("run summary published", zap.String("message_id", msgID))
	}

	logger.Info("run finished",
		zap.String("status", report.Status()),
		zap.Int("passed", report.Passed),
		zap.Int("failed", report.Failed),
		zap.Int("errored", report.Errored),
		zap.String("uri", uri),
	)
	return report, nil
}

func (r *Runner) evaluate(ctx context.Context, sc Scenario, h *Harness) (res Result) {
	res = Result{Name: sc.Name, Rule: sc.Rule}
	start := r.clock.Now()
	defer func() {
		res.Duration = r.clock.Now().Sub(start)
		if p := recover(); p != nil {
			r.logger.Error("scenario panicked",
				zap.String("scenario", sc.Name),
				zap.Any("panic", p),
				zap.ByteString("stack", debug.Stack()),
			)
			res.Outcome = OutcomeError
			res.Detail = fmt.Sprintf("panic: %v", p)
		}
	}()

	if sc.Check == nil {
		res.Outcome = OutcomeError
		res.Detail = "scenario has no check"
		return res
	}
	err := sc.Check(ctx, h)
	switch {
	case err == nil:
		res.Outcome = OutcomePass
	case errors.Is(err, ErrMismatch):
		res.Outcome = OutcomeFail
		res.Detail = err.Error()
	default:
		res.Outcome = OutcomeError
		res.Detail = err.Error()
	}
	return res
}

func (r *Runner) archive(ctx context.Context, report Report) (string, error) {
	data, contentType, err := EncodeReport(report, r.format)
	if err != nil {
		return "", err
	}
	objectPath := ReportPath(r.prefix, report.RunID, r.format)
	uri, err := r.store.PutObject(ctx, objectPath, contentType, data)
	if err != nil {
		return "", fmt.Errorf("archive report %s: %w", objectPath, err)
	}
	return uri, nil
}

// ReportPath is where a run's report is archived.
func ReportPath(prefix, runID, format string) string {
	if format == "" {
		format = FormatJSON
	}
	return path.Join(prefix, runID+"."+format)
}

// LoadReport reads an archived report back from store.
func LoadReport(ctx context.Context, store BlobStore, prefix, runID, format string) (Report, error) {
	objectPath := ReportPath(prefix, runID, format)
	data, err := store.GetObject(ctx, objectPath)
	if err != nil {
		return Report{}, fmt.Errorf("load report %s: %w", objectPath, err)
	}
	return DecodeReport(data, format)
}

// Select returns the catalog scenarios matching any of the given names or
// rules. No filters selects everything. Unknown filters are an error.
func Select(catalog []Scenario, filters ...string) ([]Scenario, error) {
	if len(filters) == 0 {
		return catalog, nil
	}
	known := map[string]bool{}
	for _, sc := range catalog {
		known[sc.Name] = true
		known[string(sc.Rule)] = true
	}
	wanted := map[string]bool{}
	var unknown []string
	for _, f := range filters {
		if !known[f] {
			unknown = append(unknown, f)
			continue
		}
		wanted[f] = true
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown scenarios or rules: %v", unknown)
	}
	var out []Scenario
	for _, sc := range catalog {
		if wanted[sc.Name] || wanted[string(sc.Rule)] {
			out = append(out, sc)
		}
	}
	return out, nil
}
