package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/mfreport/internal/config"
	"github.com/sanspareilsmyn/mfreport/internal/date"
	"github.com/sanspareilsmyn/mfreport/internal/mouseflow"
	"github.com/sanspareilsmyn/mfreport/internal/report"
)

// maxConcurrentReports bounds how many websites are fetched at once; each of
// them may have fetch.concurrency page requests in flight.
const maxConcurrentReports = 4

// Pipeline produces one CSV report per configured website.
type Pipeline struct {
	cfg     *config.Config
	source  Source
	schema  report.Schema
	metrics *Metrics
	runID   string
	logger  *zap.Logger
}

type Option func(*Pipeline)

// WithSource replaces the source built from the configuration.
func WithSource(s Source) Option {
	return func(p *Pipeline) {
		p.source = s
	}
}

// WithMetrics shares m instead of creating a fresh set of collectors.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithSchema replaces the default column layout.
func WithSchema(s report.Schema) Option {
	return func(p *Pipeline) {
		p.schema = s
	}
}

// New wires the recording source named by cfg.Source.Kind.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Pipeline, error) {
	runID := uuid.NewString()
	p := &Pipeline{
		cfg:    cfg,
		schema: report.DefaultSchema(),
		runID:  runID,
		logger: logger.Named("pipeline").With(zap.String("run_id", runID)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = NewMetrics()
	}

	initLogger := logger.Named("pipeline.init")
	if p.source == nil {
		src, err := newSource(cfg, p.metrics, logger)
		if err != nil {
			initLogger.Error("Failed to create source", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrSourceCreationFailed, err)
		}
		p.source = src
	}

	initLogger.Debug("Pipeline instance created",
		zap.String("run_id", runID),
		zap.String("source", p.source.Name()),
		zap.Int("websites", len(cfg.Websites)),
		zap.Int("columns", p.schema.Len()),
	)
	return p, nil
}

func newSource(cfg *config.Config, metrics *Metrics, logger *zap.Logger) (Source, error) {
	switch strings.ToLower(cfg.Source.Kind) {
	case config.SourceKafka:
		return NewKafkaSource(cfg.Source.Kafka, logger.Named("kafka"))
	case config.SourceAPI, "":
		client, err := mouseflow.NewClient(cfg.API, cfg.Fetch, logger)
		if err != nil {
			return nil, err
		}
		return NewAPISource(client, cfg.Fetch.Concurrency, metrics, logger.Named("api")), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownSource, cfg.Source.Kind)
	}
}

// RunID identifies this run in logs.
func (p *Pipeline) RunID() string {
	return p.runID
}

func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Run builds every website's report concurrently and waits for all of them.
// A failing website does not stop the others; the returned error wraps
// ErrReportsFailed and lists each failure.
func (p *Pipeline) Run(ctx context.Context) error {
	sugar := p.logger.Sugar()
	sugar.Infow("Starting reports",
		"websites", len(p.cfg.Websites),
		"from", date.Format(p.cfg.Report.From),
		"to", date.Format(p.cfg.Report.To),
		"source", p.source.Name(),
	)

	wp := pool.New().WithErrors().WithMaxGoroutines(maxConcurrentReports)
	for _, websiteID := range p.cfg.Websites {
		websiteID := websiteID
		wp.Go(func() error {
			return p.runReport(ctx, websiteID)
		})
	}
	runErr := wp.Wait()

	if path := p.cfg.Metrics.TextfilePath; path != "" {
		if err := p.metrics.WriteTextfile(path); err != nil {
			sugar.Errorw("Failed to write metrics textfile", "path", path, zap.Error(err))
			runErr = errors.Join(runErr, err)
		} else {
			sugar.Debugw("Metrics textfile written", "path", path)
		}
	}

	if runErr != nil {
		if ctx.Err() != nil {
			sugar.Warnw("Run interrupted", zap.Error(ctx.Err()))
		}
		return fmt.Errorf("%w: %w", ErrReportsFailed, runErr)
	}
	sugar.Info("All reports completed")
	return nil
}

// runReport fetches, aggregates, renders and saves one website's report.
// Partially fetched data is still written, then reported as ErrIncompleteReport.
func (p *Pipeline) runReport(ctx context.Context, websiteID string) error {
	logger := p.logger.With(zap.String("website_id", websiteID))
	logger.Info("Getting recordings")

	recs, fetchErr := p.source.Fetch(ctx, websiteID, p.cfg.Report.From, p.cfg.Report.To)
	if fetchErr != nil && !errors.Is(fetchErr, ErrPagesFailed) {
		p.metrics.observeOutcome(reportStatusFailed)
		logger.Error("Failed to fetch recordings", zap.Error(fetchErr))
		return fmt.Errorf("%w: %s: %w", ErrReportFailed, websiteID, fetchErr)
	}
	if fetchErr != nil {
		logger.Warn("Continuing with partial recordings", zap.Int("recordings", len(recs)), zap.Error(fetchErr))
	}

	r := report.New(p.cfg.Report, p.schema, websiteID, logger.Named("report"))
	stats := r.Aggregate(recs)
	r.Finalize()

	table := report.NewTable(r)
	path, err := WriteReport(p.cfg.Output.Directory, websiteID, table.Render())
	if err != nil {
		p.metrics.observeOutcome(reportStatusFailed)
		logger.Error("Failed to save report", zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrReportFailed, websiteID, err)
	}

	var sessions int64
	for _, row := range r.Rows() {
		if row != r.TotalRow() {
			sessions += row.Sessions()
		}
	}
	rows := len(table.Records())
	p.metrics.observeReport(websiteID, stats, sessions, rows)

	logger.Info("Report saved",
		zap.String("path", path),
		zap.Int("rows", rows),
		zap.Int64("sessions", sessions),
		zap.Int("dropped", stats.Dropped()),
	)

	if fetchErr != nil {
		p.metrics.observeOutcome(reportStatusPartial)
		return fmt.Errorf("%w: %s: %w", ErrIncompleteReport, websiteID, fetchErr)
	}
	p.metrics.observeOutcome(reportStatusOK)
	return nil
}
