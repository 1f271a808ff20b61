package report

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/mfreport/internal/config"
	"github.com/sanspareilsmyn/mfreport/internal/date"
	"github.com/sanspareilsmyn/mfreport/internal/recording"
)

// Report aggregates the recordings of one website over the configured range.
// It is not safe for concurrent use: fold a fully collected batch from one goroutine.
type Report struct {
	websiteID string
	cfg       config.ReportConfig
	schema    Schema
	rows      []*Row
	totalRow  *Row
	finalized bool
	logger    *zap.Logger
}

// Stats summarises one Aggregate call.
type Stats struct {
	Received    int
	Dispatched  int
	OutOfRange  int
	Unparseable int
	Malformed   int
}

// Dropped is the number of recordings that did not reach a row.
func (s Stats) Dropped() int {
	return s.OutOfRange + s.Unparseable + s.Malformed
}

// New creates a report with empty rows covering [cfg.From, cfg.To].
func New(cfg config.ReportConfig, schema Schema, websiteID string, logger *zap.Logger) *Report {
	rows := BuildRows(schema, cfg.From, cfg.To, cfg.BucketDays, cfg.MaxBuckets)

	logger.Debug("Report initialized",
		zap.String("website_id", websiteID),
		zap.String("from", date.Format(cfg.From)),
		zap.String("to", date.Format(cfg.To)),
		zap.Int("rows", len(rows)),
		zap.Bool("total_row", cfg.IncludeTotalRow),
	)

	return &Report{
		websiteID: websiteID,
		cfg:       cfg,
		schema:    schema,
		rows:      rows,
		totalRow:  NewRow(schema, cfg.From, cfg.To),
		logger:    logger,
	}
}

// WebsiteID is the tracked website this report belongs to.
func (r *Report) WebsiteID() string {
	return r.websiteID
}

// Config is the report configuration the rows were built from.
func (r *Report) Config() config.ReportConfig {
	return r.cfg
}

// Schema is the column layout every row folds with.
func (r *Report) Schema() Schema {
	return r.schema
}

// TotalRow spans the whole range. It only accumulates when IncludeTotalRow is set.
func (r *Report) TotalRow() *Row {
	return r.totalRow
}

// Rows returns the rows in output order. After Finalize the total row, when
// enabled, comes first.
func (r *Report) Rows() []*Row {
	return r.rows
}

// Dispatch folds rec into the row whose day range contains its created day,
// and into the total row when enabled. It reports false with an error when the
// recording is dropped; a dropped recording never changes any row.
func (r *Report) Dispatch(rec recording.Recording) (bool, error) {
	if err := rec.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedRecording, err)
	}
	created, err := date.Parse(rec.Created)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrUnparseableTimestamp, err)
	}

	row := r.findRow(created)
	if row == nil {
		return false, fmt.Errorf("%w: %s", ErrNoMatchingRow, date.Format(created))
	}

	if err := row.Fold(rec, r.cfg.ConvertMsToMin); err != nil {
		return false, err
	}
	if r.cfg.IncludeTotalRow {
		if err := r.totalRow.Fold(rec, r.cfg.ConvertMsToMin); err != nil {
			return false, err
		}
	}
	return true, nil
}

// findRow scans the bucket rows in order; the total row is never a candidate.
func (r *Report) findRow(day time.Time) *Row {
	for _, row := range r.rows {
		if row == r.totalRow {
			continue
		}
		if row.Contains(day) {
			return row
		}
	}
	return nil
}

// Aggregate dispatches every recording once. Dropped recordings are logged at
// debug level and counted; they never stop the batch.
func (r *Report) Aggregate(recs []recording.Recording) Stats {
	stats := Stats{Received: len(recs)}
	r.logger.Debug("Parsing recordings",
		zap.String("website_id", r.websiteID),
		zap.Int("recordings", len(recs)),
	)

	for _, rec := range recs {
		ok, err := r.Dispatch(rec)
		if ok {
			stats.Dispatched++
			continue
		}
		reason := "malformed"
		switch {
		case errors.Is(err, ErrUnparseableTimestamp):
			stats.Unparseable++
			reason = "unparseable timestamp"
		case errors.Is(err, ErrNoMatchingRow):
			stats.OutOfRange++
			reason = "out of range"
		default:
			stats.Malformed++
		}
		r.logger.Debug("Dropping recording",
			zap.String("website_id", r.websiteID),
			zap.String("reason", reason),
			zap.String("recording", rec.Snippet(80)),
			zap.Error(err),
		)
	}

	r.logger.Debug("Parse completed",
		zap.String("website_id", r.websiteID),
		zap.Int("dispatched", stats.Dispatched),
		zap.Int("dropped", stats.Dropped()),
	)
	return stats
}

// Finalize puts the total row in front of the bucket rows when it is enabled.
// Calling it again has no effect.
func (r *Report) Finalize() {
	if r.finalized {
		return
	}
	r.finalized = true
	if r.cfg.IncludeTotalRow {
		r.rows = append([]*Row{r.totalRow}, r.rows...)
	}
}
