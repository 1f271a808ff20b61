package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/mfreport/internal/mouseflow"
	"github.com/sanspareilsmyn/mfreport/internal/recording"
)

// APISource pages through the recordings endpoint, fetching pages concurrently.
type APISource struct {
	client      *mouseflow.Client
	concurrency int
	metrics     *Metrics
	logger      *zap.Logger
}

// NewAPISource fetches with at most concurrency page requests in flight per website.
func NewAPISource(client *mouseflow.Client, concurrency int, metrics *Metrics, logger *zap.Logger) *APISource {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &APISource{
		client:      client,
		concurrency: concurrency,
		metrics:     metrics,
		logger:      logger,
	}
}

func (s *APISource) Name() string {
	return "api"
}

type fetchedPage struct {
	index      int
	recordings []recording.Recording
}

// Fetch asks for the recording count, then requests every page. A failed page
// does not stop the others; the recordings of the successful pages are
// returned in page order together with an ErrPagesFailed error.
func (s *APISource) Fetch(ctx context.Context, websiteID string, from, to time.Time) ([]recording.Recording, error) {
	logger := s.logger.With(zap.String("website_id", websiteID))

	start := time.Now()
	count, err := s.client.Count(ctx, websiteID, from, to)
	s.metrics.observeRequest(endpointCount, mouseflow.StatusClass(err), time.Since(start))
	if err != nil {
		logger.Error("Failed to get recording count", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCountFailed, err)
	}

	urls := s.client.PageURLs(websiteID, from, to, count)
	if len(urls) == 0 {
		logger.Info("No recordings in range")
		return nil, nil
	}

	p := pool.NewWithResults[fetchedPage]().
		WithContext(ctx).
		WithMaxGoroutines(s.concurrency)
	for i, url := range urls {
		i, url := i, url
		p.Go(func(ctx context.Context) (fetchedPage, error) {
			start := time.Now()
			recs, err := s.client.FetchPage(ctx, url)
			s.metrics.observeRequest(endpointPage, mouseflow.StatusClass(err), time.Since(start))
			if err != nil {
				return fetchedPage{}, fmt.Errorf("page %d: %w", i, err)
			}
			return fetchedPage{index: i, recordings: recs}, nil
		})
	}

	pages, err := p.Wait()
	slices.SortFunc(pages, func(a, b fetchedPage) int { return a.index - b.index })

	var recs []recording.Recording
	for _, page := range pages {
		recs = append(recs, page.recordings...)
	}
	logger.Debug("Fetched pages",
		zap.Int("pages", len(pages)),
		zap.Int("requested", len(urls)),
		zap.Int("recordings", len(recs)),
	)

	if err != nil {
		failed := multierr.Errors(err)
		for _, pageErr := range failed {
			logger.Warn("Page fetch failed", zap.Error(pageErr))
		}
		return recs, fmt.Errorf("%w: %d of %d pages: %w", ErrPagesFailed, len(failed), len(urls), err)
	}
	return recs, nil
}
