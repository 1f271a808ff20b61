package pipeline

import (
	"context"
	"time"

	"github.com/sanspareilsmyn/mfreport/internal/recording"
)

// Source yields every recording of one website in [from, to].
//
// An error wrapping ErrPagesFailed comes with the recordings that were
// collected anyway; any other error means nothing usable was fetched.
type Source interface {
	Name() string
	Fetch(ctx context.Context, websiteID string, from, to time.Time) ([]recording.Recording, error)
}
