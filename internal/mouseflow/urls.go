package mouseflow

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sanspareilsmyn/mfreport/internal/date"
)

const (
	regionEU = "eu"
	regionUS = "us"

	// DefaultPageSize is the largest page the recordings endpoint serves.
	DefaultPageSize = 10000
)

// Query is one URL query parameter. A slice of them keeps its order in the URL.
type Query struct {
	Key   string
	Value string
}

// BaseURL returns the API origin for region, which is "eu" or "us" in any case.
func BaseURL(region string) (string, error) {
	r := strings.ToLower(strings.TrimSpace(region))
	if r != regionEU && r != regionUS {
		return "", fmt.Errorf("%w: %q", ErrInvalidRegion, region)
	}
	return "https://api-" + r + ".mouseflow.com", nil
}

// BuildURL joins base and path and appends queries in the given order.
func BuildURL(base, path string, queries ...Query) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(base, "/"))
	b.WriteByte('/')
	b.WriteString(strings.TrimPrefix(path, "/"))
	for i, q := range queries {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(q.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(q.Value))
	}
	return b.String()
}

func recordingsPath(websiteID string) string {
	return "websites/" + url.PathEscape(websiteID) + "/recordings"
}

func rangeQueries(from, to time.Time) []Query {
	return []Query{
		{Key: "fromDate", Value: date.Format(from)},
		{Key: "toDate", Value: date.Format(to)},
	}
}

// CountURL is the request that reports how many recordings the range holds.
func CountURL(base, websiteID string, from, to time.Time) string {
	return BuildURL(base, recordingsPath(websiteID), rangeQueries(from, to)...)
}

// PageURLs returns one URL per page needed to fetch count recordings,
// offsets stepping by pageSize from 0 while offset < count.
func PageURLs(base, websiteID string, from, to time.Time, count, pageSize int) []string {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var urls []string
	for offset := 0; offset < count; offset += pageSize {
		queries := append(rangeQueries(from, to),
			Query{Key: "limit", Value: strconv.Itoa(pageSize)},
			Query{Key: "offset", Value: strconv.Itoa(offset)},
		)
		urls = append(urls, BuildURL(base, recordingsPath(websiteID), queries...))
	}
	return urls
}
