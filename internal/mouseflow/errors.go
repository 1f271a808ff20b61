package mouseflow

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidRegion    = errors.New("api location must be either 'us' or 'eu'")
	ErrRequestFailed    = errors.New("request to mouseflow api failed")
	ErrReadingResponse  = errors.New("failed to read mouseflow api response")
	ErrBadRequest       = errors.New("bad request (400)")
	ErrUnauthorized     = errors.New("request rejected (401/403), api key likely invalid")
	ErrNotFound         = errors.New("request target not found (404)")
	ErrRateLimited      = errors.New("request rejected (429), too many requests from api key")
	ErrServerError      = errors.New("request not handled (500/503), mouseflow servers seem to be down")
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// StatusError is a non-2xx response. It unwraps to one of the status sentinels.
type StatusError struct {
	URL        string
	StatusCode int
	kind       error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v -> '%s' (%d)", e.kind, e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

// checkStatus returns nil for 2xx and a *StatusError otherwise.
func checkStatus(url string, code int) error {
	if code >= 200 && code < 300 {
		return nil
	}

	var kind error
	switch code {
	case http.StatusBadRequest:
		kind = ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrUnauthorized
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusTooManyRequests:
		kind = ErrRateLimited
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		kind = ErrServerError
	default:
		kind = ErrUnexpectedStatus
	}
	return &StatusError{URL: url, StatusCode: code, kind: kind}
}

// StatusClass buckets err for metrics labels: "2xx" for nil, "4xx"/"5xx" for
// status errors and "error" for anything else.
func StatusClass(err error) string {
	if err == nil {
		return "2xx"
	}
	var se *StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("%dxx", se.StatusCode/100)
	}
	return "error"
}
