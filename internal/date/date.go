// Package date holds the day-granularity date helpers used by the report engine.
// All values returned by this package are midnight UTC of a calendar day.
package date

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidDate is returned when a string is not an ISO 8601 date or date-time.
var ErrInvalidDate = errors.New("invalid ISO 8601 date")

// Accepts "2020-5-1", "2020-05-01" and Mouseflow's "2020-05-01T10:15:22.123+02:00".
var isoPattern = regexp.MustCompile(
	`^\d{4}-\d{1,2}-\d{1,2}(T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?)?$`,
)

var msPerMinute = decimal.NewFromInt(60 * 1000)

// IsString reports whether s looks like an ISO 8601 date or date-time.
func IsString(s string) bool {
	return isoPattern.MatchString(s)
}

// Parse returns the calendar day written in s. The time-of-day and offset of a
// date-time string are ignored: "2020-05-01T23:59:00+02:00" is 2020-05-01.
func Parse(s string) (time.Time, error) {
	if !IsString(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	parts := strings.Split(strings.SplitN(s, "T", 2)[0], "-")
	y, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	d, _ := strconv.Atoi(parts[2])

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 2020-02-31 into March; reject instead.
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, fmt.Errorf("%w: %q is out of range", ErrInvalidDate, s)
	}
	return t, nil
}

// Format renders t as YYYY-M-D without zero padding.
func Format(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month()), t.Day())
}

// Day strips the time of day from t, keeping the calendar date as seen in t's location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today is the current local calendar day.
func Today() time.Time {
	return Day(time.Now())
}

// Equal reports whether a and b fall on the same calendar day.
func Equal(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// OnOrBefore reports whether a is the same day as b or earlier.
func OnOrBefore(a, b time.Time) bool {
	return !Day(a).After(Day(b))
}

// Within reports whether target lies in the closed day range [from, to].
func Within(target, from, to time.Time) bool {
	return OnOrBefore(from, target) && OnOrBefore(target, to)
}

// AddDays offsets t by n calendar days. n may be negative.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// DaysBetween is the signed number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// MillisToMinutes converts a millisecond measure to minutes rounded to 3 places.
func MillisToMinutes(ms decimal.Decimal) decimal.Decimal {
	return ms.Div(msPerMinute).RoundBank(3)
}
