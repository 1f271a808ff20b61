package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanspareilsmyn/mfreport/internal/date"
	"github.com/sanspareilsmyn/mfreport/internal/recording"
)

const (
	// DefaultBucketDays makes 7-day rows: a row spans from..from+6.
	DefaultBucketDays = 6
	// DefaultMaxBuckets caps BuildRows against pathological ranges.
	DefaultMaxBuckets = 55

	noneLabel  = "None"
	errorLabel = "Err"

	roundPlaces = 3
)

// cell is the accumulator of one column; exactly one of the fields is in use.
type cell struct {
	number decimal.Decimal
	freq   *FrequencyMap
}

// Row accumulates the recordings of one closed day range [From, To].
type Row struct {
	From time.Time
	To   time.Time

	schema Schema
	cells  map[ColumnKey]*cell
}

// NewRow creates a row with every accumulator at its seed value.
func NewRow(schema Schema, from, to time.Time) *Row {
	r := &Row{
		From:   date.Day(from),
		To:     date.Day(to),
		schema: schema,
		cells:  make(map[ColumnKey]*cell, schema.Len()),
	}
	for _, c := range schema.columns {
		switch c.Default {
		case DefaultZero:
			r.cells[c.Key] = &cell{number: decimal.Zero}
		case DefaultFrequencyMap:
			r.cells[c.Key] = &cell{freq: NewFrequencyMap()}
		}
	}
	return r
}

// Number returns the numeric accumulator of key.
func (r *Row) Number(key ColumnKey) (decimal.Decimal, bool) {
	c, ok := r.cells[key]
	if !ok || c.freq != nil {
		return decimal.Zero, false
	}
	return c.number, true
}

// Frequencies returns the frequency-map accumulator of key.
func (r *Row) Frequencies(key ColumnKey) (*FrequencyMap, bool) {
	c, ok := r.cells[key]
	if !ok || c.freq == nil {
		return nil, false
	}
	return c.freq, true
}

// Sessions is the value of the count column.
func (r *Row) Sessions() int64 {
	n, _ := r.Number(r.schema.countKey)
	return n.IntPart()
}

// Contains reports whether day lies within the row's closed range.
func (r *Row) Contains(day time.Time) bool {
	return date.Within(day, r.From, r.To)
}

// Fold adds one recording to the row, column by column in schema order.
// Averages read the sums and count already updated earlier in the same pass.
// Every field is read before anything is written, so a recording missing a
// field leaves the row untouched.
func (r *Row) Fold(rec recording.Recording, convertMsToMin bool) error {
	inputs, err := r.resolve(rec, convertMsToMin)
	if err != nil {
		return err
	}

	for i, c := range r.schema.columns {
		acc := r.cells[c.Key]
		switch c.Action {
		case ActionCountEvents:
			acc.number = acc.number.Add(decimal.NewFromInt(1))
		case ActionSumField:
			acc.number = acc.number.Add(inputs[i].number).RoundBank(roundPlaces)
		case ActionRunningAverage:
			count := r.cells[r.schema.countKey].number
			if count.IsZero() {
				acc.number = decimal.Zero
				continue
			}
			acc.number = r.cells[ColumnKey(c.Source)].number.Div(count).RoundBank(roundPlaces)
		case ActionFrequencyCount, ActionFrequencyCountOverList:
			for _, label := range inputs[i].labels {
				acc.freq.Increment(normalizeLabel(label))
			}
		}
	}
	return nil
}

type foldInput struct {
	number decimal.Decimal
	labels []string
}

// resolve reads the recording fields every column needs.
func (r *Row) resolve(rec recording.Recording, convertMsToMin bool) ([]foldInput, error) {
	inputs := make([]foldInput, len(r.schema.columns))
	for i, c := range r.schema.columns {
		if _, ok := r.cells[c.Key]; !ok {
			return nil, fmt.Errorf("%w: no accumulator for %q", ErrInvalidColumn, c.Key)
		}
		switch c.Action {
		case ActionSumField:
			v, err := rec.Number(c.Source)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMalformedRecording, err)
			}
			n := decimal.NewFromFloat(v)
			if convertMsToMin && c.IsTimeMeasure() {
				n = date.MillisToMinutes(n)
			}
			inputs[i].number = n
		case ActionFrequencyCount:
			v, err := rec.Text(c.Source)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMalformedRecording, err)
			}
			inputs[i].labels = []string{v}
		case ActionFrequencyCountOverList:
			v, err := rec.List(c.Source)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMalformedRecording, err)
			}
			inputs[i].labels = v
		}
	}
	return inputs, nil
}

func normalizeLabel(label string) string {
	if label == "" || label == errorLabel {
		return noneLabel
	}
	return label
}

// BuildRows splits [from, to] into contiguous rows of bucketDays+1 days each.
// The last row absorbs any remainder and always ends on to. At most maxBuckets
// full-width rows are produced before the remainder row; maxBuckets <= 0 means
// DefaultMaxBuckets. An inverted range yields no rows.
func BuildRows(schema Schema, from, to time.Time, bucketDays, maxBuckets int) []*Row {
	if maxBuckets <= 0 {
		maxBuckets = DefaultMaxBuckets
	}
	if bucketDays < 0 {
		bucketDays = 0
	}
	from, to = date.Day(from), date.Day(to)
	if from.After(to) {
		return nil
	}

	var rows []*Row
	currentFrom := from
	currentTo := date.AddDays(from, bucketDays)
	for to.After(currentTo) && len(rows) < maxBuckets {
		rows = append(rows, NewRow(schema, currentFrom, currentTo))
		currentFrom = date.AddDays(currentFrom, bucketDays+1)
		currentTo = date.AddDays(currentTo, bucketDays+1)
	}

	if len(rows) == 0 {
		return []*Row{NewRow(schema, from, to)}
	}
	lastTo := rows[len(rows)-1].To
	if !date.Equal(lastTo, to) {
		rows = append(rows, NewRow(schema, date.AddDays(lastTo, 1), to))
	}
	return rows
}
