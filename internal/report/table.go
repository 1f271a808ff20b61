package report

import (
	"strings"

	"github.com/samber/lo"

	"github.com/sanspareilsmyn/mfreport/internal/date"
)

const (
	fromHeader = "fromDate"
	toHeader   = "toDate"

	minutesSuffix = "_min"
	millisSuffix  = "_ms"

	fieldSeparator = ","
	fieldEscape    = ";"
)

// Table is the flattened, stringified view of a finalized report.
type Table struct {
	report *Report
}

// NewTable wraps r for rendering. Call r.Finalize first so the total row is in place.
func NewTable(r *Report) *Table {
	return &Table{report: r}
}

// Header returns the column names, time measures suffixed with their unit.
func (t *Table) Header() []string {
	suffix := millisSuffix
	if t.report.cfg.ConvertMsToMin {
		suffix = minutesSuffix
	}
	cols := lo.Map(t.report.schema.columns, func(c Column, _ int) string {
		if c.IsTimeMeasure() {
			return string(c.Key) + suffix
		}
		return string(c.Key)
	})
	return append([]string{fromHeader, toHeader}, cols...)
}

// Records returns one string slice per rendered row, empty rows elided when
// RemoveEmptyRows is set.
func (t *Table) Records() [][]string {
	cfg := t.report.cfg
	records := make([][]string, 0, len(t.report.rows))
	for _, row := range t.report.rows {
		if cfg.RemoveEmptyRows && row.Sessions() <= 0 {
			continue
		}
		records = append(records, t.record(row))
	}
	return records
}

func (t *Table) record(row *Row) []string {
	rec := make([]string, 0, t.report.schema.Len()+2)
	rec = append(rec, date.Format(row.From), date.Format(row.To))
	for _, c := range t.report.schema.columns {
		acc := row.cells[c.Key]
		if c.IsFrequency() {
			rec = append(rec, ReduceFrequencyMap(acc.freq, t.report.cfg.KeepMostSeenMaps).String())
			continue
		}
		rec = append(rec, acc.number.String())
	}
	return rec
}

// Render joins the header and records into newline-terminated CSV lines.
// Commas inside a cell become semicolons; nothing is quoted.
func (t *Table) Render() string {
	var b strings.Builder
	writeLine(&b, t.Header())
	for _, rec := range t.Records() {
		writeLine(&b, rec)
	}
	return b.String()
}

// Render is shorthand for NewTable(r).Render().
func Render(r *Report) string {
	return NewTable(r).Render()
}

func writeLine(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteString(fieldSeparator)
		}
		b.WriteString(strings.ReplaceAll(c, fieldSeparator, fieldEscape))
	}
	b.WriteByte('\n')
}

// ReduceFrequencyMap returns m itself when keepAll is set. Otherwise it returns
// a single-entry map with the label of strictly greatest count, the first seen
// winning ties, or {"None": 0} when m is empty.
func ReduceFrequencyMap(m *FrequencyMap, keepAll bool) *FrequencyMap {
	if keepAll {
		return m
	}
	if m == nil || m.Len() == 0 {
		return NewFrequencyMap(Entry{Label: noneLabel, Count: 0})
	}

	best := Entry{Label: m.order[0], Count: m.counts[m.order[0]]}
	for _, label := range m.order[1:] {
		if n := m.counts[label]; n > best.Count {
			best = Entry{Label: label, Count: n}
		}
	}
	return NewFrequencyMap(best)
}
