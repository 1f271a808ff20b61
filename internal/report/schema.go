package report

import "fmt"

// ColumnKey names a column in the output table and its accumulator in a Row.
type ColumnKey string

// DefaultKind is the seed value of a column's accumulator.
type DefaultKind int

const (
	DefaultZero DefaultKind = iota
	DefaultFrequencyMap
)

func (k DefaultKind) String() string {
	switch k {
	case DefaultZero:
		return "zero"
	case DefaultFrequencyMap:
		return "frequency_map"
	default:
		return fmt.Sprintf("DefaultKind(%d)", int(k))
	}
}

// Action is how a column folds a recording into its accumulator.
type Action int

const (
	ActionCountEvents Action = iota
	ActionSumField
	ActionRunningAverage
	ActionFrequencyCount
	ActionFrequencyCountOverList
)

func (a Action) String() string {
	switch a {
	case ActionCountEvents:
		return "count_events"
	case ActionSumField:
		return "sum_field"
	case ActionRunningAverage:
		return "running_average"
	case ActionFrequencyCount:
		return "frequency_count"
	case ActionFrequencyCountOverList:
		return "frequency_count_over_list"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Column describes one output column. Source is the recording field for
// SumField and frequency actions, and the summed column for RunningAverage.
type Column struct {
	Key     ColumnKey
	Source  string
	Default DefaultKind
	Action  Action
}

// Page-view sources are plain counts, everything else summed or averaged is a duration.
var pageViewSources = map[string]bool{
	"pages":          true,
	"totalPageViews": true,
}

// IsTimeMeasure reports whether the column holds a duration. Those columns get a
// unit suffix in the header and are converted when minutes are requested.
func (c Column) IsTimeMeasure() bool {
	return (c.Action == ActionSumField || c.Action == ActionRunningAverage) && !pageViewSources[c.Source]
}

// IsFrequency reports whether the column accumulates a frequency map.
func (c Column) IsFrequency() bool {
	return c.Action == ActionFrequencyCount || c.Action == ActionFrequencyCountOverList
}

// Schema is an ordered, validated list of columns. Order is fold order and CSV order.
type Schema struct {
	columns  []Column
	countKey ColumnKey
}

// NewSchema validates cols and returns a Schema.
//
// Exactly one CountEvents column is required and it must precede every
// RunningAverage column, which in turn must reference an earlier numeric column.
func NewSchema(cols ...Column) (Schema, error) {
	if len(cols) == 0 {
		return Schema{}, ErrEmptySchema
	}

	var countKey ColumnKey
	seen := make(map[ColumnKey]Column, len(cols))
	for i, c := range cols {
		if c.Key == "" {
			return Schema{}, fmt.Errorf("%w: column %d has no key", ErrInvalidColumn, i)
		}
		if _, dup := seen[c.Key]; dup {
			return Schema{}, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Key)
		}

		wantDefault := DefaultZero
		switch c.Action {
		case ActionCountEvents:
			if countKey != "" {
				return Schema{}, fmt.Errorf("%w: %q and %q", ErrMultipleCountColumns, countKey, c.Key)
			}
			countKey = c.Key
		case ActionSumField:
			if c.Source == "" {
				return Schema{}, fmt.Errorf("%w: %q needs a source field", ErrInvalidColumn, c.Key)
			}
		case ActionRunningAverage:
			if countKey == "" {
				return Schema{}, fmt.Errorf("%w: %q", ErrAverageBeforeCount, c.Key)
			}
			src, ok := seen[ColumnKey(c.Source)]
			if !ok || src.Default != DefaultZero {
				return Schema{}, fmt.Errorf("%w: %q averages %q", ErrUnknownAverageSource, c.Key, c.Source)
			}
		case ActionFrequencyCount, ActionFrequencyCountOverList:
			if c.Source == "" {
				return Schema{}, fmt.Errorf("%w: %q needs a source field", ErrInvalidColumn, c.Key)
			}
			wantDefault = DefaultFrequencyMap
		default:
			return Schema{}, fmt.Errorf("%w: %q has %s", ErrUnknownAction, c.Key, c.Action)
		}

		if c.Default != DefaultZero && c.Default != DefaultFrequencyMap {
			return Schema{}, fmt.Errorf("%w: %q has %s", ErrUnknownDefaultKind, c.Key, c.Default)
		}
		if c.Default != wantDefault {
			return Schema{}, fmt.Errorf("%w: %q seeds %s but %s needs %s", ErrInvalidColumn, c.Key, c.Default, c.Action, wantDefault)
		}
		seen[c.Key] = c
	}
	if countKey == "" {
		return Schema{}, ErrMissingCountColumn
	}

	return Schema{
		columns:  append([]Column(nil), cols...),
		countKey: countKey,
	}, nil
}

// DefaultSchema is the Mouseflow recordings report layout.
func DefaultSchema() Schema {
	s, err := NewSchema(
		Column{Key: "totalSessions", Default: DefaultZero, Action: ActionCountEvents},
		Column{Key: "totalDuration", Source: "duration", Default: DefaultZero, Action: ActionSumField},
		Column{Key: "averageDuration", Source: "totalDuration", Default: DefaultZero, Action: ActionRunningAverage},
		Column{Key: "totalEngagement", Source: "engagementTime", Default: DefaultZero, Action: ActionSumField},
		Column{Key: "averageEngagement", Source: "totalEngagement", Default: DefaultZero, Action: ActionRunningAverage},
		Column{Key: "totalPageViews", Source: "pages", Default: DefaultZero, Action: ActionSumField},
		Column{Key: "averagePageViews", Source: "totalPageViews", Default: DefaultZero, Action: ActionRunningAverage},
		Column{Key: "mostSeenCountry", Source: "country", Default: DefaultFrequencyMap, Action: ActionFrequencyCount},
		Column{Key: "mostSeenBrowser", Source: "browser", Default: DefaultFrequencyMap, Action: ActionFrequencyCount},
		Column{Key: "mostSeenDevice", Source: "device", Default: DefaultFrequencyMap, Action: ActionFrequencyCount},
		Column{Key: "mostSeenSystem", Source: "os", Default: DefaultFrequencyMap, Action: ActionFrequencyCount},
		Column{Key: "mostSeenReferrer", Source: "referrerType", Default: DefaultFrequencyMap, Action: ActionFrequencyCount},
		Column{Key: "mostSeenEntryPage", Source: "entryPage", Default: DefaultFrequencyMap, Action: ActionFrequencyCount},
		Column{Key: "mostSeenTag", Source: "tags", Default: DefaultFrequencyMap, Action: ActionFrequencyCountOverList},
		Column{Key: "mostSeenVariable", Source: "variables", Default: DefaultFrequencyMap, Action: ActionFrequencyCountOverList},
	)
	if err != nil {
		panic(err)
	}
	return s
}

// Columns returns a copy of the columns in order.
func (s Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// Len is the number of columns.
func (s Schema) Len() int {
	return len(s.columns)
}

// Column returns the i-th column.
func (s Schema) Column(i int) Column {
	return s.columns[i]
}

// CountKey is the key of the CountEvents column.
func (s Schema) CountKey() ColumnKey {
	return s.countKey
}
