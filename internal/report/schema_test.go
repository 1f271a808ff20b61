package report

import (
	"errors"
	"testing"
)

func TestDefaultSchema(t *testing.T) {
	s := DefaultSchema()
	if s.Len() != 15 {
		t.Fatalf("len = %d, want 15", s.Len())
	}
	if s.CountKey() != "totalSessions" {
		t.Errorf("count key = %q", s.CountKey())
	}
	if s.Column(0).Key != "totalSessions" || s.Column(14).Key != "mostSeenVariable" {
		t.Errorf("unexpected order: first %q last %q", s.Column(0).Key, s.Column(14).Key)
	}

	cols := s.Columns()
	cols[0].Key = "mutated"
	if s.Column(0).Key != "totalSessions" {
		t.Error("Columns must return a copy")
	}
}

func TestColumn_IsTimeMeasure(t *testing.T) {
	tests := []struct {
		col  Column
		want bool
	}{
		{Column{Key: "totalDuration", Source: "duration", Action: ActionSumField}, true},
		{Column{Key: "averageEngagement", Source: "totalEngagement", Action: ActionRunningAverage}, true},
		{Column{Key: "totalPageViews", Source: "pages", Action: ActionSumField}, false},
		{Column{Key: "averagePageViews", Source: "totalPageViews", Action: ActionRunningAverage}, false},
		{Column{Key: "totalSessions", Action: ActionCountEvents}, false},
		{Column{Key: "mostSeenCountry", Source: "country", Default: DefaultFrequencyMap, Action: ActionFrequencyCount}, false},
	}
	for _, tt := range tests {
		if got := tt.col.IsTimeMeasure(); got != tt.want {
			t.Errorf("%s.IsTimeMeasure() = %v, want %v", tt.col.Key, got, tt.want)
		}
	}
}

func TestNewSchema_Validation(t *testing.T) {
	count := Column{Key: "n", Action: ActionCountEvents}
	sum := Column{Key: "total", Source: "duration", Action: ActionSumField}

	tests := []struct {
		name string
		cols []Column
		want error
	}{
		{"empty", nil, ErrEmptySchema},
		{"blank key", []Column{count, {Action: ActionSumField, Source: "duration"}}, ErrInvalidColumn},
		{"duplicate key", []Column{count, sum, sum}, ErrDuplicateColumn},
		{"two counts", []Column{count, {Key: "m", Action: ActionCountEvents}}, ErrMultipleCountColumns},
		{"no count", []Column{sum}, ErrMissingCountColumn},
		{"average before count", []Column{sum, {Key: "avg", Source: "total", Action: ActionRunningAverage}, count}, ErrAverageBeforeCount},
		{"average of later column", []Column{count, {Key: "avg", Source: "total", Action: ActionRunningAverage}, sum}, ErrUnknownAverageSource},
		{"average of frequency column", []Column{
			count,
			{Key: "c", Source: "country", Default: DefaultFrequencyMap, Action: ActionFrequencyCount},
			{Key: "avg", Source: "c", Action: ActionRunningAverage},
		}, ErrUnknownAverageSource},
		{"sum without source", []Column{count, {Key: "total", Action: ActionSumField}}, ErrInvalidColumn},
		{"frequency seeded with zero", []Column{count, {Key: "c", Source: "country", Action: ActionFrequencyCount}}, ErrInvalidColumn},
		{"unknown action", []Column{count, {Key: "x", Action: Action(42)}}, ErrUnknownAction},
		{"unknown default", []Column{count, {Key: "x", Source: "duration", Default: DefaultKind(9), Action: ActionSumField}}, ErrUnknownDefaultKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.cols...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
