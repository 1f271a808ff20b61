package date

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsString(t *testing.T) {
	cases := map[string]bool{
		"2020-05-01":                    true,
		"2020-5-1":                      true,
		"2020-05-01T10:15:22.123+02:00": true,
		"2020-05-01T10:15:22Z":          true,
		"i-am-not-a-date-string":        false,
		"2020/05/01":                    false,
		"":                              false,
		"2020-05-01T10:15":              false,
	}
	for in, want := range cases {
		if got := IsString(in); got != want {
			t.Errorf("IsString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParse(t *testing.T) {
	got, err := Parse("2020-5-19")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !got.Equal(day(2020, 5, 19)) {
		t.Fatalf("Parse = %v, want 2020-05-19", got)
	}

	got, err = Parse("2020-05-01T23:59:59.000+02:00")
	if err != nil {
		t.Fatalf("Parse date-time: %v", err)
	}
	if !got.Equal(day(2020, 5, 1)) {
		t.Fatalf("Parse date-time = %v, want the written calendar day", got)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, in := range []string{"not-a-date", "2020-02-31", "2020-13-01"} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidDate", in, err)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format(day(2020, 5, 19)); got != "2020-5-19" {
		t.Fatalf("Format = %q, want 2020-5-19", got)
	}
	if got := Format(day(2020, 10, 1)); got != "2020-10-1" {
		t.Fatalf("Format = %q, want 2020-10-1", got)
	}
}

func TestComparisons(t *testing.T) {
	if !Equal(day(2020, 5, 19), time.Date(2020, 5, 19, 17, 3, 0, 0, time.UTC)) {
		t.Error("Equal should ignore time of day")
	}
	if Equal(day(2020, 5, 19), day(2020, 4, 19)) {
		t.Error("Equal across months should be false")
	}
	if !OnOrBefore(day(2020, 5, 15), day(2020, 5, 19)) {
		t.Error("OnOrBefore(5/15, 5/19) should be true")
	}
	if OnOrBefore(day(2020, 5, 19), day(2020, 5, 15)) {
		t.Error("OnOrBefore(5/19, 5/15) should be false")
	}
	if !OnOrBefore(day(2020, 4, 30), day(2020, 5, 1)) {
		t.Error("OnOrBefore across a month boundary should be true")
	}
	if !Within(day(2020, 5, 7), day(2020, 5, 1), day(2020, 5, 14)) {
		t.Error("5/7 should be within [5/1, 5/14]")
	}
	if !Within(day(2020, 5, 14), day(2020, 5, 1), day(2020, 5, 14)) {
		t.Error("range end should be inclusive")
	}
	if Within(day(2020, 5, 15), day(2020, 5, 1), day(2020, 5, 14)) {
		t.Error("5/15 should not be within [5/1, 5/14]")
	}
}

func TestAddDays(t *testing.T) {
	if got := AddDays(day(2020, 5, 19), 7); !got.Equal(day(2020, 5, 26)) {
		t.Errorf("AddDays(+7) = %v", got)
	}
	if got := AddDays(day(2020, 5, 19), -7); !got.Equal(day(2020, 5, 12)) {
		t.Errorf("AddDays(-7) = %v", got)
	}
	if got := DaysBetween(day(2020, 5, 1), day(2020, 10, 1)); got != 153 {
		t.Errorf("DaysBetween = %d, want 153", got)
	}
}

func TestMillisToMinutes(t *testing.T) {
	got := MillisToMinutes(decimal.NewFromInt(90000))
	if !got.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("MillisToMinutes(90000) = %s, want 1.5", got)
	}
	got = MillisToMinutes(decimal.NewFromInt(12345))
	if !got.Equal(decimal.RequireFromString("0.206")) {
		t.Fatalf("MillisToMinutes(12345) = %s, want 0.206", got)
	}
}
