package mouseflow

import (
	"errors"
	"testing"
	"time"
)

func TestBaseURL(t *testing.T) {
	tests := map[string]string{
		"EU": "https://api-eu.mouseflow.com",
		"US": "https://api-us.mouseflow.com",
		"eu": "https://api-eu.mouseflow.com",
		"us": "https://api-us.mouseflow.com",
	}
	for region, want := range tests {
		got, err := BaseURL(region)
		if err != nil || got != want {
			t.Errorf("BaseURL(%q) = %q, %v; want %q", region, got, err, want)
		}
	}

	if _, err := BaseURL("dk"); !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("BaseURL(dk) error = %v", err)
	}
}

func TestBuildURL(t *testing.T) {
	base := "https://api-us.mouseflow.com"
	if got := BuildURL(base, "websites/id/recordings"); got != base+"/websites/id/recordings" {
		t.Errorf("without params = %q", got)
	}

	got := BuildURL(base, "websites/id/recordings",
		Query{"fromDate", "2020-5-1"},
		Query{"toDate", "2020-10-1"},
		Query{"offset", "10000"},
	)
	want := base + "/websites/id/recordings?fromDate=2020-5-1&toDate=2020-10-1&offset=10000"
	if got != want {
		t.Errorf("with params = %q, want %q", got, want)
	}
}

func TestPageURLs(t *testing.T) {
	base := "https://api-us.mouseflow.com"
	from := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2020, 10, 1, 0, 0, 0, 0, time.UTC)

	urls := PageURLs(base, "websiteId", from, to, 11000, 0)
	want := []string{
		base + "/websites/websiteId/recordings?fromDate=2020-5-1&toDate=2020-10-1&limit=10000&offset=0",
		base + "/websites/websiteId/recordings?fromDate=2020-5-1&toDate=2020-10-1&limit=10000&offset=10000",
	}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v", urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("url %d = %q, want %q", i, urls[i], want[i])
		}
	}

	if n := len(PageURLs(base, "w", from, to, 0, 0)); n != 0 {
		t.Errorf("zero count produced %d urls", n)
	}
	if n := len(PageURLs(base, "w", from, to, 10000, 0)); n != 1 {
		t.Errorf("exact page produced %d urls", n)
	}

	count := CountURL(base, "w", from, to)
	if count != base+"/websites/w/recordings?fromDate=2020-5-1&toDate=2020-10-1" {
		t.Errorf("count url = %q", count)
	}
}
