package settingsearch_test

import (
	"sync/atomic"
	"testing"
	"time"

	"daysegment/backend/internal/settingsearch"
)

func TestSearchMatchesKeywords(t *testing.T) {
	results := settingsearch.Search("dark")
	if len(results) != 1 {
		t.Fatalf("expected exactly one match for %q, got %d", "dark", len(results))
	}
	if results[0].ID != "theme-selector" {
		t.Fatalf("expected theme-selector, got %s", results[0].ID)
	}
}

func TestSearchMatchesAcrossFields(t *testing.T) {
	cases := []struct {
		query  string
		wantID string
	}{
		{"clock", "time-format"},
		{"Quiet", "notification-quiet-hours"},
		{"walkthrough", "welcome-reset"},
	}
	for _, tc := range cases {
		results := settingsearch.Search(tc.query)
		found := false
		for _, entry := range results {
			if entry.ID == tc.wantID {
				found = true
			}
		}
		if !found {
			t.Fatalf("query %q did not match %s (got %d results)", tc.query, tc.wantID, len(results))
		}
	}
}

func TestSearchBlankQuery(t *testing.T) {
	if results := settingsearch.Search("   "); results != nil {
		t.Fatalf("expected nil for blank query, got %d results", len(results))
	}
}

func TestSearchNoMatch(t *testing.T) {
	if results := settingsearch.Search("zzzzz"); len(results) != 0 {
		t.Fatalf("expected no matches, got %d", len(results))
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	debouncer := settingsearch.NewDebouncer(20 * time.Millisecond)

	var calls int32
	for i := 0; i < 5; i++ {
		debouncer.Do(func() { atomic.AddInt32(&calls, 1) })
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one coalesced call, got %d", got)
	}
}

func TestDebouncerStop(t *testing.T) {
	debouncer := settingsearch.NewDebouncer(20 * time.Millisecond)

	var calls int32
	debouncer.Do(func() { atomic.AddInt32(&calls, 1) })
	debouncer.Stop()

	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("expected no calls after stop, got %d", got)
	}
}
