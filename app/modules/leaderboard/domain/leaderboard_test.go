package leaderboarddomain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSortEntries(t *testing.T) {
	t0 := time.Date(2026, time.October, 12, 10, 0, 0, 0, time.UTC)
	entries := []Entry{
		{PlayerID: "c", Score: 40, RecordedAt: t0},
		{PlayerID: "b", Score: 90, RecordedAt: t0.Add(time.Minute)},
		{PlayerID: "a", Score: 90, RecordedAt: t0},
		{PlayerID: "e", Score: 40, RecordedAt: t0},
		{PlayerID: "d", Score: 100, RecordedAt: t0.Add(time.Hour)},
	}

	SortEntries(entries)

	var got []string
	for _, e := range entries {
		got = append(got, e.PlayerID)
	}
	if diff := cmp.Diff([]string{"d", "a", "b", "c", "e"}, got); diff != "" {
		t.Errorf("SortEntries order mismatch (-want +got):\n%s", diff)
	}
}

func TestBeats(t *testing.T) {
	existing := Entry{Score: 50}
	if Beats(Entry{Score: 40}, existing) {
		t.Error("lower score must not win")
	}
	if Beats(Entry{Score: 50}, existing) {
		t.Error("tie must keep the existing row")
	}
	if !Beats(Entry{Score: 60}, existing) {
		t.Error("higher score must win")
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 10}, {-3, 10}, {1, 1}, {25, 25}, {500, 100},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.n, 10, 100); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestParseScope(t *testing.T) {
	for in, want := range map[string]Scope{"": ScopeGlobal, "global": ScopeGlobal, "Weekly": ScopeWeekly} {
		got, err := ParseScope(in)
		if err != nil || got != want {
			t.Errorf("ParseScope(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseScope("monthly"); err != ErrUnknownScope {
		t.Errorf("ParseScope(monthly) err = %v", err)
	}
}
