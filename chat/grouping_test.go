package chat

import (
	"testing"
	"time"
)

func TestBucketFor(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name string
		age  time.Duration
		want Bucket
	}{
		{"same instant", 0, BucketToday},
		{"an hour ago", time.Hour, BucketToday},
		{"exactly one day", day, BucketToday},
		{"just over a day", day + time.Minute, BucketYesterday},
		{"two days", 2 * day, BucketYesterday},
		{"five days", 5 * day, BucketWeek},
		{"seven days", 7 * day, BucketWeek},
		{"eight days", 8 * day, BucketMonth},
		{"twenty days", 20 * day, BucketMonth},
		{"thirty days", 30 * day, BucketMonth},
		{"forty days", 40 * day, BucketOlder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BucketFor(now.Add(-tt.age), now); got != tt.want {
				t.Errorf("past: got %q, want %q", got, tt.want)
			}
			if got := BucketFor(now.Add(tt.age), now); got != tt.want {
				t.Errorf("future mirror: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGroupSessions(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	sessions := []SessionSummary{
		{ID: "a", Title: "a", CreatedAt: now.Add(-time.Hour)},
		{ID: "b", Title: "b", CreatedAt: now.Add(-40 * day)},
		{ID: "c", Title: "c", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "d", Title: "d", CreatedAt: now.Add(-5 * day)},
	}

	groups := GroupSessions(sessions, now)

	want := []struct {
		bucket Bucket
		ids    []string
	}{
		{BucketToday, []string{"a", "c"}},
		{BucketWeek, []string{"d"}},
		{BucketOlder, []string{"b"}},
	}

	if len(groups) != len(want) {
		t.Fatalf("group count: got %d, want %d", len(groups), len(want))
	}
	for i, g := range groups {
		if g.Bucket != want[i].bucket {
			t.Errorf("group %d: got %q, want %q", i, g.Bucket, want[i].bucket)
		}
		if len(g.Sessions) != len(want[i].ids) {
			t.Errorf("group %d size: got %d, want %d", i, len(g.Sessions), len(want[i].ids))
			continue
		}
		for j, s := range g.Sessions {
			if s.ID != want[i].ids[j] {
				t.Errorf("group %d item %d: got %q, want %q", i, j, s.ID, want[i].ids[j])
			}
		}
	}
}

func TestFilterSessions(t *testing.T) {
	sessions := []SessionSummary{
		{ID: "1", Title: "Go generics question"},
		{ID: "2", Title: "Dinner recipes"},
		{ID: "3", Title: "Goroutine leak"},
	}

	if got := FilterSessions(sessions, ""); len(got) != 3 {
		t.Errorf("empty query should keep all, got %d", len(got))
	}

	got := FilterSessions(sessions, "recipe")
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("recipe filter: got %+v", got)
	}

	if got := FilterSessions(sessions, "zzz"); len(got) != 0 {
		t.Errorf("no-match filter returned %+v", got)
	}
}
