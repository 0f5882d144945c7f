package chat

import (
	"math"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
)

// Bucket is a coarse age label for the session list
type Bucket string

const (
	BucketToday     Bucket = "Today"
	BucketYesterday Bucket = "Yesterday"
	BucketWeek      Bucket = "Previous 7 Days"
	BucketMonth     Bucket = "Previous 30 Days"
	BucketOlder     Bucket = "Older"
)

// Buckets lists every bucket in display order
var Buckets = []Bucket{BucketToday, BucketYesterday, BucketWeek, BucketMonth, BucketOlder}

// BucketFor maps a creation time to its bucket. Days are the ceiling of the
// absolute elapsed wall-clock time, not calendar days, so anything under 24h
// old is "Today" and a future timestamp buckets like its mirror in the past.
func BucketFor(createdAt, now time.Time) Bucket {
	diff := now.Sub(createdAt)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(float64(diff) / float64(24*time.Hour)))

	switch {
	case days <= 1:
		return BucketToday
	case days == 2:
		return BucketYesterday
	case days <= 7:
		return BucketWeek
	case days <= 30:
		return BucketMonth
	default:
		return BucketOlder
	}
}

// SessionSummary is one row of the session list
type SessionSummary struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

// Group is a bucket and the sessions that fall in it
type Group struct {
	Bucket   Bucket
	Sessions []SessionSummary
}

// GroupSessions buckets sessions in display order, keeping input order inside
// each group. Empty groups are left out.
func GroupSessions(sessions []SessionSummary, now time.Time) []Group {
	byBucket := make(map[Bucket][]SessionSummary)
	for _, s := range sessions {
		b := BucketFor(s.CreatedAt, now)
		byBucket[b] = append(byBucket[b], s)
	}

	var groups []Group
	for _, b := range Buckets {
		if len(byBucket[b]) == 0 {
			continue
		}
		groups = append(groups, Group{Bucket: b, Sessions: byBucket[b]})
	}
	return groups
}

// FilterSessions keeps sessions whose title fuzzy-matches query, best match first
func FilterSessions(sessions []SessionSummary, query string) []SessionSummary {
	if strings.TrimSpace(query) == "" {
		return sessions
	}

	targets := make([]string, len(sessions))
	for i, s := range sessions {
		targets[i] = s.Title
	}

	matches := fuzzy.Find(query, targets)
	filtered := make([]SessionSummary, len(matches))
	for i, match := range matches {
		filtered[i] = sessions[match.Index]
	}
	return filtered
}
