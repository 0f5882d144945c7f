// Package delivery turns a finished reply into a paced stream of fragments so
// every answer appears to be typed out, whatever produced it.
//
// A Script is a lazy, finite and restartable sequence: ranging over
// Fragments() twice yields the same texts (delays are re-drawn). Replay drives
// a Script into a sink and is the only place that sleeps.
package delivery

import (
	"context"
	"iter"
	"math/rand/v2"
	"time"
	"unicode/utf8"
)

// Default pacing: the slower "typing" range
const (
	DefaultMinDelay = 15 * time.Millisecond
	DefaultMaxDelay = 45 * time.Millisecond
)

// Fragment is a slice of reply text and how long to wait before showing it
type Fragment struct {
	Text  string
	Delay time.Duration
}

// Jitter draws delays uniformly from [Min, Max)
type Jitter struct {
	Min time.Duration
	Max time.Duration
}

// DefaultJitter returns the 15-45ms typing range
func DefaultJitter() Jitter {
	return Jitter{Min: DefaultMinDelay, Max: DefaultMaxDelay}
}

// Next returns one delay
func (j Jitter) Next() time.Duration {
	if j.Max <= j.Min {
		return j.Min
	}
	return j.Min + rand.N(j.Max-j.Min)
}

// Script is a reply split into single-rune fragments
type Script struct {
	text   string
	jitter Jitter
}

// NewScript prepares text for paced delivery
func NewScript(text string, jitter Jitter) *Script {
	return &Script{text: text, jitter: jitter}
}

// Text returns the full reply
func (s *Script) Text() string {
	return s.text
}

// Fragments yields one fragment per rune. Multi-byte characters are never
// split and invalid bytes pass through untouched, one per fragment.
func (s *Script) Fragments() iter.Seq[Fragment] {
	return func(yield func(Fragment) bool) {
		for i := 0; i < len(s.text); {
			_, size := utf8.DecodeRuneInString(s.text[i:])
			if !yield(Fragment{Text: s.text[i : i+size], Delay: s.jitter.Next()}) {
				return
			}
			i += size
		}
	}
}

// Sink receives fragments in order, one call at a time
type Sink func(fragment string)

// Replay waits each fragment's delay and hands it to sink. The sink is never
// called concurrently. Cancelling ctx stops the replay early with ctx.Err().
func Replay(ctx context.Context, script *Script, sink Sink) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for frag := range script.Fragments() {
		timer.Reset(frag.Delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		sink(frag.Text)
	}
	return nil
}
