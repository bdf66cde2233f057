package flightstatus

import (
	"fmt"
	"strings"
	"time"
)

// WindowStrategy computes the time range of an airport-wide query.
type WindowStrategy interface {
	Window(now time.Time) (start, end time.Time)
}

// DefaultSlidingDuration matches the provider's maximum airport query range.
const DefaultSlidingDuration = 12 * time.Hour

// SlidingWindow covers [now-Duration, now].
type SlidingWindow struct {
	Duration time.Duration
}

func (w SlidingWindow) Window(now time.Time) (time.Time, time.Time) {
	d := w.Duration
	if d <= 0 {
		d = DefaultSlidingDuration
	}
	return now.Add(-d), now
}

// SameDayWindow covers 00:00 to 23:59 of the calendar day of now in Location.
type SameDayWindow struct {
	Location *time.Location
}

func (w SameDayWindow) Window(now time.Time) (time.Time, time.Time) {
	loc := w.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.Add(23*time.Hour + 59*time.Minute)
}

// Window strategy names accepted by configuration.
const (
	WindowSliding = "sliding"
	WindowSameDay = "same_day"
)

// NewWindowStrategy resolves a configured strategy name.
func NewWindowStrategy(name string, sliding time.Duration) (WindowStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", WindowSliding:
		return SlidingWindow{Duration: sliding}, nil
	case WindowSameDay:
		return SameDayWindow{Location: time.UTC}, nil
	default:
		return nil, fmt.Errorf("unknown window strategy %q", name)
	}
}
