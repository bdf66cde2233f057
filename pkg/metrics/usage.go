package metrics

import "sync/atomic"

// UpstreamUsage counts provider calls and how they were resolved.
type UpstreamUsage struct {
	Requests        atomic.Int64
	Failures        atomic.Int64
	RateLimited     atomic.Int64
	FallbacksServed atomic.Int64
}

// UpstreamSnapshot is a point-in-time copy of UpstreamUsage.
type UpstreamSnapshot struct {
	Requests        int64 `json:"requests"`
	Failures        int64 `json:"failures"`
	RateLimited     int64 `json:"rateLimited"`
	FallbacksServed int64 `json:"fallbacksServed"`
}

// Snapshot reads all counters.
func (u *UpstreamUsage) Snapshot() UpstreamSnapshot {
	return UpstreamSnapshot{
		Requests:        u.Requests.Load(),
		Failures:        u.Failures.Load(),
		RateLimited:     u.RateLimited.Load(),
		FallbacksServed: u.FallbacksServed.Load(),
	}
}

// IsZero reports whether no call has been recorded.
func (s UpstreamSnapshot) IsZero() bool {
	return s.Requests == 0 && s.Failures == 0 && s.RateLimited == 0 && s.FallbacksServed == 0
}
