package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter checks whether a request should be allowed for an identity.
type RateLimiter interface {
	Allow(ctx context.Context, identity *Identity) error
}

// SubjectLimiter keeps one token bucket per subject. Buckets refill at the
// identity's RequestsPerMinute, or at the default rate when unset.
type SubjectLimiter struct {
	defaultRPM int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewSubjectLimiter creates a limiter. A non-positive defaultRPM leaves
// identities without their own rate unlimited.
func NewSubjectLimiter(defaultRPM int) *SubjectLimiter {
	return &SubjectLimiter{
		defaultRPM: defaultRPM,
		buckets:    make(map[string]*rate.Limiter),
	}
}

// Allow consumes one token from the subject's bucket.
func (l *SubjectLimiter) Allow(_ context.Context, identity *Identity) error {
	rpm := l.defaultRPM
	if identity.RequestsPerMinute > 0 {
		rpm = identity.RequestsPerMinute
	}
	if rpm <= 0 {
		return nil
	}

	l.mu.Lock()
	b, ok := l.buckets[identity.Subject]
	if !ok {
		b = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
		l.buckets[identity.Subject] = b
	}
	l.mu.Unlock()

	if !b.Allow() {
		return ErrTooManyRequests
	}
	return nil
}
