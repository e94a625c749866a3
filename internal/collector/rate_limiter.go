package collector

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/kurihiro0119/github-activity-report/internal/errors"
	"github.com/kurihiro0119/github-activity-report/internal/logging"
)

// RateLimiter manages GitHub API rate limiting
type RateLimiter interface {
	Wait(ctx context.Context) error
	CheckLimit() (remaining int, resetTime time.Time, err error)
	UpdateLimit(remaining int, resetTime time.Time)
}

// githubRateLimiter serializes calls with a minimum spacing and refuses to
// continue once the remaining quota is nearly exhausted
type githubRateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	minDelay  time.Duration
	lowWater  int
	maxWait   time.Duration
	lastCall  time.Time
	now       func() time.Time
}

// NewRateLimiter creates a new rate limiter. maxWait bounds how long Wait
// blocks for a quota reset before giving up with a rate limit error.
func NewRateLimiter(minDelay, maxWait time.Duration) RateLimiter {
	return &githubRateLimiter{
		remaining: 5000, // GitHub API default limit
		resetTime: time.Now().Add(time.Hour),
		minDelay:  minDelay,
		lowWater:  10,
		maxWait:   maxWait,
		now:       time.Now,
	}
}

// Wait waits until it's safe to make another API call
func (r *githubRateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.remaining <= r.lowWater {
		waitDuration := r.resetTime.Sub(r.now())
		if waitDuration > 0 {
			if waitDuration > r.maxWait {
				return apperrors.NewRateLimitedError("GitHub API rate limit exceeded", r.resetTime, nil)
			}
			logging.Log.Warnf("Rate limit low (%d remaining), waiting %v until reset", r.remaining, waitDuration.Round(time.Second))
			if err := r.sleepLocked(ctx, waitDuration); err != nil {
				return err
			}
		}
		r.remaining = 5000
		r.resetTime = r.now().Add(time.Hour)
	}

	elapsed := r.now().Sub(r.lastCall)
	if elapsed < r.minDelay {
		if err := r.sleepLocked(ctx, r.minDelay-elapsed); err != nil {
			return err
		}
	}

	r.lastCall = r.now()
	return nil
}

// sleepLocked releases the lock while sleeping
func (r *githubRateLimiter) sleepLocked(ctx context.Context, d time.Duration) error {
	r.mu.Unlock()
	defer r.mu.Lock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CheckLimit returns the current rate limit status
func (r *githubRateLimiter) CheckLimit() (remaining int, resetTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining, r.resetTime, nil
}

// UpdateLimit updates the rate limit from API response headers
func (r *githubRateLimiter) UpdateLimit(remaining int, resetTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining = remaining
	r.resetTime = resetTime
}
