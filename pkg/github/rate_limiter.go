package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v66/github"
)

// RateLimiter paces sequential GitHub API calls using the rate limit
// information returned with every response. It never retries a call.
type RateLimiter interface {
	// Wait blocks until it's safe to make an API call
	Wait(ctx context.Context) error

	// Update records the rate limit reported by the latest response
	Update(rate github.Rate)

	// Stats returns current rate limiter statistics
	Stats() RateLimiterStats
}

// RateLimiterStats provides statistics about rate limiter usage
type RateLimiterStats struct {
	RemainingRequests int           `json:"remaining_requests"`
	ResetTime         time.Time     `json:"reset_time"`
	TotalWaits        int64         `json:"total_waits"`
	TotalDelayTime    time.Duration `json:"total_delay_time"`
}

// RateLimiterConfig configures the rate limiter behavior
type RateLimiterConfig struct {
	// BaseDelay is the minimum delay between requests
	BaseDelay time.Duration

	// MinRemainingRequests is the threshold below which every call is throttled
	MinRemainingRequests int

	// ThrottleDelay is the delay applied when remaining requests are low
	ThrottleDelay time.Duration

	// MaxResetWait caps how long Wait blocks for an exhausted limit to reset
	MaxResetWait time.Duration
}

// DefaultRateLimiterConfig returns a default rate limiter configuration
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		BaseDelay:            0,
		MinRemainingRequests: 100,
		ThrottleDelay:        2 * time.Second,
		MaxResetWait:         5 * time.Minute,
	}
}

type rateLimiter struct {
	config *RateLimiterConfig

	// remaining is -1 until the first response reports a limit
	remaining int
	resetTime time.Time
	lastCall  time.Time

	stats RateLimiterStats

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter creates a rate limiter for a single sequential caller
func NewRateLimiter(config *RateLimiterConfig) RateLimiter {
	if config == nil {
		config = DefaultRateLimiterConfig()
	}

	return &rateLimiter{
		config:    config,
		remaining: -1,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Wait blocks until it's safe to make an API call
func (rl *rateLimiter) Wait(ctx context.Context) error {
	delay, err := rl.calculateDelay()
	if err != nil {
		return err
	}

	if delay > 0 {
		rl.stats.TotalWaits++
		rl.stats.TotalDelayTime += delay
		if err := rl.sleep(ctx, delay); err != nil {
			return err
		}
	}

	rl.lastCall = rl.now()
	return nil
}

// Update records the rate limit reported by the latest response
func (rl *rateLimiter) Update(rate github.Rate) {
	// Responses without rate headers (enterprise instances with limits
	// disabled, test servers) carry a zero limit.
	if rate.Limit == 0 {
		return
	}

	rl.remaining = rate.Remaining
	rl.resetTime = rate.Reset.Time
}

// Stats returns current rate limiter statistics
func (rl *rateLimiter) Stats() RateLimiterStats {
	stats := rl.stats
	stats.RemainingRequests = rl.remaining
	stats.ResetTime = rl.resetTime
	return stats
}

func (rl *rateLimiter) calculateDelay() (time.Duration, error) {
	now := rl.now()

	if rl.remaining == 0 && rl.resetTime.After(now) {
		wait := rl.resetTime.Sub(now)
		if wait > rl.config.MaxResetWait {
			return 0, NewGitHubError(ErrorTypeRateLimit,
				fmt.Sprintf("GitHub API rate limit exhausted until %s", rl.resetTime.Format(time.RFC3339)), nil)
		}
		return wait, nil
	}

	if rl.remaining >= 0 && rl.remaining < rl.config.MinRemainingRequests {
		return rl.config.ThrottleDelay, nil
	}

	if rl.config.BaseDelay > 0 && !rl.lastCall.IsZero() {
		if elapsed := now.Sub(rl.lastCall); elapsed < rl.config.BaseDelay {
			return rl.config.BaseDelay - elapsed, nil
		}
	}

	return 0, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
