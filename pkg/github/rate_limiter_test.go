package github

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a rateLimiter without real sleeping
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func newTestRateLimiter(config *RateLimiterConfig) (*rateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(config).(*rateLimiter)
	rl.now = clock.Now
	rl.sleep = clock.Sleep
	return rl, clock
}

func rate(limit, remaining int, reset time.Time) github.Rate {
	return github.Rate{Limit: limit, Remaining: remaining, Reset: github.Timestamp{Time: reset}}
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	config := DefaultRateLimiterConfig()

	assert.Equal(t, time.Duration(0), config.BaseDelay)
	assert.Equal(t, 100, config.MinRemainingRequests)
	assert.Equal(t, 2*time.Second, config.ThrottleDelay)
	assert.Equal(t, 5*time.Minute, config.MaxResetWait)
}

func TestRateLimiter_NoDelayUntilLimitKnown(t *testing.T) {
	rl, clock := newTestRateLimiter(nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}

	assert.Empty(t, clock.sleeps)
	assert.Equal(t, -1, rl.Stats().RemainingRequests)
}

func TestRateLimiter_Wait(t *testing.T) {
	tests := []struct {
		name      string
		config    *RateLimiterConfig
		rate      func(now time.Time) github.Rate
		wantSleep []time.Duration
		wantErr   bool
	}{
		{
			name: "plenty remaining",
			rate: func(now time.Time) github.Rate {
				return rate(5000, 4000, now.Add(time.Hour))
			},
		},
		{
			name: "low remaining throttles",
			rate: func(now time.Time) github.Rate {
				return rate(5000, 42, now.Add(time.Hour))
			},
			wantSleep: []time.Duration{2 * time.Second},
		},
		{
			name: "exhausted waits for reset",
			rate: func(now time.Time) github.Rate {
				return rate(5000, 0, now.Add(90*time.Second))
			},
			wantSleep: []time.Duration{90 * time.Second},
		},
		{
			name: "exhausted beyond max wait fails",
			rate: func(now time.Time) github.Rate {
				return rate(5000, 0, now.Add(time.Hour))
			},
			wantErr: true,
		},
		{
			name: "exhausted with past reset only throttles",
			rate: func(now time.Time) github.Rate {
				return rate(5000, 0, now.Add(-time.Second))
			},
			wantSleep: []time.Duration{2 * time.Second},
		},
		{
			name:   "custom throttle",
			config: &RateLimiterConfig{MinRemainingRequests: 10, ThrottleDelay: 500 * time.Millisecond, MaxResetWait: time.Minute},
			rate: func(now time.Time) github.Rate {
				return rate(60, 9, now.Add(time.Hour))
			},
			wantSleep: []time.Duration{500 * time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl, clock := newTestRateLimiter(tt.config)
			rl.Update(tt.rate(clock.now))

			err := rl.Wait(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				var ghErr *GitHubError
				require.True(t, errors.As(err, &ghErr))
				assert.Equal(t, ErrorTypeRateLimit, ghErr.Type)
				assert.Empty(t, clock.sleeps)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSleep, clock.sleeps)
			assert.Equal(t, int64(len(tt.wantSleep)), rl.Stats().TotalWaits)
		})
	}
}

func TestRateLimiter_BaseDelay(t *testing.T) {
	rl, clock := newTestRateLimiter(&RateLimiterConfig{BaseDelay: time.Second, MaxResetWait: time.Minute})

	require.NoError(t, rl.Wait(context.Background()))
	clock.now = clock.now.Add(300 * time.Millisecond)
	require.NoError(t, rl.Wait(context.Background()))
	clock.now = clock.now.Add(2 * time.Second)
	require.NoError(t, rl.Wait(context.Background()))

	assert.Equal(t, []time.Duration{700 * time.Millisecond}, clock.sleeps)

	stats := rl.Stats()
	assert.Equal(t, int64(1), stats.TotalWaits)
	assert.Equal(t, 700*time.Millisecond, stats.TotalDelayTime)
}

func TestRateLimiter_UpdateIgnoresMissingHeaders(t *testing.T) {
	rl, clock := newTestRateLimiter(nil)
	reset := clock.now.Add(time.Hour)

	rl.Update(rate(5000, 4999, reset))
	rl.Update(github.Rate{})

	stats := rl.Stats()
	assert.Equal(t, 4999, stats.RemainingRequests)
	assert.Equal(t, reset, stats.ResetTime)
}

func TestRateLimiter_ContextCancelled(t *testing.T) {
	rl, clock := newTestRateLimiter(nil)
	rl.Update(rate(5000, 1, clock.now.Add(time.Hour)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
