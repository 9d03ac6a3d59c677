package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pivot/internal/config"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, config.RetryBackoffLinear, p.Mode)
	assert.Equal(t, time.Second, p.Initial)
	assert.Equal(t, 30*time.Second, p.Max)
	assert.Equal(t, 2, p.MaxRetries)
}

func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	// initial > max -> clamped
	assert.Equal(t, 2*time.Second, p.Initial)
	assert.Equal(t, 2*time.Second, p.Max)
	assert.Equal(t, config.RetryBackoffFixed, p.Mode)
	assert.Equal(t, 5, p.MaxRetries)

	unknown := NewPolicy("zigzag", 0, 0, -1)
	assert.Equal(t, DefaultPolicy(), unknown)
}

func TestFromSyncConfig(t *testing.T) {
	p := FromSyncConfig(config.SyncConfig{
		MaxRetries:        4,
		RetryBackoff:      config.RetryBackoffExponential,
		RetryInitialDelay: "200ms",
		RetryMaxDelay:     "2s",
	})
	assert.Equal(t, Policy{Mode: config.RetryBackoffExponential, Initial: 200 * time.Millisecond, Max: 2 * time.Second, MaxRetries: 4}, p)
}

func TestDelayModes(t *testing.T) {
	ms := time.Millisecond
	cases := []struct {
		name   string
		policy Policy
		want   []time.Duration
	}{
		{"fixed", NewPolicy(config.RetryBackoffFixed, 100*ms, 500*ms, 3), []time.Duration{100 * ms, 100 * ms, 100 * ms}},
		{"linear", NewPolicy(config.RetryBackoffLinear, 100*ms, 250*ms, 5), []time.Duration{100 * ms, 200 * ms, 250 * ms, 250 * ms}},
		{"exponential", NewPolicy(config.RetryBackoffExponential, 50*ms, 160*ms, 5), []time.Duration{50 * ms, 100 * ms, 160 * ms, 160 * ms}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for i, want := range tc.want {
				assert.Equal(t, want, tc.policy.Delay(i+1), "retry %d", i+1)
			}
		})
	}
}

func TestDelayEdgeCases(t *testing.T) {
	p := NewPolicy(config.RetryBackoffLinear, 10*time.Millisecond, 20*time.Millisecond, 1)
	assert.Zero(t, p.Delay(0))
	assert.Zero(t, p.Delay(-1))

	exp := NewPolicy(config.RetryBackoffExponential, time.Second, time.Minute, 100)
	assert.Equal(t, time.Minute, exp.Delay(80))
}

func TestValidate(t *testing.T) {
	assert.Error(t, Policy{Mode: config.RetryBackoffLinear, Initial: 0, Max: time.Second}.Validate())
	assert.Error(t, Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: 0}.Validate())
	assert.Error(t, Policy{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
	assert.NoError(t, DefaultPolicy().Validate())
}

func fastPolicy(retries int) Policy {
	return NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, retries)
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	var retried []int
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	}, nil, func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) })

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("denied")
	calls := 0
	err := fastPolicy(5).Do(context.Background(), func(context.Context) error {
		calls++
		return permanent
	}, func(err error) bool { return !errors.Is(err, permanent) }, nil)

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_Exhausted(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := fastPolicy(2).Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	}, nil, nil)

	require.ErrorIs(t, err, ErrExhausted)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 3)
	boom := errors.New("boom")
	err := p.Do(ctx, func(context.Context) error { return boom }, nil, func(int, time.Duration, error) { cancel() })

	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, boom)
}
