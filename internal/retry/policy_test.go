package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

func TestPolicy_Delay(t *testing.T) {
	tests := []struct {
		name string
		mode config.RetryBackoffMode
		want []time.Duration
	}{
		{"fixed", config.RetryBackoffFixed, []time.Duration{0, 100 * time.Millisecond, 100 * time.Millisecond, 100 * time.Millisecond}},
		{"linear", config.RetryBackoffLinear, []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}},
		{"exponential", config.RetryBackoffExponential, []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Policy{Mode: tt.mode, Initial: 100 * time.Millisecond, Max: 300 * time.Millisecond, MaxRetries: 3}
			for i, want := range tt.want {
				if got := p.Delay(i); got != want {
					t.Errorf("Delay(%d) = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestPolicy_ExponentialLargeAttemptIsCapped(t *testing.T) {
	p := Policy{Mode: config.RetryBackoffExponential, Initial: time.Second, Max: 5 * time.Second}
	require.Equal(t, 5*time.Second, p.Delay(64))
}

func TestFromConfig(t *testing.T) {
	p := FromConfig(config.RetryConfig{})
	require.Equal(t, DefaultPolicy(), p)

	p = FromConfig(config.RetryConfig{Mode: config.RetryBackoffFixed, Initial: 5 * time.Second, Max: time.Second, MaxRetries: 4})
	require.Equal(t, config.RetryBackoffFixed, p.Mode)
	require.Equal(t, time.Second, p.Initial, "initial is clamped to max")
	require.Equal(t, 4, p.MaxRetries)
	require.NoError(t, p.Validate())
}

func TestPolicy_Validate(t *testing.T) {
	require.Error(t, Policy{Initial: 0, Max: time.Second}.Validate())
	require.Error(t, Policy{Initial: time.Second, Max: 0}.Validate())
	require.Error(t, Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}.Validate())
}

func TestPolicy_Do(t *testing.T) {
	p := Policy{Mode: config.RetryBackoffFixed, Initial: time.Millisecond, Max: time.Millisecond, MaxRetries: 2}
	transient := errors.New("transient")

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 3, calls)

	calls = 0
	err = p.Do(context.Background(), func(context.Context) error {
		calls++
		return transient
	}, nil)
	require.ErrorIs(t, err, transient)
	require.Equal(t, 3, calls)

	permanent := errors.New("permanent")
	calls = 0
	err = p.Do(context.Background(), func(context.Context) error {
		calls++
		return permanent
	}, func(err error) bool { return !errors.Is(err, permanent) })
	require.ErrorIs(t, err, permanent)
	require.Equal(t, 1, calls)
}

func TestPolicy_DoStopsOnCancel(t *testing.T) {
	p := Policy{Mode: config.RetryBackoffFixed, Initial: time.Hour, Max: time.Hour, MaxRetries: 5}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := p.Do(ctx, func(context.Context) error {
		calls++
		return errors.New("fail")
	}, nil)
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
