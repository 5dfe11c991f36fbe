package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTimeout = errors.New("timeout")

func fail() error    { return errTimeout }
func succeed() error { return nil }

func newClockedBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *time.Time) {
	b := NewCircuitBreaker(cfg)
	now := time.Date(2024, 4, 11, 7, 30, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	t.Parallel()

	b, now := newClockedBreaker(CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: 5 * time.Second, Probes: 1})

	require.ErrorIs(t, b.Call(fail, nil), errTimeout)
	assert.Equal(t, CircuitStateClosed, b.State())
	require.ErrorIs(t, b.Call(fail, nil), errTimeout)
	assert.Equal(t, CircuitStateOpen, b.State())

	calls := 0
	err := b.Call(func() error { calls++; return nil }, nil)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls)

	*now = now.Add(6 * time.Second)
	assert.Equal(t, CircuitStateHalfOpen, b.State())
	require.NoError(t, b.Call(succeed, nil))
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	t.Parallel()

	b, now := newClockedBreaker(CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Second})

	_ = b.Call(fail, nil)
	*now = now.Add(2 * time.Second)
	_ = b.Call(fail, nil)
	assert.Equal(t, CircuitStateOpen, b.State())
	require.ErrorIs(t, b.Call(succeed, nil), ErrCircuitOpen)
}

func TestCircuitBreaker_SuccessResetsFailureRun(t *testing.T) {
	t.Parallel()

	b, _ := newClockedBreaker(CircuitBreakerConfig{Enabled: true, FailureThreshold: 2})

	_ = b.Call(fail, nil)
	_ = b.Call(succeed, nil)
	_ = b.Call(fail, nil)
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestCircuitBreaker_UncountedErrorsDoNotTrip(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: true, FailureThreshold: 1})
	errBadRequest := errors.New("bad request")
	onlyTimeouts := func(err error) bool { return errors.Is(err, errTimeout) }

	require.ErrorIs(t, b.Call(func() error { return errBadRequest }, onlyTimeouts), errBadRequest)
	assert.Equal(t, CircuitStateClosed, b.State())

	_ = b.Call(fail, onlyTimeouts)
	assert.Equal(t, CircuitStateOpen, b.State())
}

func TestCircuitBreaker_DisabledIsNil(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(CircuitBreakerConfig{})
	require.Nil(t, b)
	require.ErrorIs(t, b.Call(fail, nil), errTimeout)
	assert.Equal(t, CircuitStateClosed, b.State())
}

func TestDefaultCircuitBreakerConfig_FillsZeroFields(t *testing.T) {
	t.Parallel()

	cfg := CircuitBreakerConfig{Enabled: true}.withDefaults()
	assert.Equal(t, DefaultCircuitBreakerConfig(), cfg)
}
