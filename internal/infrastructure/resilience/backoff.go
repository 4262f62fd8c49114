package resilience

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Stop is returned by NextBackOff once attempts are exhausted.
const Stop = backoff.Stop

// BackoffSettings bounds the reconnect delay.
type BackoffSettings struct {
	// Min is the delay floor; every wait is at least this long.
	Min time.Duration
	// Max caps the exponential growth.
	Max time.Duration
	// MaxAttempts limits consecutive retries; zero retries forever.
	MaxAttempts int
}

// DefaultBackoffSettings returns the daemon's reconnect policy.
func DefaultBackoffSettings() BackoffSettings {
	return BackoffSettings{
		Min: 500 * time.Millisecond,
		Max: 30 * time.Second,
	}
}

// NewBackoff builds an exponential policy with jitter that never waits less
// than s.Min, so a flapping socket cannot busy-loop the daemon.
func NewBackoff(s BackoffSettings) backoff.BackOff {
	if s.Min <= 0 {
		s.Min = DefaultBackoffSettings().Min
	}
	if s.Max < s.Min {
		s.Max = s.Min
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.Min
	exp.MaxInterval = s.Max
	exp.Multiplier = 2
	exp.RandomizationFactor = 0.2
	exp.MaxElapsedTime = 0
	exp.Reset()

	var policy backoff.BackOff = &floor{BackOff: exp, min: s.Min}
	if s.MaxAttempts > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(s.MaxAttempts))
	}
	return policy
}

type floor struct {
	backoff.BackOff
	min time.Duration
}

func (f *floor) NextBackOff() time.Duration {
	d := f.BackOff.NextBackOff()
	if d == backoff.Stop {
		return d
	}
	if d < f.min {
		return f.min
	}
	return d
}
