// Package backoff computes capped exponential retry delays.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Policy maps an attempt number to a delay. The zero value is unusable; use
// New or fill the fields explicitly.
type Policy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Factor       float64

	// Jitter, when non-nil, returns a sample in [0,1] that scales the delay
	// so concurrent retries spread out. Injected for reproducible tests.
	Jitter func() float64
}

// New returns a policy with factor 2 and no jitter.
func New(initial, max time.Duration) Policy {
	return Policy{InitialDelay: initial, MaxDelay: max, Factor: 2}
}

// WithJitter returns a copy of the policy jittered by the shared math/rand
// source.
func (p Policy) WithJitter() Policy {
	p.Jitter = rand.Float64
	return p
}

// Delay returns min(MaxDelay, InitialDelay * Factor^attempt), scaled by the
// jitter sample when one is configured. Negative attempts are treated as 0.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	initial := p.InitialDelay
	if initial <= 0 {
		initial = 300 * time.Millisecond
	}
	max := p.MaxDelay
	if max <= 0 {
		max = 10 * time.Second
	}
	factor := p.Factor
	if factor <= 1 {
		factor = 2
	}

	d := float64(initial) * math.Pow(factor, float64(attempt))
	if d > float64(max) || math.IsInf(d, 1) {
		d = float64(max)
	}
	if p.Jitter != nil {
		d *= p.Jitter()
	}
	return time.Duration(d)
}
