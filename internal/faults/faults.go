// Package faults provides the injectable fault policy used to simulate an
// unreliable remote backend: per-operation latency plus randomized,
// input-independent transient failures.
package faults

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrTransient marks a simulated, input-independent operation failure.
// Callers match it with errors.Is and may retry manually.
var ErrTransient = errors.New("transient failure")

// Default simulation parameters.
const (
	DefaultMinDelay = 500 * time.Millisecond
	DefaultMaxDelay = 1500 * time.Millisecond
	DefaultRate     = 0.1
)

var faultsInjectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "faults_injected_total",
		Help: "Total number of simulated transient failures injected, by operation",
	},
	[]string{"operation"},
)

// Policy decides, per operation, how long a call should stall and whether it
// should fail. Implementations must be safe for concurrent use.
type Policy interface {
	// Delay returns the simulated network latency for one call.
	Delay() time.Duration

	// Fail returns a non-nil error if the named operation should be
	// rejected with a transient failure, nil otherwise.
	Fail(operation string) error
}

// RandomPolicy injects uniformly distributed latency and fails each call
// independently with a fixed probability.
type RandomPolicy struct {
	mu       sync.Mutex
	rng      *rand.Rand
	minDelay time.Duration
	maxDelay time.Duration
	rate     float64
}

// NewRandomPolicy creates a RandomPolicy with its own seeded random source.
// Out-of-range arguments are clamped to sensible values.
func NewRandomPolicy(minDelay, maxDelay time.Duration, rate float64) *RandomPolicy {
	if minDelay < 0 {
		minDelay = 0
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}

	return &RandomPolicy{
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		minDelay: minDelay,
		maxDelay: maxDelay,
		rate:     rate,
	}
}

// Delay returns a duration uniformly distributed in [minDelay, maxDelay].
func (p *RandomPolicy) Delay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	spread := p.maxDelay - p.minDelay
	if spread <= 0 {
		return p.minDelay
	}

	return p.minDelay + time.Duration(p.rng.Int63n(int64(spread)+1))
}

// Fail rejects the call with probability rate, independent of input.
func (p *RandomPolicy) Fail(operation string) error {
	p.mu.Lock()
	roll := p.rng.Float64()
	p.mu.Unlock()

	if roll >= p.rate {
		return nil
	}

	faultsInjectedTotal.WithLabelValues(operation).Inc()

	return fmt.Errorf("failed to %s: %w", operation, ErrTransient)
}

// nonePolicy never delays and never fails.
type nonePolicy struct{}

func (nonePolicy) Delay() time.Duration { return 0 }

func (nonePolicy) Fail(string) error { return nil }

// None returns a policy that injects nothing. Used when fault simulation is
// disabled and as a safe default in tests.
func None() Policy {
	return nonePolicy{}
}
