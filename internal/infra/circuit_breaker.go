package infra

import (
	"sync"
	"time"

	"log/slog"
)

// BreakerState is the lifecycle state of a service breaker.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker guards one upstream HTTP service. Consecutive failures trip
// it open; after a cooldown it admits probe requests, and enough probe
// successes close it again. Thread-safe.
type CircuitBreaker struct {
	service string
	mu      sync.Mutex

	state    BreakerState
	failures int
	probes   int // successes observed while half-open
	openedAt time.Time

	tripAfter  int
	probeQuota int
	cooldown   time.Duration
}

// CircuitBreakerConfig sizes a breaker for one service.
type CircuitBreakerConfig struct {
	Service    string
	TripAfter  int           // consecutive failures before opening
	ProbeQuota int           // half-open successes required to close
	Cooldown   time.Duration // open time before admitting probes
}

// CandleBreakerConfig sizes the breaker for the historical-candle service.
// Candle fetches are retried naturally (scroll, retarget), so the breaker
// tolerates more failures and reopens quickly after a single good probe.
func CandleBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Service:    "candle-service",
		TripAfter:  5,
		ProbeQuota: 1,
		Cooldown:   20 * time.Second,
	}
}

// ExecBreakerConfig sizes the breaker for the order execution service. Order
// placement is user-initiated and must not flap: trip early, cool down
// longer, and require two clean probes before trusting the service again.
func ExecBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Service:    "exec-service",
		TripAfter:  3,
		ProbeQuota: 2,
		Cooldown:   45 * time.Second,
	}
}

// NewCircuitBreaker creates a closed breaker with the given sizing.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		service:    cfg.Service,
		state:      BreakerClosed,
		tripAfter:  cfg.TripAfter,
		probeQuota: cfg.ProbeQuota,
		cooldown:   cfg.Cooldown,
	}
}

// Allow reports whether a request may proceed. An open breaker whose cooldown
// has elapsed moves to half-open and admits the request as a probe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerClosed, BreakerHalfOpen:
		return true

	case BreakerOpen:
		if time.Since(cb.openedAt) > cb.cooldown {
			cb.state = BreakerHalfOpen
			cb.probes = 0
			slog.Info("Breaker admitting probes", "service", cb.service)
			return true
		}
		return false

	default:
		return false
	}
}

// RecordSuccess clears the failure streak; in half-open it counts toward the
// probe quota and closes the breaker once met.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerClosed:
		cb.failures = 0

	case BreakerHalfOpen:
		cb.probes++
		if cb.probes >= cb.probeQuota {
			cb.state = BreakerClosed
			cb.failures = 0
			cb.probes = 0
			slog.Info("Breaker closed, service recovered", "service", cb.service)
		}
	}
}

// RecordFailure extends the failure streak. The streak reaching the trip
// threshold, or any failed probe, opens the breaker and restarts the cooldown.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerClosed:
		cb.failures++
		if cb.failures >= cb.tripAfter {
			cb.trip("failure streak")
		}

	case BreakerHalfOpen:
		cb.probes = 0
		cb.trip("probe failed")
	}
}

// trip opens the breaker. Callers hold cb.mu.
func (cb *CircuitBreaker) trip(cause string) {
	cb.state = BreakerOpen
	cb.openedAt = time.Now()
	BreakerTrips.WithLabelValues(cb.service).Inc()
	slog.Warn("Breaker open, rejecting requests",
		"service", cb.service, "cause", cause, "cooldown", cb.cooldown)
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
