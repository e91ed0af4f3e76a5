package infra

import (
	"testing"
	"time"
)

func newTestBreaker(tripAfter, probeQuota int, cooldown time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		Service:    "test-service",
		TripAfter:  tripAfter,
		ProbeQuota: probeQuota,
		Cooldown:   cooldown,
	})
}

func TestCircuitBreaker_TripsOnFailureStreak(t *testing.T) {
	cb := newTestBreaker(3, 1, time.Minute)

	cb.RecordFailure()
	cb.RecordFailure()
	if got := cb.State(); got != BreakerClosed {
		t.Fatalf("state after 2 failures = %v, want closed", got)
	}
	if !cb.Allow() {
		t.Error("closed breaker must allow requests")
	}

	cb.RecordFailure()
	if got := cb.State(); got != BreakerOpen {
		t.Fatalf("state after 3 failures = %v, want open", got)
	}
	if cb.Allow() {
		t.Error("open breaker must reject requests")
	}
}

func TestCircuitBreaker_SuccessResetsStreak(t *testing.T) {
	cb := newTestBreaker(3, 1, time.Minute)

	// Failures interleaved with successes never reach the trip threshold.
	for i := 0; i < 10; i++ {
		cb.RecordFailure()
		cb.RecordFailure()
		cb.RecordSuccess()
	}
	if got := cb.State(); got != BreakerClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestCircuitBreaker_ProbesAfterCooldown(t *testing.T) {
	cb := newTestBreaker(1, 1, 20*time.Millisecond)

	cb.RecordFailure()
	if cb.Allow() {
		t.Fatal("open breaker must reject before cooldown")
	}

	time.Sleep(30 * time.Millisecond)

	if !cb.Allow() {
		t.Fatal("breaker must admit a probe after cooldown")
	}
	if got := cb.State(); got != BreakerHalfOpen {
		t.Errorf("state = %v, want half-open", got)
	}
}

func TestCircuitBreaker_ProbeQuotaCloses(t *testing.T) {
	cb := newTestBreaker(1, 2, 10*time.Millisecond)

	cb.RecordFailure()
	time.Sleep(15 * time.Millisecond)
	cb.Allow() // move to half-open

	cb.RecordSuccess()
	if got := cb.State(); got != BreakerHalfOpen {
		t.Fatalf("state after 1 probe success = %v, want half-open", got)
	}

	cb.RecordSuccess()
	if got := cb.State(); got != BreakerClosed {
		t.Errorf("state after 2 probe successes = %v, want closed", got)
	}
	if !cb.Allow() {
		t.Error("recovered breaker must allow requests")
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb := newTestBreaker(1, 2, 10*time.Millisecond)

	cb.RecordFailure()
	time.Sleep(15 * time.Millisecond)
	cb.Allow()
	cb.RecordSuccess()

	// A failed probe discards partial probe progress and restarts the cooldown.
	cb.RecordFailure()
	if got := cb.State(); got != BreakerOpen {
		t.Fatalf("state after failed probe = %v, want open", got)
	}
	if cb.Allow() {
		t.Error("reopened breaker must reject requests")
	}
}

func TestBreakerConfigs_PerService(t *testing.T) {
	tests := []struct {
		name      string
		cfg       CircuitBreakerConfig
		tripAfter int
	}{
		{"candle", CandleBreakerConfig(), 5},
		{"exec", ExecBreakerConfig(), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.Service == "" {
				t.Error("service name must be set")
			}
			if tt.cfg.TripAfter != tt.tripAfter {
				t.Errorf("TripAfter = %d, want %d", tt.cfg.TripAfter, tt.tripAfter)
			}

			cb := NewCircuitBreaker(tt.cfg)
			for i := 0; i < tt.tripAfter-1; i++ {
				cb.RecordFailure()
			}
			if got := cb.State(); got != BreakerClosed {
				t.Fatalf("state one failure short of the threshold = %v, want closed", got)
			}
			cb.RecordFailure()
			if got := cb.State(); got != BreakerOpen {
				t.Errorf("state at threshold = %v, want open", got)
			}
		})
	}
}
