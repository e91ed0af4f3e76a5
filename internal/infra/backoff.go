package infra

import (
	"time"
)

const (
	// The first reconnect fires after the feed's observed 3s delay; subsequent
	// attempts back off exponentially up to the cap.
	reconnectBase = 3 * time.Second
	reconnectMax  = 60 * time.Second
)

// ReconnectDelay returns the backoff duration for a given retry count.
// Logic: reconnectBase * 2^retryCount, capped at reconnectMax.
// If retryCount is negative, it returns reconnectBase.
func ReconnectDelay(retryCount int) time.Duration {
	if retryCount < 0 {
		return reconnectBase
	}

	// 2^30 seconds already exceeds any sensible cap; bound the shift to avoid
	// overflow.
	if retryCount > 30 {
		return reconnectMax
	}

	delay := reconnectBase * time.Duration(1<<retryCount)
	if delay > reconnectMax {
		return reconnectMax
	}

	return delay
}
