package cache

import (
	"context"
	"testing"

	"github.com/vedant-shah/pair/internal/domain"
)

func TestQuoteCache_NilIsNoOp(t *testing.T) {
	var c *QuoteCache

	// All methods must be safe on the disabled cache.
	c.Publish(context.Background(), domain.PairQuote{First: "BTC", Second: "SOL", Mark: 400, Valid: true})

	if _, ok, err := c.Latest(context.Background(), "BTC", "SOL"); ok || err != nil {
		t.Errorf("nil cache Latest: ok=%v err=%v", ok, err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("nil cache Close: %v", err)
	}
}

func TestNewQuoteCache_EmptyAddrDisables(t *testing.T) {
	c, err := NewQuoteCache("", 0)
	if err != nil {
		t.Fatalf("empty addr must not error: %v", err)
	}
	if c != nil {
		t.Error("empty addr must return a nil (disabled) cache")
	}
}
