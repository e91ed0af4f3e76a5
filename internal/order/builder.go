package order

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vedant-shah/pair/internal/domain"
)

// Validation failures, surfaced to the user before any network call.
var (
	ErrNoTPSL       = errors.New("at least one complete take-profit/stop-loss entry is required")
	ErrTPPercentSum = errors.New("take-profit percentages must not exceed 100 in total")
	ErrZeroSize     = errors.New("order size must be non-zero")
	ErrNoLimitPrice = errors.New("limit orders require a price")
)

// TPLeg is one take-profit leg of the submission payload.
type TPLeg struct {
	Perc  string `json:"perc"`
	Price string `json:"price"`
}

// Request is the order submission payload for the execution service.
type Request struct {
	Direction       string  `json:"direction"`
	Quote           string  `json:"quote"`
	Base            string  `json:"base"`
	RestingUsdcSize string  `json:"restingUsdcSize"`
	Slippage        string  `json:"slippage"`
	TP              []TPLeg `json:"tp"`
	SL              string  `json:"sl"`
	QuoteLeverage   int     `json:"quoteLeverage"`
	BaseLeverage    int     `json:"baseLeverage"`
	Entry           string  `json:"entry,omitempty"`
	ClientID        string  `json:"clientId"`
}

// Build validates the form and assembles the submission payload. first and
// second are the pair legs in display order; the orientation decides the
// trade direction. Validation failures return one of the sentinel errors
// above and never reach the network.
func Build(form domain.OrderForm, orientation domain.Orientation, first, second string) (Request, error) {
	var complete []domain.TPSLEntry
	for _, e := range form.TPSL {
		if e.Complete() {
			complete = append(complete, e)
		}
	}
	if len(complete) == 0 {
		return Request{}, ErrNoTPSL
	}

	percSum := decimal.Zero
	tp := make([]TPLeg, 0, len(complete))
	for _, e := range complete {
		p, err := decimal.NewFromString(e.TakeProfitPercent)
		if err != nil {
			return Request{}, fmt.Errorf("%w: bad percentage %q", ErrTPPercentSum, e.TakeProfitPercent)
		}
		percSum = percSum.Add(p)
		tp = append(tp, TPLeg{Perc: e.TakeProfitPercent, Price: e.TakeProfitPrice})
	}
	if percSum.GreaterThan(oneHundred) {
		return Request{}, ErrTPPercentSum
	}

	size, err := decimal.NewFromString(form.Size)
	if err != nil || size.IsZero() {
		return Request{}, ErrZeroSize
	}

	req := Request{
		Direction:       orientation.String(),
		Quote:           first,
		Base:            second,
		RestingUsdcSize: size.String(),
		Slippage:        form.SlippagePct,
		TP:              tp,
		SL:              complete[0].StopLossPrice,
		QuoteLeverage:   form.Leverage.First,
		BaseLeverage:    form.Leverage.Second,
		ClientID:        uuid.NewString(),
	}

	if form.Type == domain.OrderLimit {
		if form.LimitPx == "" {
			return Request{}, ErrNoLimitPrice
		}
		req.Entry = form.LimitPx
	}

	return req, nil
}
