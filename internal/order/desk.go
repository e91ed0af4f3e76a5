package order

import (
	"context"

	"github.com/vedant-shah/pair/internal/domain"
)

// Submitter abstracts the execution client for testing.
type Submitter interface {
	Submit(ctx context.Context, req Request, orderType domain.OrderType) error
}

// Desk ties the reconciler and client together into the one user-facing
// submit operation: validate, post, and reset the form only on success.
type Desk struct {
	Sizing *SizingReconciler
	client Submitter
	first  string
	second string
}

// NewDesk creates a desk for the given pair legs.
func NewDesk(sizing *SizingReconciler, client Submitter, first, second string) *Desk {
	return &Desk{Sizing: sizing, client: client, first: first, second: second}
}

// PlaceOrder builds and submits the current form. On success the form is
// reset (size, price, slider cleared, TP/SL collapsed to one empty row); on
// any failure the form is left untouched for correction.
func (d *Desk) PlaceOrder(ctx context.Context, orientation domain.Orientation) error {
	form := d.Sizing.Form()

	req, err := Build(form, orientation, d.first, d.second)
	if err != nil {
		return err
	}

	if err := d.client.Submit(ctx, req, form.Type); err != nil {
		return err
	}

	d.Sizing.Reset()
	return nil
}
