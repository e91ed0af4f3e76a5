package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/vedant-shah/pair/internal/domain"
)

// ControlHandler exposes the desk over HTTP. It is meant for the localhost
// debug listener: a control surface (or curl) posts the form inputs and the
// desk runs the usual validate-build-submit-reset cycle.
type ControlHandler struct {
	desk *Desk
}

// NewControlHandler wraps the desk for mounting on an HTTP mux.
func NewControlHandler(desk *Desk) *ControlHandler {
	return &ControlHandler{desk: desk}
}

// controlOrder is the POST payload: direction plus the form fields to apply
// before placing. Omitted fields leave the current form state untouched.
type controlOrder struct {
	Direction string             `json:"direction"` // buy | sell
	Type      string             `json:"type,omitempty"`
	SliderPct *float64           `json:"slider_pct,omitempty"`
	Size      string             `json:"size,omitempty"`
	LimitPx   string             `json:"limit_px,omitempty"`
	Leverage  *domain.Leverage   `json:"leverage,omitempty"`
	TPSL      []domain.TPSLEntry `json:"tpsl,omitempty"`
}

type controlAck struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (h *ControlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAck(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req controlOrder
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAck(w, http.StatusBadRequest, "malformed body: "+err.Error())
		return
	}

	var orientation domain.Orientation
	switch req.Direction {
	case "buy":
		orientation = domain.BuyFirst
	case "sell":
		orientation = domain.SellFirst
	default:
		writeAck(w, http.StatusBadRequest, "direction must be buy or sell")
		return
	}

	h.applyForm(req)

	if err := h.desk.PlaceOrder(r.Context(), orientation); err != nil {
		slog.Warn("Control order failed", "direction", req.Direction, "err", err)
		writeAck(w, placeStatus(err), err.Error())
		return
	}

	writeAck(w, http.StatusOK, "")
}

// applyForm pushes the posted fields through the reconciler in the same order
// a user edit would: leverage and slider first, a manual size last so it wins.
func (h *ControlHandler) applyForm(req controlOrder) {
	sizing := h.desk.Sizing

	if req.Leverage != nil {
		sizing.SetLeverage(req.Leverage.First, req.Leverage.Second)
	}
	if req.SliderPct != nil {
		sizing.SetSlider(*req.SliderPct)
	}
	if req.Size != "" {
		sizing.SetSize(req.Size)
	}

	switch req.Type {
	case string(domain.OrderLimit):
		sizing.SetOrderType(domain.OrderLimit)
	case string(domain.OrderMarket):
		sizing.SetOrderType(domain.OrderMarket)
	}
	if req.LimitPx != "" {
		sizing.SetLimitPx(req.LimitPx)
	}

	for i, e := range req.TPSL {
		if i > 0 {
			sizing.AddTPSLRow()
		}
		sizing.SetTPSLRow(i, e)
	}
}

// placeStatus maps a PlaceOrder error to an HTTP status: validation failures
// are the caller's fault, an open breaker is a temporary outage, anything
// else is the upstream service misbehaving.
func placeStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoTPSL),
		errors.Is(err, ErrTPPercentSum),
		errors.Is(err, ErrZeroSize),
		errors.Is(err, ErrNoLimitPrice):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrExecServiceDown):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeAck(w http.ResponseWriter, status int, errMsg string) {
	ack := controlAck{Status: "ok"}
	if errMsg != "" {
		ack.Status = "error"
		ack.Error = errMsg
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ack)
}
