package engine

import (
	"context"
	"math"
	"sync"
	"time"

	"log/slog"

	"github.com/vedant-shah/pair/internal/domain"
	"github.com/vedant-shah/pair/internal/event"
	"github.com/vedant-shah/pair/internal/infra"
)

// SlotState is the explicit state of the two per-asset quote slots.
type SlotState int

const (
	SlotsEmpty   SlotState = iota // Neither side observed yet
	SlotsPartial                  // Exactly one side observed
	SlotsReady                    // Both sides observed; emission allowed
)

func (s SlotState) String() string {
	switch s {
	case SlotsPartial:
		return "PARTIAL"
	case SlotsReady:
		return "READY"
	default:
		return "EMPTY"
	}
}

// nextSlotState is the pure transition function of the slot machine.
func nextSlotState(haveFirst, haveSecond bool) SlotState {
	switch {
	case haveFirst && haveSecond:
		return SlotsReady
	case haveFirst || haveSecond:
		return SlotsPartial
	default:
		return SlotsEmpty
	}
}

// QuotePublisher receives every emitted pair quote for external consumers.
// Implementations must be fast or buffer internally; they run on the hotpath.
type QuotePublisher interface {
	Publish(ctx context.Context, q domain.PairQuote)
}

// Callbacks is the boundary where consumers of derived state attach.
type Callbacks struct {
	OnQuote  func(domain.PairQuote)
	OnBook   func(domain.SyntheticBook)
	OnCandle func(pair, interval string, c domain.Candle)
}

// Synthesizer is the single-threaded owner of pair state. Feed workers send
// events into its inbox; one goroutine (Run) consumes them in arrival order,
// maintains the quote slots and raw books, and emits derived pair quotes and
// synthetic books through the callbacks. A pair quote is only ever emitted
// once both slots have been populated, and again on every single-side update
// after that.
type Synthesizer struct {
	inbox  chan event.Event
	first  string
	second string

	slotFirst  domain.AssetQuote
	slotSecond domain.AssetQuote
	haveFirst  bool
	haveSecond bool

	prevMark float64
	book     *BookSynthesizer

	publisher QuotePublisher
	cb        Callbacks

	// FlashWindow is how long an emitted flash direction stays set before a
	// clearing re-emission. Overridable in tests.
	FlashWindow time.Duration

	mu        sync.RWMutex // External reads only; the loop is the sole writer
	state     SlotState
	lastQuote domain.PairQuote
	haveQuote bool
	lastBook  domain.SyntheticBook
}

// NewSynthesizer creates a synthesizer for the given pair legs. publisher may
// be nil.
func NewSynthesizer(first, second string, inboxSize int, publisher QuotePublisher, cb Callbacks) *Synthesizer {
	return &Synthesizer{
		inbox:       make(chan event.Event, inboxSize),
		first:       first,
		second:      second,
		prevMark:    math.NaN(),
		book:        NewBookSynthesizer(first, second),
		publisher:   publisher,
		cb:          cb,
		FlashWindow: time.Second,
	}
}

// Inbox returns the event channel. Feed workers send events here.
func (s *Synthesizer) Inbox() chan<- event.Event {
	return s.inbox
}

// SetOrientation flips the synthetic book side mapping. The flip travels
// through the inbox so it is ordered against in-flight book updates.
func (s *Synthesizer) SetOrientation(o domain.Orientation) {
	s.inbox <- &event.OrientEvent{Orientation: o}
}

// Run starts the event loop. It MUST be run in a single goroutine and returns
// when ctx is cancelled.
func (s *Synthesizer) Run(ctx context.Context) {
	slog.Info("Synthesizer started", "first", s.first, "second", s.second)

	flash := time.NewTimer(s.FlashWindow)
	if !flash.Stop() {
		<-flash.C
	}
	defer flash.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Synthesizer stopping...")
			return
		case <-flash.C:
			s.clearFlash()
		case ev := <-s.inbox:
			s.processEvent(ctx, ev, flash)
		}
	}
}

func (s *Synthesizer) processEvent(ctx context.Context, ev event.Event, flash *time.Timer) {
	switch e := ev.(type) {
	case *event.QuoteEvent:
		s.handleQuote(ctx, e.Quote, flash)
		event.ReleaseQuoteEvent(e)
	case *event.BookEvent:
		s.handleBook(e.Book)
		event.ReleaseBookEvent(e)
	case *event.CandleEvent:
		if s.cb.OnCandle != nil {
			s.cb.OnCandle(e.Pair, e.Interval, e.Candle)
		}
	case *event.OrientEvent:
		s.handleOrient(e.Orientation)
	default:
		slog.Warn("Unknown event type", slog.Any("type", ev.GetType()))
	}
}

func (s *Synthesizer) handleQuote(ctx context.Context, q domain.AssetQuote, flash *time.Timer) {
	switch q.Symbol {
	case s.first:
		s.slotFirst = q
		s.haveFirst = true
	case s.second:
		s.slotSecond = q
		s.haveSecond = true
	default:
		return
	}

	state := nextSlotState(s.haveFirst, s.haveSecond)

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	if state != SlotsReady {
		return
	}

	pq := domain.DerivePair(s.slotFirst, s.slotSecond, s.prevMark)
	if pq.Valid {
		s.prevMark = pq.Mark
		infra.PairMark.Set(pq.Mark)
	}

	s.mu.Lock()
	s.lastQuote = pq
	s.haveQuote = true
	s.mu.Unlock()

	if pq.Flash != domain.FlashNone {
		if !flash.Stop() {
			select {
			case <-flash.C:
			default:
			}
		}
		flash.Reset(s.FlashWindow)
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, pq)
	}
	if s.cb.OnQuote != nil {
		s.cb.OnQuote(pq)
	}
}

// clearFlash re-emits the last quote with the flash direction cleared once the
// display window elapses.
func (s *Synthesizer) clearFlash() {
	s.mu.Lock()
	if !s.haveQuote || s.lastQuote.Flash == domain.FlashNone {
		s.mu.Unlock()
		return
	}
	s.lastQuote.Flash = domain.FlashNone
	pq := s.lastQuote
	s.mu.Unlock()

	if s.cb.OnQuote != nil {
		s.cb.OnQuote(pq)
	}
}

func (s *Synthesizer) handleBook(raw domain.RawBook) {
	sb := s.book.Update(raw)

	s.mu.Lock()
	s.lastBook = sb
	s.mu.Unlock()

	if s.cb.OnBook != nil {
		s.cb.OnBook(sb)
	}
}

func (s *Synthesizer) handleOrient(o domain.Orientation) {
	sb := s.book.SetOrientation(o)

	s.mu.Lock()
	s.lastBook = sb
	s.mu.Unlock()

	if s.cb.OnBook != nil {
		s.cb.OnBook(sb)
	}
}

// State returns the current slot state (external read).
func (s *Synthesizer) State() SlotState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastQuote returns the most recently emitted pair quote (external read).
func (s *Synthesizer) LastQuote() (domain.PairQuote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastQuote, s.haveQuote
}

// Book returns the latest synthetic book (external read).
func (s *Synthesizer) Book() domain.SyntheticBook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastBook
}
