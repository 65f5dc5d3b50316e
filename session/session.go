package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"visual-product-builder/models"
)

// Session errors surfaced to the shopper as blocking messages
var (
	ErrLimitReached      = errors.New("element limit reached")
	ErrReorderNotAllowed = errors.New("manual reordering is not available on your plan")
	ErrIndexOutOfRange   = errors.New("element index out of range")
	ErrConfirmRequired   = errors.New("reset requires confirmation")
	ErrSubmitInFlight    = errors.New("a submission is already in progress")
)

// Session is an in-progress configurator for one product. All mutations are
// serialized by an internal mutex; undo is a full-state snapshot stack.
type Session struct {
	ID         string
	ProductID  int
	BasePrice  int64 // product base price in cents, display only
	Limit      int   // maximum element count
	CanReorder bool  // entitlement received from the host, not decided here

	mu         sync.Mutex
	elements   []models.SessionElement
	history    [][]models.SessionElement
	submitting bool

	drafts DraftStore // nil disables draft persistence
}

// New creates an empty session
func New(id string, productID int, basePrice int64, limit int, canReorder bool, drafts DraftStore) *Session {
	return &Session{
		ID:         id,
		ProductID:  productID,
		BasePrice:  basePrice,
		Limit:      limit,
		CanReorder: canReorder,
		drafts:     drafts,
	}
}

// Restore replaces the current element list without touching history.
// Used once at initialization, before the first render, when resuming a
// saved cart configuration or a fresh local draft.
func (s *Session) Restore(elements []models.SessionElement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = copyElements(elements)
}

func copyElements(src []models.SessionElement) []models.SessionElement {
	if src == nil {
		return nil
	}
	dst := make([]models.SessionElement, len(src))
	copy(dst, src)
	return dst
}

// AddElement appends an element to the configuration. Rejected without any
// state change when the session is full.
func (s *Session) AddElement(ctx context.Context, e models.SessionElement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.elements) >= s.Limit {
		return fmt.Errorf("%w: maximum of %d elements", ErrLimitReached, s.Limit)
	}

	s.pushHistory()
	s.elements = append(s.elements, e)
	s.persistDraft(ctx)
	return nil
}

// Undo restores the state before the most recent mutating action.
// No-op when the history stack is empty; returns whether anything changed.
func (s *Session) Undo(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return false
	}

	s.elements = s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.persistDraft(ctx)
	return true
}

// Reset clears the element list and the entire history stack atomically.
// The confirm flag represents the explicit user confirmation.
func (s *Session) Reset(ctx context.Context, confirm bool) error {
	if !confirm {
		return ErrConfirmRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.elements = nil
	s.history = nil
	s.persistDraft(ctx)
	return nil
}

// Reorder moves the element at index from to index to. Only permitted when
// the manual-reorder capability is enabled; undoable like AddElement.
func (s *Session) Reorder(ctx context.Context, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.CanReorder {
		return ErrReorderNotAllowed
	}
	if from < 0 || from >= len(s.elements) || to < 0 || to >= len(s.elements) {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}

	s.pushHistory()
	e := s.elements[from]
	s.elements = append(s.elements[:from], s.elements[from+1:]...)
	rest := append([]models.SessionElement{}, s.elements[to:]...)
	s.elements = append(append(s.elements[:to], e), rest...)
	s.persistDraft(ctx)
	return nil
}

// pushHistory pushes a deep copy of the current list. Callers hold s.mu.
func (s *Session) pushHistory() {
	s.history = append(s.history, copyElements(s.elements))
}

// persistDraft saves the current list to the draft store. Callers hold s.mu.
// Draft failures never block the shopper.
func (s *Session) persistDraft(ctx context.Context) {
	if s.drafts == nil {
		return
	}
	draft := models.Draft{
		Elements:  copyElements(s.elements),
		Timestamp: time.Now().Unix(),
	}
	if err := s.drafts.Save(ctx, s.ID, s.ProductID, draft); err != nil {
		log.Printf("⚠️  Failed to persist draft for session %s: %v", s.ID, err)
	}
}

// Elements returns a copy of the current element list in render order
func (s *Session) Elements() []models.SessionElement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyElements(s.elements)
}

// Count returns the current element count
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.elements)
}

// DisplayTotal returns base price plus the sum of price-at-add-time over the
// current elements. UI feedback only; the pricing pipeline independently
// recomputes the authoritative price from the catalog.
func (s *Session) DisplayTotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.BasePrice
	for _, e := range s.elements {
		total += e.Price
	}
	return total
}

// Payload returns the transport payload for submission. Price is excluded
// by construction: ConfiguredElement has no price field.
func (s *Session) Payload() models.ConfigurationPayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload := models.ConfigurationPayload{Elements: []models.ConfiguredElement{}}
	for _, e := range s.elements {
		payload.Elements = append(payload.Elements, e.Transport())
	}
	return payload
}

// BeginSubmit acquires the submission latch. The returned release func must
// be called when the submission (including best-effort snapshot generation)
// finishes, whether or not it succeeded.
func (s *Session) BeginSubmit() (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return nil, ErrSubmitInFlight
	}
	s.submitting = true

	return func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}, nil
}
