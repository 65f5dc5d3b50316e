package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"visual-product-builder/entitlement"
	"visual-product-builder/models"
	"visual-product-builder/repository"
)

// DefaultElementLimit is the per-configuration element cap used unless the
// host overrides it
const DefaultElementLimit = 3

// Manager creates and tracks configurator sessions. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	drafts   DraftStore
	cartRepo repository.CartRepositoryInterface
	policy   entitlement.Policy
	limit    int
}

// NewManager creates a session manager
func NewManager(drafts DraftStore, cartRepo repository.CartRepositoryInterface, policy entitlement.Policy, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultElementLimit
	}
	return &Manager{
		sessions: make(map[string]*Session),
		drafts:   drafts,
		cartRepo: cartRepo,
		policy:   policy,
		limit:    limit,
	}
}

// Create starts a new session for a product. When resumeCartItemID is
// non-zero, the saved configuration of that cart line item replaces local
// state before the session is returned, so no stale render can happen before
// the remote state arrives. Otherwise a fresh local draft, if any, is
// restored.
func (m *Manager) Create(ctx context.Context, product *models.Product, resumeCartItemID int64) (*Session, error) {
	id := uuid.NewString()
	canReorder := m.policy.CanUse(entitlement.FeatureManualReorder)
	s := New(id, product.ID, product.RegularPrice, m.limit, canReorder, m.drafts)

	if resumeCartItemID != 0 {
		item, err := m.cartRepo.GetItem(ctx, resumeCartItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch cart item %d for resume: %w", resumeCartItemID, err)
		}
		if item == nil || item.ProductID != product.ID {
			return nil, fmt.Errorf("cart item %d not found for product %d", resumeCartItemID, product.ID)
		}

		elements := make([]models.SessionElement, 0, len(item.Elements))
		for _, v := range item.Elements {
			elements = append(elements, models.SessionElement{
				ID:    v.ID,
				Name:  v.Name,
				Color: v.Color,
				Price: v.Price,
			})
		}
		s.Restore(elements)
		log.Printf("🔁 Session %s resumed from cart item %d (%d elements)", id, resumeCartItemID, len(elements))
	} else if m.drafts != nil {
		// Drafts are keyed per session, so a brand-new session id has none;
		// the host passes its previous session id via the draft cookie and we
		// reuse it as the key.
		draft, err := m.drafts.Load(ctx, id, product.ID)
		if err != nil {
			log.Printf("⚠️  Failed to load draft for session %s: %v", id, err)
		} else if draft != nil {
			s.Restore(draft.Elements)
		}
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	return s, nil
}

// Resume recreates a session under a previous id, restoring its fresh draft
// if one exists. Used when the shopper returns within the draft window.
func (m *Manager) Resume(ctx context.Context, previousID string, product *models.Product) (*Session, error) {
	m.mu.RLock()
	existing, ok := m.sessions[previousID]
	m.mu.RUnlock()
	if ok && existing.ProductID == product.ID {
		return existing, nil
	}

	canReorder := m.policy.CanUse(entitlement.FeatureManualReorder)
	s := New(previousID, product.ID, product.RegularPrice, m.limit, canReorder, m.drafts)

	if m.drafts != nil {
		draft, err := m.drafts.Load(ctx, previousID, product.ID)
		if err != nil {
			log.Printf("⚠️  Failed to load draft for session %s: %v", previousID, err)
		} else if draft != nil {
			s.Restore(draft.Elements)
			log.Printf("🔁 Session %s restored from draft (%d elements)", previousID, len(draft.Elements))
		}
	}

	m.mu.Lock()
	m.sessions[previousID] = s
	m.mu.Unlock()

	return s, nil
}

// Get returns a tracked session, or nil
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Drop forgets a session. The persisted draft is intentionally left in
// place so a design can be resumed or duplicated later.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
