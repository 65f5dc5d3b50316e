package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"visual-product-builder/models"
)

// DraftStore persists in-progress configurations keyed per session and
// product. Load must ignore drafts older than the freshness window.
type DraftStore interface {
	Save(ctx context.Context, sessionID string, productID int, draft models.Draft) error
	Load(ctx context.Context, sessionID string, productID int) (*models.Draft, error)
}

func draftKey(sessionID string, productID int) string {
	return fmt.Sprintf("vpb:draft:%s:%d", sessionID, productID)
}

// freshDraft applies the freshness window. TTL on the backing store is
// advisory only; consumers re-check the embedded timestamp.
func freshDraft(draft *models.Draft) *models.Draft {
	if draft == nil {
		return nil
	}
	if time.Now().Unix()-draft.Timestamp > models.DraftMaxAgeSeconds {
		return nil
	}
	return draft
}

// RedisDraftStore stores drafts in Redis with a TTL matching the freshness window
type RedisDraftStore struct {
	client *redis.Client
}

// NewRedisDraftStore creates a draft store backed by the given Redis URL
func NewRedisDraftStore(redisURL string) (*RedisDraftStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisDraftStore{client: client}, nil
}

// Ensure RedisDraftStore implements DraftStore
var _ DraftStore = (*RedisDraftStore)(nil)

// Save stores the draft under the product-scoped key
func (s *RedisDraftStore) Save(ctx context.Context, sessionID string, productID int, draft models.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	key := draftKey(sessionID, productID)
	if err := s.client.Set(ctx, key, data, models.DraftMaxAgeSeconds*time.Second).Err(); err != nil {
		return fmt.Errorf("failed to store draft %s: %w", key, err)
	}
	return nil
}

// Load returns the stored draft, or nil if absent or stale
func (s *RedisDraftStore) Load(ctx context.Context, sessionID string, productID int) (*models.Draft, error) {
	key := draftKey(sessionID, productID)
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft %s: %w", key, err)
	}

	var draft models.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft %s: %w", key, err)
	}
	return freshDraft(&draft), nil
}

// MemoryDraftStore is an in-process DraftStore used when REDIS_URL is unset
// and in tests
type MemoryDraftStore struct {
	mu     sync.RWMutex
	drafts map[string]models.Draft
}

// NewMemoryDraftStore creates an empty in-memory draft store
func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]models.Draft)}
}

// Ensure MemoryDraftStore implements DraftStore
var _ DraftStore = (*MemoryDraftStore)(nil)

// Save stores the draft under the product-scoped key
func (s *MemoryDraftStore) Save(ctx context.Context, sessionID string, productID int, draft models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draftKey(sessionID, productID)] = draft
	return nil
}

// Load returns the stored draft, or nil if absent or stale
func (s *MemoryDraftStore) Load(ctx context.Context, sessionID string, productID int) (*models.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[draftKey(sessionID, productID)]
	if !ok {
		return nil, nil
	}
	return freshDraft(&draft), nil
}
