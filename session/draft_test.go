package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-product-builder/models"
)

func TestMemoryDraftStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDraftStore()

	draft := models.Draft{
		Elements:  []models.SessionElement{{ID: 1, Name: "A", Price: 100}},
		Timestamp: time.Now().Unix(),
	}
	require.NoError(t, store.Save(ctx, "s1", 7, draft))

	loaded, err := store.Load(ctx, "s1", 7)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, draft.Elements, loaded.Elements)
}

func TestDraftsAreProductScoped(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDraftStore()

	require.NoError(t, store.Save(ctx, "s1", 7, models.Draft{Timestamp: time.Now().Unix()}))

	loaded, err := store.Load(ctx, "s1", 8)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStaleDraftIsDiscarded(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDraftStore()

	stale := models.Draft{
		Elements:  []models.SessionElement{{ID: 1, Name: "A"}},
		Timestamp: time.Now().Unix() - models.DraftMaxAgeSeconds - 1,
	}
	require.NoError(t, store.Save(ctx, "s1", 7, stale))

	loaded, err := store.Load(ctx, "s1", 7)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestDraftAtFreshnessBoundaryIsKept(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDraftStore()

	fresh := models.Draft{
		Elements:  []models.SessionElement{{ID: 1, Name: "A"}},
		Timestamp: time.Now().Unix() - models.DraftMaxAgeSeconds + 5,
	}
	require.NoError(t, store.Save(ctx, "s1", 7, fresh))

	loaded, err := store.Load(ctx, "s1", 7)
	require.NoError(t, err)
	assert.NotNil(t, loaded)
}
