package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-product-builder/models"
)

func letter(id int, name string, price int64) models.SessionElement {
	return models.SessionElement{
		ID:       id,
		Name:     name,
		Color:    "blue",
		ColorHex: "#0000ff",
		Price:    price,
	}
}

func TestAddElementRespectsLimit(t *testing.T) {
	ctx := context.Background()
	s := New("s1", 1, 1000, 3, false, nil)

	// limit = 3; add A ($2), B ($3), C ($1.50)
	require.NoError(t, s.AddElement(ctx, letter(1, "A", 200)))
	require.NoError(t, s.AddElement(ctx, letter(2, "B", 300)))
	require.NoError(t, s.AddElement(ctx, letter(3, "C", 150)))

	assert.Equal(t, 3, s.Count())
	assert.Equal(t, int64(1000+650), s.DisplayTotal())

	// Adding D is rejected with a warning and no state change
	err := s.AddElement(ctx, letter(4, "D", 100))
	require.ErrorIs(t, err, ErrLimitReached)
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, int64(1650), s.DisplayTotal())

	// Undo restores [A, B]
	assert.True(t, s.Undo(ctx))
	assert.Equal(t, 2, s.Count())
	elements := s.Elements()
	assert.Equal(t, "A", elements[0].Name)
	assert.Equal(t, "B", elements[1].Name)
	assert.Equal(t, int64(1500), s.DisplayTotal())
}

func TestDisplayedCountNeverExceedsLimit(t *testing.T) {
	ctx := context.Background()
	s := New("s1", 1, 0, 5, false, nil)

	for i := 0; i < 20; i++ {
		_ = s.AddElement(ctx, letter(i, "X", 10))
		assert.LessOrEqual(t, s.Count(), 5)
	}
	assert.Equal(t, 5, s.Count())
}

func TestUndoRestoresPreviousStateForEveryDepth(t *testing.T) {
	ctx := context.Background()
	s := New("s1", 1, 0, 10, false, nil)

	var snapshots [][]models.SessionElement
	for i := 1; i <= 6; i++ {
		snapshots = append(snapshots, s.Elements())
		require.NoError(t, s.AddElement(ctx, letter(i, "E", int64(i*100))))
	}

	// Undo back to the start of the session, checking each restored state
	for i := len(snapshots) - 1; i >= 0; i-- {
		assert.True(t, s.Undo(ctx))
		assert.Equal(t, snapshots[i], s.Elements())
	}

	// History exhausted: further undo is a no-op
	assert.False(t, s.Undo(ctx))
	assert.Equal(t, 0, s.Count())
}

func TestUndoOnEmptyHistoryIsNoOp(t *testing.T) {
	s := New("s1", 1, 0, 3, false, nil)
	assert.False(t, s.Undo(context.Background()))
	assert.Equal(t, 0, s.Count())
}

func TestUndoIsFullStateNotPerField(t *testing.T) {
	ctx := context.Background()
	s := New("s1", 1, 0, 5, true, nil)

	require.NoError(t, s.AddElement(ctx, letter(1, "A", 100)))
	require.NoError(t, s.AddElement(ctx, letter(2, "B", 200)))
	require.NoError(t, s.Reorder(ctx, 0, 1))

	assert.Equal(t, "B", s.Elements()[0].Name)

	// Undo of a reorder restores the full pre-reorder list
	assert.True(t, s.Undo(ctx))
	assert.Equal(t, "A", s.Elements()[0].Name)
	assert.Equal(t, "B", s.Elements()[1].Name)
}

func TestResetRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	s := New("s1", 1, 0, 3, false, nil)
	require.NoError(t, s.AddElement(ctx, letter(1, "A", 100)))

	err := s.Reset(ctx, false)
	require.ErrorIs(t, err, ErrConfirmRequired)
	assert.Equal(t, 1, s.Count())
}

func TestResetClearsElementsAndHistoryAtomically(t *testing.T) {
	ctx := context.Background()
	s := New("s1", 1, 0, 3, false, nil)
	require.NoError(t, s.AddElement(ctx, letter(1, "A", 100)))
	require.NoError(t, s.AddElement(ctx, letter(2, "B", 200)))

	require.NoError(t, s.Reset(ctx, true))
	assert.Equal(t, 0, s.Count())

	// Undo after reset is a no-op: the history is gone too
	assert.False(t, s.Undo(ctx))
	assert.Equal(t, 0, s.Count())
}

func TestReorderRequiresCapability(t *testing.T) {
	ctx := context.Background()
	s := New("s1", 1, 0, 3, false, nil)
	require.NoError(t, s.AddElement(ctx, letter(1, "A", 100)))
	require.NoError(t, s.AddElement(ctx, letter(2, "B", 200)))

	err := s.Reorder(ctx, 0, 1)
	require.ErrorIs(t, err, ErrReorderNotAllowed)
	assert.Equal(t, "A", s.Elements()[0].Name)
}

func TestReorderMovesElementAndIsUndoable(t *testing.T) {
	ctx := context.Background()
	s := New("s1", 1, 0, 5, true, nil)
	for i, name := range []string{"A", "B", "C"} {
		require.NoError(t, s.AddElement(ctx, letter(i+1, name, 100)))
	}

	require.NoError(t, s.Reorder(ctx, 2, 0))
	names := func() []string {
		var out []string
		for _, e := range s.Elements() {
			out = append(out, e.Name)
		}
		return out
	}
	assert.Equal(t, []string{"C", "A", "B"}, names())

	require.Error(t, s.Reorder(ctx, 0, 5))

	assert.True(t, s.Undo(ctx))
	assert.Equal(t, []string{"A", "B", "C"}, names())
}

func TestPayloadExcludesPrice(t *testing.T) {
	ctx := context.Background()
	s := New("s1", 1, 0, 3, false, nil)
	require.NoError(t, s.AddElement(ctx, models.SessionElement{
		ID: 7, Name: "A", Color: "blue", ColorHex: "#00f", IsSVG: true, Price: 999,
	}))

	data, err := json.Marshal(s.Payload())
	require.NoError(t, err)

	assert.NotContains(t, string(data), "price")
	assert.NotContains(t, string(data), "999")
	assert.Contains(t, string(data), `"colorHex":"#00f"`)
	assert.Contains(t, string(data), `"isSvg":true`)
}

func TestSubmitLatchRejectsReentry(t *testing.T) {
	s := New("s1", 1, 0, 3, false, nil)

	release, err := s.BeginSubmit()
	require.NoError(t, err)

	_, err = s.BeginSubmit()
	require.ErrorIs(t, err, ErrSubmitInFlight)

	release()

	release2, err := s.BeginSubmit()
	require.NoError(t, err)
	release2()
}

func TestMutationsPersistDraft(t *testing.T) {
	ctx := context.Background()
	drafts := NewMemoryDraftStore()
	s := New("s1", 42, 0, 3, false, drafts)

	require.NoError(t, s.AddElement(ctx, letter(1, "A", 100)))

	draft, err := drafts.Load(ctx, "s1", 42)
	require.NoError(t, err)
	require.NotNil(t, draft)
	require.Len(t, draft.Elements, 1)
	assert.Equal(t, "A", draft.Elements[0].Name)
	assert.NotZero(t, draft.Timestamp)

	// Reset persists the cleared state too
	require.NoError(t, s.Reset(ctx, true))
	draft, err = drafts.Load(ctx, "s1", 42)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Empty(t, draft.Elements)
}

func TestRestoreDoesNotTouchHistory(t *testing.T) {
	ctx := context.Background()
	s := New("s1", 1, 0, 5, false, nil)

	s.Restore([]models.SessionElement{letter(1, "A", 100), letter(2, "B", 200)})
	assert.Equal(t, 2, s.Count())

	// Restored state is the baseline; nothing to undo yet
	assert.False(t, s.Undo(ctx))
	assert.Equal(t, 2, s.Count())
}
