package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmatrack/backend/internal/models"
)

func TestUndoStatusRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)

	_, err := f.rmas.ChangeStatus(ctx, "sess", rma.ID, models.StatusInProgress, "", f.actor.ID)
	require.NoError(t, err)

	msg, err := f.undo.Apply(ctx, "sess")
	require.NoError(t, err)
	assert.Contains(t, msg, rma.Code())

	restored, err := f.rmas.Get(rma.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, restored.Status)

	// Undo writes no history row.
	history, err := f.rmas.StatusHistoryFor(rma.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	// The slot is spent.
	_, err = f.undo.Apply(ctx, "sess")
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

// Undo restores the raw status field only; it does not replay the close-date
// rule, so unclosing via undo leaves the stale close date in place.
func TestUndoDoesNotReplayCloseDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)

	_, err := f.rmas.ChangeStatus(ctx, "sess", rma.ID, models.StatusClosed, "", f.actor.ID)
	require.NoError(t, err)

	_, err = f.undo.Apply(ctx, "sess")
	require.NoError(t, err)

	restored, err := f.rmas.Get(rma.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, restored.Status)
	assert.NotNil(t, restored.DateClosed)
}

func TestUndoNotesRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)

	_, _, err := f.rmas.UpdateNotes(ctx, "sess", rma.ID, "first pass", f.actor.ID)
	require.NoError(t, err)
	_, _, err = f.rmas.UpdateNotes(ctx, "sess", rma.ID, "second pass", f.actor.ID)
	require.NoError(t, err)

	_, err = f.undo.Apply(ctx, "sess")
	require.NoError(t, err)

	restored, err := f.rmas.Get(rma.ID)
	require.NoError(t, err)
	assert.Equal(t, "first pass", restored.InternalNotes)

	// History snapshots survive the undo.
	history, err := f.rmas.NotesHistoryFor(rma.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestUndoCreditToggleRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)

	_, err := f.credits.Approve(rma.ID, 80, "", f.actor.ID)
	require.NoError(t, err)
	toggled, err := f.credits.ToggleApproval(ctx, "sess", rma.ID, f.actor.ID)
	require.NoError(t, err)
	require.False(t, toggled.CreditApproved)

	_, err = f.undo.Apply(ctx, "sess")
	require.NoError(t, err)

	restored, err := f.rmas.Get(rma.ID)
	require.NoError(t, err)
	assert.True(t, restored.CreditApproved)
	assert.NotNil(t, restored.CreditApprovedOn)
	require.NotNil(t, restored.CreditApprovedBy)
	assert.Equal(t, f.actor.ID, *restored.CreditApprovedBy)
}

// The slot holds one action: a later capture replaces an earlier one.
func TestUndoSlotOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)

	_, err := f.rmas.ChangeStatus(ctx, "sess", rma.ID, models.StatusInProgress, "", f.actor.ID)
	require.NoError(t, err)
	_, _, err = f.rmas.UpdateNotes(ctx, "sess", rma.ID, "only the notes revert", f.actor.ID)
	require.NoError(t, err)

	_, err = f.undo.Apply(ctx, "sess")
	require.NoError(t, err)

	restored, err := f.rmas.Get(rma.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, restored.Status, "status change is no longer undoable")
	assert.Equal(t, "", restored.InternalNotes)
}

func TestUndoSessionsAreIsolated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)

	_, err := f.rmas.ChangeStatus(ctx, "alice", rma.ID, models.StatusInProgress, "", f.actor.ID)
	require.NoError(t, err)

	_, err = f.undo.Apply(ctx, "bob")
	assert.ErrorIs(t, err, ErrNothingToUndo)

	// Alice's slot is untouched.
	_, err = f.undo.Apply(ctx, "alice")
	require.NoError(t, err)
}

func TestMemoryUndoStore(t *testing.T) {
	store := NewMemoryUndoStore()
	ctx := context.Background()

	snap, err := store.Take(ctx, "empty")
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, store.Put(ctx, "k", UndoSnapshot{Kind: UndoRestoreStatus, RMAID: 7, OldStatus: models.StatusDraft}))
	require.NoError(t, store.Put(ctx, "k", UndoSnapshot{Kind: UndoRestoreNotes, RMAID: 7, OldNotes: "n"}))

	snap, err = store.Take(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, UndoRestoreNotes, snap.Kind)

	snap, err = store.Take(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, snap)
}
