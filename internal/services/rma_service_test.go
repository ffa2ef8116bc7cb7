package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmatrack/backend/internal/models"
)

func TestCreateRMA(t *testing.T) {
	f := newFixture(t)

	rma := f.createRMA(t)
	assert.Equal(t, models.StatusDraft, rma.Status)
	assert.Nil(t, rma.DateClosed)
	assert.False(t, rma.DateOpened.IsZero())

	history, err := f.rmas.StatusHistoryFor(rma.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "RMA created", history[0].Comment)
	assert.Equal(t, models.StatusDraft, history[0].Status)
	assert.Equal(t, f.actor.ID, history[0].ChangedBy)
}

func TestCreateRMAValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.rmas.Create(ctx, CreateRMAInput{ReturnType: "Credit"}, f.actor.ID)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)

	customer := seedCustomer(t, f.db, "Missing Return Type Co")
	_, err = f.rmas.Create(ctx, CreateRMAInput{CustomerID: customer.ID}, f.actor.ID)
	require.ErrorAs(t, err, &validation)

	_, err = f.rmas.Create(ctx, CreateRMAInput{CustomerID: 9999, ReturnType: "Credit"}, f.actor.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRMANotifiesOwners(t *testing.T) {
	f := newFixture(t)
	owner := seedUser(t, f.db, "bob")
	customer := seedCustomer(t, f.db, "Fanout Co")

	_, err := f.rmas.Create(context.Background(), CreateRMAInput{
		CustomerID: customer.ID,
		ReturnType: "Replacement",
		Complaint:  "Wrong parts shipped",
		OwnerIDs:   []uint{owner.ID},
	}, f.actor.ID)
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, owner.Email, f.sender.sent[0].Recipient)
	assert.Equal(t, "Fanout Co", f.sender.sent[0].Payload.CustomerName)
}

// The close date must be set exactly when the RMA sits in a terminal status,
// across every reachable transition.
func TestChangeStatusCloseDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)

	for _, status := range models.StatusOptions {
		updated, err := f.rmas.ChangeStatus(ctx, "s", rma.ID, status, "", f.actor.ID)
		require.NoError(t, err)

		if status.Terminal() {
			assert.NotNil(t, updated.DateClosed, "status %s must set date_closed", status)
		} else {
			assert.Nil(t, updated.DateClosed, "status %s must clear date_closed", status)
		}
	}

	// Close, then reopen: the close date must clear again.
	_, err := f.rmas.ChangeStatus(ctx, "s", rma.ID, models.StatusClosed, "", f.actor.ID)
	require.NoError(t, err)
	reopened, err := f.rmas.ChangeStatus(ctx, "s", rma.ID, models.StatusInProgress, "", f.actor.ID)
	require.NoError(t, err)
	assert.Nil(t, reopened.DateClosed)
}

func TestChangeStatusInvalid(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)

	_, err := f.rmas.ChangeStatus(context.Background(), "s", rma.ID, "Cancelled", "", f.actor.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	history, err := f.rmas.StatusHistoryFor(rma.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestChangeStatusAppendsHistory(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)

	_, err := f.rmas.ChangeStatus(context.Background(), "s", rma.ID, models.StatusInProgress, "started work", f.actor.ID)
	require.NoError(t, err)

	history, err := f.rmas.StatusHistoryFor(rma.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.StatusInProgress, history[0].Status)
	assert.Equal(t, "started work", history[0].Comment)
}

func TestAcknowledge(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)

	updated, err := f.rmas.Acknowledge(rma.ID, f.actor.ID)
	require.NoError(t, err)
	assert.True(t, updated.Acknowledged)
	assert.NotNil(t, updated.AcknowledgedOn)
	require.NotNil(t, updated.AcknowledgedBy)
	assert.Equal(t, f.actor.ID, *updated.AcknowledgedBy)
	assert.Equal(t, models.StatusAcknowledged, updated.Status)

	// A second acknowledge refreshes the fields, leaves the status alone and
	// still writes a history row.
	second := seedUser(t, f.db, "carol")
	again, err := f.rmas.Acknowledge(rma.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAcknowledged, again.Status)
	require.NotNil(t, again.AcknowledgedBy)
	assert.Equal(t, second.ID, *again.AcknowledgedBy)

	history, err := f.rmas.StatusHistoryFor(rma.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "Marked as acknowledged", history[0].Comment)
	assert.Equal(t, "Marked as acknowledged", history[1].Comment)
}

func TestAcknowledgeDoesNotRegressStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)

	_, err := f.rmas.ChangeStatus(ctx, "s", rma.ID, models.StatusInProgress, "", f.actor.ID)
	require.NoError(t, err)

	updated, err := f.rmas.Acknowledge(rma.ID, f.actor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.True(t, updated.Acknowledged)
}

func TestUpdateNotesIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)

	_, changed, err := f.rmas.UpdateNotes(ctx, "s", rma.ID, "checked serials", f.actor.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	// Same text again: success, no new history row.
	_, changed, err = f.rmas.UpdateNotes(ctx, "s", rma.ID, "checked serials", f.actor.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	history, err := f.rmas.NotesHistoryFor(rma.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "checked serials", history[0].NotesContent)
}

func TestUpdateNotesStampsMetadata(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)

	updated, _, err := f.rmas.UpdateNotes(context.Background(), "s", rma.ID, "new notes", f.actor.ID)
	require.NoError(t, err)
	assert.NotNil(t, updated.NotesLastModified)
	require.NotNil(t, updated.NotesModifiedBy)
	assert.Equal(t, f.actor.ID, *updated.NotesModifiedBy)
}

func TestDeleteRMACascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)

	dispositions := NewDispositionService(f.db)
	line, err := dispositions.AddLine(rma.ID, LineInput{PartNumber: "PN-1"})
	require.NoError(t, err)
	_, err = dispositions.SetDisposition(rma.ID, line.ID, DispositionInput{Disposition: "Scrap"}, f.actor.ID)
	require.NoError(t, err)
	_, err = f.owners.Assign(ctx, rma.ID, []uint{f.actor.ID}, f.actor.ID)
	require.NoError(t, err)
	_, err = f.credits.Approve(rma.ID, 10, "", f.actor.ID)
	require.NoError(t, err)

	require.NoError(t, f.rmas.Delete(rma.ID))

	for _, check := range []struct {
		name  string
		model interface{}
	}{
		{"lines", &models.RMALine{}},
		{"owners", &models.RMAOwner{}},
		{"status history", &models.StatusHistory{}},
		{"credit history", &models.CreditHistory{}},
	} {
		var count int64
		require.NoError(t, f.db.Model(check.model).Where("rma_id = ?", rma.ID).Count(&count).Error)
		assert.Zero(t, count, "%s must be cascaded", check.name)
	}

	var dispCount int64
	require.NoError(t, f.db.Model(&models.Disposition{}).Where("rma_line_id = ?", line.ID).Count(&dispCount).Error)
	assert.Zero(t, dispCount)

	_, err = f.rmas.Get(rma.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteStatusHistoryEntryOwnership(t *testing.T) {
	f := newFixture(t)
	first := f.createRMA(t)
	second := f.createRMA(t)

	history, err := f.rmas.StatusHistoryFor(first.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	// Entry belongs to the first RMA; deleting it through the second must fail.
	err = f.rmas.DeleteStatusHistoryEntry(second.ID, history[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.rmas.DeleteStatusHistoryEntry(first.ID, history[0].ID))
	history, err = f.rmas.StatusHistoryFor(first.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	acme := seedCustomer(t, f.db, "Acme Widgets")
	globex := seedCustomer(t, f.db, "Globex")

	a, err := f.rmas.Create(ctx, CreateRMAInput{CustomerID: acme.ID, ReturnType: "Credit", Complaint: "bent flange"}, f.actor.ID)
	require.NoError(t, err)
	_, err = f.rmas.Create(ctx, CreateRMAInput{CustomerID: globex.ID, ReturnType: "Replacement"}, f.actor.ID)
	require.NoError(t, err)
	_, err = f.rmas.ChangeStatus(ctx, "s", a.ID, models.StatusClosed, "", f.actor.ID)
	require.NoError(t, err)

	byStatus, err := f.rmas.List(ListRMAFilters{Status: models.StatusClosed})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, a.ID, byStatus[0].ID)

	bySearch, err := f.rmas.List(ListRMAFilters{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, a.ID, bySearch[0].ID)

	byType, err := f.rmas.List(ListRMAFilters{ReturnType: "Replacement"})
	require.NoError(t, err)
	require.Len(t, byType, 1)

	all, err := f.rmas.List(ListRMAFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
