package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmatrack/backend/internal/models"
)

func TestAssignOwnersIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)
	owner := seedUser(t, f.db, "dana")

	owners, err := f.owners.Assign(ctx, rma.ID, []uint{owner.ID}, f.actor.ID)
	require.NoError(t, err)
	require.Len(t, owners, 1)

	// Assigning the same user again is a silent skip.
	owners, err = f.owners.Assign(ctx, rma.ID, []uint{owner.ID}, f.actor.ID)
	require.NoError(t, err)
	require.Len(t, owners, 1)

	var count int64
	require.NoError(t, f.db.Model(&models.RMAOwner{}).
		Where("rma_id = ? AND user_id = ?", rma.ID, owner.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAssignOwnersEmptyList(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)

	var validation *ValidationError
	_, err := f.owners.Assign(context.Background(), rma.ID, nil, f.actor.ID)
	require.ErrorAs(t, err, &validation)
}

func TestAssignOwnersNotifiesOnlyNew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)
	owner := seedUser(t, f.db, "erin")

	_, err := f.owners.Assign(ctx, rma.ID, []uint{owner.ID}, f.actor.ID)
	require.NoError(t, err)
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, owner.Email, f.sender.sent[0].Recipient)
	assert.Equal(t, rma.Code(), f.sender.sent[0].Payload.RMACode)
	assert.Equal(t, rma.ID, f.sender.sent[0].Payload.RMAID)
	assert.Equal(t, f.actor.FullName, f.sender.sent[0].Payload.ActorName)

	// Re-assigning sends nothing.
	_, err = f.owners.Assign(ctx, rma.ID, []uint{owner.ID}, f.actor.ID)
	require.NoError(t, err)
	assert.Len(t, f.sender.sent, 1)
}

func TestRemoveOwnerIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)
	owner := seedUser(t, f.db, "frank")

	_, err := f.owners.Assign(ctx, rma.ID, []uint{owner.ID}, f.actor.ID)
	require.NoError(t, err)

	require.NoError(t, f.owners.Remove(rma.ID, owner.ID))
	// Removing again is fine.
	require.NoError(t, f.owners.Remove(rma.ID, owner.ID))

	owners, err := f.owners.ListFor(rma.ID)
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestSetPrimaryOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rma := f.createRMA(t)
	first := seedUser(t, f.db, "gail")
	second := seedUser(t, f.db, "hugo")

	_, err := f.owners.Assign(ctx, rma.ID, []uint{first.ID, second.ID}, f.actor.ID)
	require.NoError(t, err)

	require.NoError(t, f.owners.SetPrimary(rma.ID, first.ID))
	require.NoError(t, f.owners.SetPrimary(rma.ID, second.ID))

	owners, err := f.owners.ListFor(rma.ID)
	require.NoError(t, err)
	require.Len(t, owners, 2)
	primaries := 0
	for _, o := range owners {
		if o.IsPrimary {
			primaries++
			assert.Equal(t, second.ID, o.UserID)
		}
	}
	assert.Equal(t, 1, primaries)

	err = f.owners.SetPrimary(rma.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
