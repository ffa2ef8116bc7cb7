package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmatrack/backend/internal/models"
)

func TestDispositionUpsert(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)
	ds := NewDispositionService(f.db)

	line, err := ds.AddLine(rma.ID, LineInput{PartNumber: "PN-100", ItemDescription: "valve body"})
	require.NoError(t, err)

	first, err := ds.SetDisposition(rma.ID, line.ID, DispositionInput{
		Disposition: "Rework",
		FailureCode: "F-12",
	}, f.actor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rework", first.Disposition)

	// A second submission overwrites, never duplicates.
	second, err := ds.SetDisposition(rma.ID, line.ID, DispositionInput{
		Disposition: "Scrap",
		FailureCode: "F-9",
		RootCause:   "material defect",
	}, f.actor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Scrap", second.Disposition)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, f.db.Model(&models.Disposition{}).
		Where("rma_line_id = ?", line.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSetDispositionWrongRMA(t *testing.T) {
	f := newFixture(t)
	first := f.createRMA(t)
	second := f.createRMA(t)
	ds := NewDispositionService(f.db)

	line, err := ds.AddLine(first.ID, LineInput{PartNumber: "PN-1"})
	require.NoError(t, err)

	_, err = ds.SetDisposition(second.ID, line.ID, DispositionInput{Disposition: "Scrap"}, f.actor.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteLineRemovesDisposition(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)
	ds := NewDispositionService(f.db)

	line, err := ds.AddLine(rma.ID, LineInput{PartNumber: "PN-2"})
	require.NoError(t, err)
	_, err = ds.SetDisposition(rma.ID, line.ID, DispositionInput{Disposition: "Replace"}, f.actor.ID)
	require.NoError(t, err)

	require.NoError(t, ds.DeleteLine(rma.ID, line.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.Disposition{}).
		Where("rma_line_id = ?", line.ID).Count(&count).Error)
	assert.Zero(t, count)

	lines, err := ds.LinesFor(rma.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestUpdateLine(t *testing.T) {
	f := newFixture(t)
	rma := f.createRMA(t)
	ds := NewDispositionService(f.db)

	qty := 4
	line, err := ds.AddLine(rma.ID, LineInput{PartNumber: "PN-3", QtyAffected: &qty})
	require.NoError(t, err)

	newQty := 6
	updated, err := ds.UpdateLine(rma.ID, line.ID, LineInput{PartNumber: "PN-3-REV", QtyAffected: &newQty})
	require.NoError(t, err)
	assert.Equal(t, "PN-3-REV", updated.PartNumber)

	reloaded, err := ds.LinesFor(rma.ID)
	require.NoError(t, err)
	require.Len(t, reloaded, 1)
	require.NotNil(t, reloaded[0].QtyAffected)
	assert.Equal(t, 6, *reloaded[0].QtyAffected)
}
