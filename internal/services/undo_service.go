package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/rmatrack/backend/internal/logger"
	"github.com/rmatrack/backend/internal/models"
)

// UndoService maintains one reversible action per session and applies the
// inverse write on request. Applying never appends history and never replays
// lifecycle side effects such as the close date.
type UndoService struct {
	db    *gorm.DB
	store UndoStore
}

// NewUndoService creates a new undo service backed by the given store.
func NewUndoService(db *gorm.DB, store UndoStore) *UndoService {
	return &UndoService{db: db, store: store}
}

// Capture records snap as the session's undoable action, replacing whatever
// was there before. Capture failures are logged and swallowed so the primary
// operation never fails because of the undo slot.
func (us *UndoService) Capture(ctx context.Context, session string, snap UndoSnapshot) {
	if err := us.store.Put(ctx, session, snap); err != nil {
		logger.Error("Failed to capture undo snapshot", map[string]interface{}{
			"session": session,
			"kind":    string(snap.Kind),
			"error":   err.Error(),
		})
	}
}

// Apply pops the session's undo slot and applies the inverse write. The slot
// is cleared no matter what happens afterwards, so a second Apply always
// reports ErrNothingToUndo. Returns a human-readable description of what was
// restored.
func (us *UndoService) Apply(ctx context.Context, session string) (string, error) {
	snap, err := us.store.Take(ctx, session)
	if err != nil {
		return "", err
	}
	if snap == nil {
		return "", ErrNothingToUndo
	}

	switch snap.Kind {
	case UndoRestoreStatus:
		result := us.db.Model(&models.RMA{}).Where("id = ?", snap.RMAID).
			Update("status", snap.OldStatus)
		if result.Error != nil {
			return "", fmt.Errorf("failed to restore status: %w", result.Error)
		}
		logger.WithRMA(snap.RMAID).Info("Undo applied: status restored")
		return fmt.Sprintf("Status of %s restored to %s", models.RMACode(snap.RMAID), snap.OldStatus), nil

	case UndoRestoreNotes:
		result := us.db.Model(&models.RMA{}).Where("id = ?", snap.RMAID).
			Update("internal_notes", snap.OldNotes)
		if result.Error != nil {
			return "", fmt.Errorf("failed to restore notes: %w", result.Error)
		}
		logger.WithRMA(snap.RMAID).Info("Undo applied: notes restored")
		return fmt.Sprintf("Notes of %s restored", models.RMACode(snap.RMAID)), nil

	case UndoRestoreCreditApproval:
		result := us.db.Model(&models.RMA{}).Where("id = ?", snap.RMAID).
			Updates(map[string]interface{}{
				"credit_approved":    snap.CreditApproved,
				"credit_approved_on": snap.CreditApprovedOn,
				"credit_approved_by": snap.CreditApprovedBy,
			})
		if result.Error != nil {
			return "", fmt.Errorf("failed to restore credit approval: %w", result.Error)
		}
		logger.WithRMA(snap.RMAID).Info("Undo applied: credit approval restored")
		return fmt.Sprintf("Credit approval of %s restored", models.RMACode(snap.RMAID)), nil
	}

	return "", fmt.Errorf("unknown undo kind %q", snap.Kind)
}
