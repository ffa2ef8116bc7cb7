package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rmatrack/backend/internal/logger"
	"github.com/rmatrack/backend/internal/models"
)

// onConflictDoNothing makes an insert silently skip rows that would violate a
// unique index, which is how duplicate owner assignments are absorbed without
// a check-then-act window.
func onConflictDoNothing() clause.OnConflict {
	return clause.OnConflict{DoNothing: true}
}

// OwnerService assigns internal users to RMAs and fans out assignment
// notifications.
type OwnerService struct {
	db       *gorm.DB
	notifier *NotificationService
}

// NewOwnerService creates a new owner service.
func NewOwnerService(db *gorm.DB, notifier *NotificationService) *OwnerService {
	return &OwnerService{db: db, notifier: notifier}
}

// Assign adds the given users as owners of the RMA. Users already assigned
// are skipped silently; an empty list is a validation error. Newly assigned
// users are notified after the rows are written; notification failures are
// logged and never surfaced.
func (os *OwnerService) Assign(ctx context.Context, rmaID uint, userIDs []uint, actorID uint) ([]models.RMAOwner, error) {
	if len(userIDs) == 0 {
		return nil, validationErr("userIds", "at least one user is required")
	}

	var rma models.RMA
	if err := os.db.Preload("Customer").First(&rma, rmaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load RMA: %w", err)
	}

	now := time.Now()
	var added []uint
	err := os.db.Transaction(func(tx *gorm.DB) error {
		for _, userID := range userIDs {
			owner := models.RMAOwner{
				RMAID:      rmaID,
				UserID:     userID,
				AssignedOn: now,
				AssignedBy: &actorID,
			}
			result := tx.Clauses(onConflictDoNothing()).Create(&owner)
			if result.Error != nil {
				return fmt.Errorf("failed to assign owner %d: %w", userID, result.Error)
			}
			if result.RowsAffected > 0 {
				added = append(added, userID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithRMA(rmaID).WithField("assigned", len(added)).Info("Owners assigned")

	if os.notifier != nil && len(added) > 0 {
		os.notifier.NotifyAssignment(ctx, &rma, rma.Customer.CustomerName, added, actorID)
	}
	return os.ListFor(rmaID)
}

// Remove unassigns a user from an RMA. Removing a user who is not assigned
// succeeds without effect.
func (os *OwnerService) Remove(rmaID, userID uint) error {
	err := os.db.Where("rma_id = ? AND user_id = ?", rmaID, userID).
		Delete(&models.RMAOwner{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove owner: %w", err)
	}
	logger.WithRMA(rmaID).WithField("user_id", userID).Info("Owner removed")
	return nil
}

// SetPrimary marks one owner as primary and clears the flag on the rest.
func (os *OwnerService) SetPrimary(rmaID, userID uint) error {
	var owner models.RMAOwner
	err := os.db.Where("rma_id = ? AND user_id = ?", rmaID, userID).First(&owner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load owner: %w", err)
	}

	return os.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RMAOwner{}).Where("rma_id = ?", rmaID).
			Update("is_primary", false).Error; err != nil {
			return fmt.Errorf("failed to clear primary flags: %w", err)
		}
		if err := tx.Model(&owner).Update("is_primary", true).Error; err != nil {
			return fmt.Errorf("failed to set primary owner: %w", err)
		}
		return nil
	})
}

// ListFor returns the owners of an RMA with their user records.
func (os *OwnerService) ListFor(rmaID uint) ([]models.RMAOwner, error) {
	var owners []models.RMAOwner
	err := os.db.Where("rma_id = ?", rmaID).
		Preload("User").
		Order("assigned_on ASC, id ASC").
		Find(&owners).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	return owners, nil
}
