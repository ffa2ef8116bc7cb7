package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rmatrack/backend/internal/logger"
	"github.com/rmatrack/backend/internal/models"
)

// RMAService is the lifecycle engine: creation, status transitions,
// acknowledgement, internal notes and the audit trail around them.
type RMAService struct {
	db       *gorm.DB
	undo     *UndoService
	notifier *NotificationService
}

// NewRMAService creates a new RMA service.
func NewRMAService(db *gorm.DB, undo *UndoService, notifier *NotificationService) *RMAService {
	return &RMAService{db: db, undo: undo, notifier: notifier}
}

// CreateRMAInput carries the fields for a new RMA.
type CreateRMAInput struct {
	CustomerID         uint
	ReturnType         string
	Complaint          string
	InternalNotes      string
	CustomerDateOpened *time.Time
	OwnerIDs           []uint
}

// Create opens a new RMA in Draft. The header, the "RMA created" history row
// and any initial owner rows are written in one transaction; owner
// notifications go out only after the commit succeeded.
func (rs *RMAService) Create(ctx context.Context, input CreateRMAInput, actorID uint) (*models.RMA, error) {
	if input.CustomerID == 0 {
		return nil, validationErr("customerId", "customer is required")
	}
	if strings.TrimSpace(input.ReturnType) == "" {
		return nil, validationErr("returnType", "return type is required")
	}

	var customer models.Customer
	if err := rs.db.First(&customer, input.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer %d: %w", input.CustomerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	now := time.Now()
	rma := models.RMA{
		CustomerID:         input.CustomerID,
		Status:             models.StatusDraft,
		ReturnType:         input.ReturnType,
		Complaint:          input.Complaint,
		InternalNotes:      input.InternalNotes,
		DateOpened:         now,
		CustomerDateOpened: input.CustomerDateOpened,
		CreatedByUserID:    actorID,
	}

	err := rs.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rma).Error; err != nil {
			return fmt.Errorf("failed to create RMA: %w", err)
		}

		history := models.StatusHistory{
			RMAID:     rma.ID,
			Status:    models.StatusDraft,
			ChangedBy: actorID,
			ChangedOn: now,
			Comment:   "RMA created",
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record creation history: %w", err)
		}

		for _, userID := range input.OwnerIDs {
			owner := models.RMAOwner{
				RMAID:      rma.ID,
				UserID:     userID,
				AssignedOn: now,
				AssignedBy: &actorID,
			}
			if err := tx.Clauses(onConflictDoNothing()).Create(&owner).Error; err != nil {
				return fmt.Errorf("failed to assign owner %d: %w", userID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithRMA(rma.ID).WithField("user_id", actorID).Info("RMA created")

	if rs.notifier != nil && len(input.OwnerIDs) > 0 {
		rs.notifier.NotifyAssignment(ctx, &rma, customer.CustomerName, input.OwnerIDs, actorID)
	}
	return &rma, nil
}

// ChangeStatus moves the RMA to the given status, enforces the close-date
// rule, appends a history row and records the inverse in the session's undo
// slot. The transition graph is open: any valid status may follow any other.
func (rs *RMAService) ChangeStatus(ctx context.Context, session string, rmaID uint, status models.RMAStatus, comment string, actorID uint) (*models.RMA, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var rma models.RMA
	if err := rs.db.First(&rma, rmaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load RMA: %w", err)
	}

	oldStatus := rma.Status
	now := time.Now()
	rma.Status = status
	if status.Terminal() {
		rma.DateClosed = &now
	} else {
		rma.DateClosed = nil
	}

	err := rs.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&rma).Updates(map[string]interface{}{
			"status":      rma.Status,
			"date_closed": rma.DateClosed,
		}).Error; err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		history := models.StatusHistory{
			RMAID:     rma.ID,
			Status:    status,
			ChangedBy: actorID,
			ChangedOn: now,
			Comment:   comment,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rs.undo.Capture(ctx, session, UndoSnapshot{
		Kind:      UndoRestoreStatus,
		RMAID:     rma.ID,
		OldStatus: oldStatus,
		NewStatus: status,
	})

	logger.WithRMA(rma.ID).WithField("user_id", actorID).Info(fmt.Sprintf("Status changed %s -> %s", oldStatus, status))
	return &rma, nil
}

// Acknowledge marks the RMA acknowledged by the actor. The acknowledgement
// fields are set every time it is called; the status moves only on the
// Draft -> Acknowledged edge. A history row is appended on every call.
func (rs *RMAService) Acknowledge(rmaID uint, actorID uint) (*models.RMA, error) {
	var rma models.RMA
	if err := rs.db.First(&rma, rmaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load RMA: %w", err)
	}

	now := time.Now()
	rma.Acknowledged = true
	rma.AcknowledgedOn = &now
	rma.AcknowledgedBy = &actorID
	if rma.Status == models.StatusDraft {
		rma.Status = models.StatusAcknowledged
	}

	err := rs.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&rma).Updates(map[string]interface{}{
			"acknowledged":    true,
			"acknowledged_on": rma.AcknowledgedOn,
			"acknowledged_by": rma.AcknowledgedBy,
			"status":          rma.Status,
		}).Error; err != nil {
			return fmt.Errorf("failed to acknowledge RMA: %w", err)
		}

		history := models.StatusHistory{
			RMAID:     rma.ID,
			Status:    rma.Status,
			ChangedBy: actorID,
			ChangedOn: now,
			Comment:   "Marked as acknowledged",
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record acknowledgement history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithRMA(rma.ID).WithField("user_id", actorID).Info("RMA acknowledged")
	return &rma, nil
}

// UpdateNotes replaces the internal notes when the text actually changed. On
// a change it snapshots the new text into notes history and the old text into
// the undo slot; an identical submission is a successful no-op with no
// history row and no undo capture. The returned bool reports whether a change
// was written.
func (rs *RMAService) UpdateNotes(ctx context.Context, session string, rmaID uint, notes string, actorID uint) (*models.RMA, bool, error) {
	var rma models.RMA
	if err := rs.db.First(&rma, rmaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, fmt.Errorf("failed to load RMA: %w", err)
	}

	if rma.InternalNotes == notes {
		return &rma, false, nil
	}

	oldNotes := rma.InternalNotes
	now := time.Now()
	rma.InternalNotes = notes
	rma.NotesLastModified = &now
	rma.NotesModifiedBy = &actorID

	err := rs.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&rma).Updates(map[string]interface{}{
			"internal_notes":      notes,
			"notes_last_modified": rma.NotesLastModified,
			"notes_modified_by":   rma.NotesModifiedBy,
		}).Error; err != nil {
			return fmt.Errorf("failed to update notes: %w", err)
		}

		history := models.NotesHistory{
			RMAID:        rma.ID,
			NotesContent: notes,
			ModifiedBy:   actorID,
			ModifiedOn:   now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record notes history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	rs.undo.Capture(ctx, session, UndoSnapshot{
		Kind:     UndoRestoreNotes,
		RMAID:    rma.ID,
		OldNotes: oldNotes,
	})

	logger.WithRMA(rma.ID).WithField("user_id", actorID).Info("Internal notes updated")
	return &rma, true, nil
}

// Get loads one RMA with its customer, lines (and their dispositions) and
// owners.
func (rs *RMAService) Get(rmaID uint) (*models.RMA, error) {
	var rma models.RMA
	err := rs.db.
		Preload("Customer").
		Preload("Lines").
		Preload("Lines.Disposition").
		Preload("Owners").
		Preload("Owners.User").
		First(&rma, rmaID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load RMA: %w", err)
	}
	return &rma, nil
}

// ListRMAFilters narrows the RMA listing. Zero values mean "no filter".
type ListRMAFilters struct {
	Search     string
	Status     models.RMAStatus
	ReturnType string
	CustomerID uint
}

// List returns RMAs newest first, optionally filtered.
func (rs *RMAService) List(filters ListRMAFilters) ([]models.RMA, error) {
	query := rs.db.Model(&models.RMA{}).
		Joins("JOIN customers ON customers.id = rmas.customer_id").
		Preload("Customer")

	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where(
			"LOWER(customers.customer_name) LIKE ? OR LOWER(rmas.complaint) LIKE ?",
			pattern, pattern,
		)
	}
	if filters.Status != "" {
		query = query.Where("rmas.status = ?", filters.Status)
	}
	if filters.ReturnType != "" {
		query = query.Where("rmas.return_type = ?", filters.ReturnType)
	}
	if filters.CustomerID != 0 {
		query = query.Where("rmas.customer_id = ?", filters.CustomerID)
	}

	var rmas []models.RMA
	if err := query.Order("rmas.date_opened DESC").Find(&rmas).Error; err != nil {
		return nil, fmt.Errorf("failed to list RMAs: %w", err)
	}
	return rmas, nil
}

// StatusHistoryFor returns the status trail for an RMA, newest first.
func (rs *RMAService) StatusHistoryFor(rmaID uint) ([]models.StatusHistory, error) {
	var entries []models.StatusHistory
	err := rs.db.Where("rma_id = ?", rmaID).
		Preload("User").
		Order("changed_on DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load status history: %w", err)
	}
	return entries, nil
}

// NotesHistoryFor returns the notes snapshots for an RMA, newest first.
func (rs *RMAService) NotesHistoryFor(rmaID uint) ([]models.NotesHistory, error) {
	var entries []models.NotesHistory
	err := rs.db.Where("rma_id = ?", rmaID).
		Preload("User").
		Order("modified_on DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load notes history: %w", err)
	}
	return entries, nil
}

// Delete removes an RMA and everything hanging off it. Intended for admins;
// the role check lives in the route layer.
func (rs *RMAService) Delete(rmaID uint) error {
	var rma models.RMA
	if err := rs.db.First(&rma, rmaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load RMA: %w", err)
	}

	err := rs.db.Transaction(func(tx *gorm.DB) error {
		var lineIDs []uint
		if err := tx.Model(&models.RMALine{}).Where("rma_id = ?", rmaID).
			Pluck("id", &lineIDs).Error; err != nil {
			return fmt.Errorf("failed to collect line ids: %w", err)
		}
		if len(lineIDs) > 0 {
			if err := tx.Where("rma_line_id IN ?", lineIDs).
				Delete(&models.Disposition{}).Error; err != nil {
				return fmt.Errorf("failed to delete dispositions: %w", err)
			}
		}
		for _, model := range []interface{}{
			&models.RMALine{},
			&models.RMAOwner{},
			&models.StatusHistory{},
			&models.NotesHistory{},
			&models.CreditHistory{},
			&models.Attachment{},
		} {
			if err := tx.Where("rma_id = ?", rmaID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete dependents: %w", err)
			}
		}
		if err := tx.Delete(&rma).Error; err != nil {
			return fmt.Errorf("failed to delete RMA: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.WithRMA(rmaID).Warn("RMA deleted")
	return nil
}

// DeleteStatusHistoryEntry removes one history row, verifying it belongs to
// the given RMA first.
func (rs *RMAService) DeleteStatusHistoryEntry(rmaID, entryID uint) error {
	var entry models.StatusHistory
	err := rs.db.Where("id = ? AND rma_id = ?", entryID, rmaID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load history entry: %w", err)
	}
	if err := rs.db.Delete(&entry).Error; err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	logger.WithRMA(rmaID).Warn(fmt.Sprintf("Status history entry %d deleted", entryID))
	return nil
}
