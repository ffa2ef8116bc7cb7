package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rmatrack/backend/internal/logger"
	"github.com/rmatrack/backend/internal/models"
)

// CreditService runs the credit workflow on an RMA. Approval and rejection
// are mutually exclusive: entering either state clears the other entirely.
// Every action appends to the credit history ledger in the same transaction
// as the header update.
type CreditService struct {
	db   *gorm.DB
	undo *UndoService
}

// NewCreditService creates a new credit service.
func NewCreditService(db *gorm.DB, undo *UndoService) *CreditService {
	return &CreditService{db: db, undo: undo}
}

func (cs *CreditService) load(rmaID uint) (*models.RMA, error) {
	var rma models.RMA
	if err := cs.db.First(&rma, rmaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load RMA: %w", err)
	}
	return &rma, nil
}

// Approve grants credit for the given amount and wipes any standing
// rejection. A memo number may be recorded now or later at issue time; an
// empty one clears whatever a prior approval recorded.
func (cs *CreditService) Approve(rmaID uint, amount float64, memoNumber string, actorID uint) (*models.RMA, error) {
	if amount <= 0 {
		return nil, validationErr("amount", "credit amount must be positive")
	}

	rma, err := cs.load(rmaID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"credit_approved":         true,
		"credit_approved_on":      now,
		"credit_approved_by":      actorID,
		"credit_amount":           amount,
		"credit_rejected":         false,
		"credit_rejected_on":      nil,
		"credit_rejected_by":      nil,
		"credit_rejection_reason": nil,
		"credit_memo_number":      nil,
	}
	if memoNumber != "" {
		updates["credit_memo_number"] = memoNumber
	}

	err = cs.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(rma).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to approve credit: %w", err)
		}
		entry := models.CreditHistory{
			RMAID:      rma.ID,
			Action:     models.CreditActionApproved,
			Amount:     &amount,
			MemoNumber: memoNumber,
			ActorID:    actorID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to record credit history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithRMA(rma.ID).WithField("amount", amount).Info("Credit approved")
	return cs.load(rmaID)
}

// Reject denies credit with a mandatory reason and wipes any standing
// approval, including the amount and memo number.
func (cs *CreditService) Reject(rmaID uint, reason string, actorID uint) (*models.RMA, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, validationErr("reason", "rejection reason is required")
	}

	rma, err := cs.load(rmaID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = cs.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(rma).Updates(map[string]interface{}{
			"credit_rejected":         true,
			"credit_rejected_on":      now,
			"credit_rejected_by":      actorID,
			"credit_rejection_reason": reason,
			"credit_approved":         false,
			"credit_approved_on":      nil,
			"credit_approved_by":      nil,
			"credit_amount":           nil,
			"credit_memo_number":      nil,
		}).Error; err != nil {
			return fmt.Errorf("failed to reject credit: %w", err)
		}
		entry := models.CreditHistory{
			RMAID:   rma.ID,
			Action:  models.CreditActionRejected,
			Comment: reason,
			ActorID: actorID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to record credit history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithRMA(rma.ID).Info("Credit rejected")
	return cs.load(rmaID)
}

// Reopen clears a standing rejection so the credit question is open again.
// Approval state is untouched. Calling it without a rejection is a harmless
// no-op that still lands in the ledger.
func (cs *CreditService) Reopen(rmaID uint, actorID uint) (*models.RMA, error) {
	rma, err := cs.load(rmaID)
	if err != nil {
		return nil, err
	}

	err = cs.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(rma).Updates(map[string]interface{}{
			"credit_rejected":         false,
			"credit_rejected_on":      nil,
			"credit_rejected_by":      nil,
			"credit_rejection_reason": nil,
		}).Error; err != nil {
			return fmt.Errorf("failed to reopen credit: %w", err)
		}
		entry := models.CreditHistory{
			RMAID:   rma.ID,
			Action:  models.CreditActionReopened,
			ActorID: actorID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to record credit history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithRMA(rma.ID).Info("Credit reopened")
	return cs.load(rmaID)
}

// Issue records the credit memo as issued. Requires a standing approval and a
// memo number; the memo number overwrites whatever was recorded before.
func (cs *CreditService) Issue(rmaID uint, memoNumber string, actorID uint) (*models.RMA, error) {
	if strings.TrimSpace(memoNumber) == "" {
		return nil, validationErr("memoNumber", "credit memo number is required")
	}

	rma, err := cs.load(rmaID)
	if err != nil {
		return nil, err
	}
	if !rma.CreditApproved {
		return nil, fmt.Errorf("credit not approved: %w", ErrPreconditionFailed)
	}

	now := time.Now()
	err = cs.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(rma).Updates(map[string]interface{}{
			"credit_memo_number": memoNumber,
			"credit_issued_on":   now,
		}).Error; err != nil {
			return fmt.Errorf("failed to issue credit: %w", err)
		}
		entry := models.CreditHistory{
			RMAID:      rma.ID,
			Action:     models.CreditActionIssued,
			Amount:     rma.CreditAmount,
			MemoNumber: memoNumber,
			ActorID:    actorID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to record credit history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithRMA(rma.ID).WithField("memo", memoNumber).Info("Credit issued")
	return cs.load(rmaID)
}

// ToggleApproval flips the approval flag and its on/by companions, leaving
// the amount and memo number alone. The previous flag triple goes into the
// session's undo slot.
func (cs *CreditService) ToggleApproval(ctx context.Context, session string, rmaID uint, actorID uint) (*models.RMA, error) {
	rma, err := cs.load(rmaID)
	if err != nil {
		return nil, err
	}

	prev := UndoSnapshot{
		Kind:             UndoRestoreCreditApproval,
		RMAID:            rma.ID,
		CreditApproved:   rma.CreditApproved,
		CreditApprovedOn: rma.CreditApprovedOn,
		CreditApprovedBy: rma.CreditApprovedBy,
	}

	now := time.Now()
	updates := map[string]interface{}{}
	approved := !rma.CreditApproved
	if approved {
		updates["credit_approved"] = true
		updates["credit_approved_on"] = now
		updates["credit_approved_by"] = actorID
	} else {
		updates["credit_approved"] = false
		updates["credit_approved_on"] = nil
		updates["credit_approved_by"] = nil
	}

	detail := datatypes.JSON(fmt.Sprintf(`{"approved":%t}`, approved))

	err = cs.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(rma).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to toggle credit approval: %w", err)
		}
		entry := models.CreditHistory{
			RMAID:   rma.ID,
			Action:  models.CreditActionToggled,
			Detail:  detail,
			ActorID: actorID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to record credit history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cs.undo.Capture(ctx, session, prev)

	logger.WithRMA(rma.ID).WithField("approved", approved).Info("Credit approval toggled")
	return cs.load(rmaID)
}

// HistoryFor returns the credit ledger for an RMA, newest first.
func (cs *CreditService) HistoryFor(rmaID uint) ([]models.CreditHistory, error) {
	var entries []models.CreditHistory
	err := cs.db.Where("rma_id = ?", rmaID).
		Preload("Actor").
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load credit history: %w", err)
	}
	return entries, nil
}
