package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rmatrack/backend/internal/logger"
	"github.com/rmatrack/backend/internal/models"
)

// DispositionService manages RMA line items and the disposition recorded
// against each line.
type DispositionService struct {
	db *gorm.DB
}

// NewDispositionService creates a new disposition service.
func NewDispositionService(db *gorm.DB) *DispositionService {
	return &DispositionService{db: db}
}

// LineInput carries the fields for a new or updated RMA line.
type LineInput struct {
	PartNumber      string
	ToolNumber      string
	ItemDescription string
	QtyAffected     *int
	POLotNumber     string
	TotalCost       *float64
}

// AddLine appends a line item to an RMA.
func (ds *DispositionService) AddLine(rmaID uint, input LineInput) (*models.RMALine, error) {
	var rma models.RMA
	if err := ds.db.First(&rma, rmaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load RMA: %w", err)
	}

	line := models.RMALine{
		RMAID:           rmaID,
		PartNumber:      input.PartNumber,
		ToolNumber:      input.ToolNumber,
		ItemDescription: input.ItemDescription,
		QtyAffected:     input.QtyAffected,
		POLotNumber:     input.POLotNumber,
		TotalCost:       input.TotalCost,
	}
	if err := ds.db.Create(&line).Error; err != nil {
		return nil, fmt.Errorf("failed to create line: %w", err)
	}

	logger.WithRMA(rmaID).WithField("line_id", line.ID).Info("Line added")
	return &line, nil
}

// UpdateLine overwrites a line's item fields.
func (ds *DispositionService) UpdateLine(rmaID, lineID uint, input LineInput) (*models.RMALine, error) {
	var line models.RMALine
	err := ds.db.Where("id = ? AND rma_id = ?", lineID, rmaID).First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load line: %w", err)
	}

	if err := ds.db.Model(&line).Updates(map[string]interface{}{
		"part_number":      input.PartNumber,
		"tool_number":      input.ToolNumber,
		"item_description": input.ItemDescription,
		"qty_affected":     input.QtyAffected,
		"po_lot_number":    input.POLotNumber,
		"total_cost":       input.TotalCost,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update line: %w", err)
	}
	return &line, nil
}

// DeleteLine removes a line and its disposition, if any.
func (ds *DispositionService) DeleteLine(rmaID, lineID uint) error {
	var line models.RMALine
	err := ds.db.Where("id = ? AND rma_id = ?", lineID, rmaID).First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load line: %w", err)
	}

	return ds.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rma_line_id = ?", lineID).
			Delete(&models.Disposition{}).Error; err != nil {
			return fmt.Errorf("failed to delete disposition: %w", err)
		}
		if err := tx.Delete(&line).Error; err != nil {
			return fmt.Errorf("failed to delete line: %w", err)
		}
		return nil
	})
}

// DispositionInput carries the resolution fields for one line.
type DispositionInput struct {
	Disposition        string
	FailureCode        string
	FailureDescription string
	RootCause          string
	CorrectiveAction   string
	QtyScrap           *int
	QtyRework          *int
	QtyReplace         *int
}

// SetDisposition records the disposition for a line. A line has at most one
// disposition; a second submission overwrites the first. The write is a
// single insert-or-update statement keyed on the line's unique index, so
// concurrent submissions cannot race into duplicate rows.
func (ds *DispositionService) SetDisposition(rmaID, lineID uint, input DispositionInput, actorID uint) (*models.Disposition, error) {
	var line models.RMALine
	err := ds.db.Where("id = ? AND rma_id = ?", lineID, rmaID).First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load line: %w", err)
	}

	disp := models.Disposition{
		RMALineID:          lineID,
		Disposition:        input.Disposition,
		FailureCode:        input.FailureCode,
		FailureDescription: input.FailureDescription,
		RootCause:          input.RootCause,
		CorrectiveAction:   input.CorrectiveAction,
		QtyScrap:           input.QtyScrap,
		QtyRework:          input.QtyRework,
		QtyReplace:         input.QtyReplace,
		DateDispositioned:  time.Now(),
		DispositionBy:      actorID,
	}

	err = ds.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "rma_line_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"disposition", "failure_code", "failure_description",
			"root_cause", "corrective_action",
			"qty_scrap", "qty_rework", "qty_replace",
			"date_dispositioned", "disposition_by", "updated_at",
		}),
	}).Create(&disp).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save disposition: %w", err)
	}

	logger.WithRMA(rmaID).WithField("line_id", lineID).Info("Disposition recorded")

	var saved models.Disposition
	if err := ds.db.Where("rma_line_id = ?", lineID).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("failed to reload disposition: %w", err)
	}
	return &saved, nil
}

// LinesFor returns an RMA's lines with their dispositions.
func (ds *DispositionService) LinesFor(rmaID uint) ([]models.RMALine, error) {
	var lines []models.RMALine
	err := ds.db.Where("rma_id = ?", rmaID).
		Preload("Disposition").
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lines: %w", err)
	}
	return lines, nil
}
