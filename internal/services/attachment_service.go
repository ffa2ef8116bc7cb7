package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmatrack/backend/internal/logger"
	"github.com/rmatrack/backend/internal/models"
	"github.com/rmatrack/backend/internal/storage"
)

// AttachmentService stores uploaded files against RMAs. Content goes to the
// file store under a generated key; the metadata row goes to the database.
type AttachmentService struct {
	db    *gorm.DB
	files storage.FileStore
}

// NewAttachmentService creates a new attachment service.
func NewAttachmentService(db *gorm.DB, files storage.FileStore) *AttachmentService {
	return &AttachmentService{db: db, files: files}
}

// Add stores the file content and records the attachment. The storage key is
// a random UUID carrying the original extension.
func (as *AttachmentService) Add(ctx context.Context, rmaID uint, filename string, r io.Reader, size int64, contentType string, actorID uint) (*models.Attachment, error) {
	if filename == "" {
		return nil, validationErr("filename", "filename is required")
	}

	var rma models.RMA
	if err := as.db.First(&rma, rmaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load RMA: %w", err)
	}

	key := uuid.NewString() + filepath.Ext(filename)
	if err := as.files.Put(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	attachment := models.Attachment{
		RMAID:       rmaID,
		Filename:    filename,
		StorageKey:  key,
		ContentType: contentType,
		SizeBytes:   size,
		AddedBy:     actorID,
		DateAdded:   time.Now(),
	}
	if err := as.db.Create(&attachment).Error; err != nil {
		// Best effort cleanup of the orphaned object.
		if cleanupErr := as.files.Delete(ctx, key); cleanupErr != nil {
			logger.WithRMA(rmaID).Warn(fmt.Sprintf("Failed to clean up orphaned object %s: %v", key, cleanupErr))
		}
		return nil, fmt.Errorf("failed to record attachment: %w", err)
	}

	logger.WithRMA(rmaID).WithField("attachment_id", attachment.ID).Info("Attachment added")
	return &attachment, nil
}

// Open returns the content of an attachment, verifying it belongs to the RMA.
func (as *AttachmentService) Open(ctx context.Context, rmaID, attachmentID uint) (*models.Attachment, io.ReadCloser, error) {
	var attachment models.Attachment
	err := as.db.Where("id = ? AND rma_id = ?", attachmentID, rmaID).First(&attachment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to load attachment: %w", err)
	}

	rc, err := as.files.Get(ctx, attachment.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open attachment content: %w", err)
	}
	return &attachment, rc, nil
}

// Delete removes the attachment row and its stored content.
func (as *AttachmentService) Delete(ctx context.Context, rmaID, attachmentID uint) error {
	var attachment models.Attachment
	err := as.db.Where("id = ? AND rma_id = ?", attachmentID, rmaID).First(&attachment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load attachment: %w", err)
	}

	if err := as.db.Delete(&attachment).Error; err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	if err := as.files.Delete(ctx, attachment.StorageKey); err != nil {
		logger.WithRMA(rmaID).Warn(fmt.Sprintf("Failed to delete stored object %s: %v", attachment.StorageKey, err))
	}
	return nil
}

// ListFor returns the attachments of an RMA, newest first.
func (as *AttachmentService) ListFor(rmaID uint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := as.db.Where("rma_id = ?", rmaID).
		Preload("User").
		Order("date_added DESC, id DESC").
		Find(&attachments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return attachments, nil
}
