package controllers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmatrack/backend/internal/services"
)

type AttachmentController struct {
	attachments *services.AttachmentService
}

func NewAttachmentController(attachments *services.AttachmentService) *AttachmentController {
	return &AttachmentController{attachments: attachments}
}

func (ac *AttachmentController) List(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	attachments, err := ac.attachments.ListFor(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "attachments": attachments})
}

func (ac *AttachmentController) Upload(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "File is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to read file"})
		return
	}
	defer file.Close()

	userID, _ := actorID(c)
	attachment, err := ac.attachments.Add(
		c.Request.Context(),
		id,
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
		userID,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Attachment uploaded", "attachment": attachment})
}

func (ac *AttachmentController) Download(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := paramID(c, "attachmentId")
	if !ok {
		return
	}

	attachment, rc, err := ac.attachments.Open(c.Request.Context(), id, attachmentID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))
	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// Too late for a JSON error, the body is partially written.
		c.Abort()
	}
}

func (ac *AttachmentController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := paramID(c, "attachmentId")
	if !ok {
		return
	}
	if err := ac.attachments.Delete(c.Request.Context(), id, attachmentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Attachment deleted"})
}
