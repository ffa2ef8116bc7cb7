package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rmatrack/backend/internal/models"
	"github.com/rmatrack/backend/internal/services"
)

type RMAController struct {
	rmas   *services.RMAService
	owners *services.OwnerService
	undo   *services.UndoService
}

func NewRMAController(rmas *services.RMAService, owners *services.OwnerService, undo *services.UndoService) *RMAController {
	return &RMAController{rmas: rmas, owners: owners, undo: undo}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

type CreateRMARequest struct {
	CustomerID         uint       `json:"customerId" binding:"required"`
	ReturnType         string     `json:"returnType" binding:"required"`
	Complaint          string     `json:"complaint"`
	InternalNotes      string     `json:"internalNotes"`
	CustomerDateOpened *time.Time `json:"customerDateOpened"`
	OwnerIDs           []uint     `json:"ownerIds"`
}

func (rc *RMAController) Create(c *gin.Context) {
	var req CreateRMARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, _ := actorID(c)
	rma, err := rc.rmas.Create(c.Request.Context(), services.CreateRMAInput{
		CustomerID:         req.CustomerID,
		ReturnType:         req.ReturnType,
		Complaint:          req.Complaint,
		InternalNotes:      req.InternalNotes,
		CustomerDateOpened: req.CustomerDateOpened,
		OwnerIDs:           req.OwnerIDs,
	}, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "RMA created",
		"rma":     rma,
		"code":    rma.Code(),
	})
}

func (rc *RMAController) List(c *gin.Context) {
	filters := services.ListRMAFilters{
		Search:     c.Query("search"),
		Status:     models.RMAStatus(c.Query("status")),
		ReturnType: c.Query("returnType"),
	}
	if raw := c.Query("customerId"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filters.CustomerID = uint(id)
		}
	}

	rmas, err := rc.rmas.List(filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rmas": rmas})
}

func (rc *RMAController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rma, err := rc.rmas.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rma": rma, "code": rma.Code()})
}

func (rc *RMAController) StatusOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "statuses": models.StatusOptions})
}

type ChangeStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

func (rc *RMAController) ChangeStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, _ := actorID(c)
	rma, err := rc.rmas.ChangeStatus(c.Request.Context(), sessionKey(c), id, models.RMAStatus(req.Status), req.Comment, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status updated", "rma": rma})
}

func (rc *RMAController) Acknowledge(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, _ := actorID(c)
	rma, err := rc.rmas.Acknowledge(id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "RMA acknowledged", "rma": rma})
}

type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

func (rc *RMAController) UpdateNotes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, _ := actorID(c)
	rma, changed, err := rc.rmas.UpdateNotes(c.Request.Context(), sessionKey(c), id, req.Notes, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Notes unchanged"
	if changed {
		message = "Notes updated"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "changed": changed, "rma": rma})
}

func (rc *RMAController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := rc.rmas.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "RMA deleted"})
}

func (rc *RMAController) StatusHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	entries, err := rc.rmas.StatusHistoryFor(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": entries})
}

func (rc *RMAController) NotesHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	entries, err := rc.rmas.NotesHistoryFor(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": entries})
}

func (rc *RMAController) DeleteStatusHistoryEntry(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	entryID, ok := paramID(c, "entryId")
	if !ok {
		return
	}
	if err := rc.rmas.DeleteStatusHistoryEntry(id, entryID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "History entry deleted"})
}

// Undo applies the session's single undoable action.
func (rc *RMAController) Undo(c *gin.Context) {
	message, err := rc.undo.Apply(c.Request.Context(), sessionKey(c))
	if err != nil {
		if errors.Is(err, services.ErrNothingToUndo) {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Nothing to undo", "applied": false})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "applied": true})
}

func (rc *RMAController) ListOwners(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	owners, err := rc.owners.ListFor(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "owners": owners})
}

type AssignOwnersRequest struct {
	UserIDs []uint `json:"userIds"`
}

func (rc *RMAController) AssignOwners(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AssignOwnersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, _ := actorID(c)
	owners, err := rc.owners.Assign(c.Request.Context(), id, req.UserIDs, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Owners assigned", "owners": owners})
}

func (rc *RMAController) RemoveOwner(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	if err := rc.owners.Remove(id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Owner removed"})
}

func (rc *RMAController) SetPrimaryOwner(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	if err := rc.owners.SetPrimary(id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Primary owner set"})
}
