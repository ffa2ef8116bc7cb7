package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmatrack/backend/internal/services"
)

type CreditController struct {
	credits *services.CreditService
	metrics *services.MetricsService
}

func NewCreditController(credits *services.CreditService, metrics *services.MetricsService) *CreditController {
	return &CreditController{credits: credits, metrics: metrics}
}

type ApproveCreditRequest struct {
	Amount     float64 `json:"amount" binding:"required"`
	MemoNumber string  `json:"memoNumber"`
}

func (cc *CreditController) Approve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ApproveCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, _ := actorID(c)
	rma, err := cc.credits.Approve(id, req.Amount, req.MemoNumber, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Credit approved", "rma": rma})
}

type RejectCreditRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (cc *CreditController) Reject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req RejectCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, _ := actorID(c)
	rma, err := cc.credits.Reject(id, req.Reason, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Credit rejected", "rma": rma})
}

func (cc *CreditController) Reopen(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, _ := actorID(c)
	rma, err := cc.credits.Reopen(id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Credit reopened", "rma": rma})
}

type IssueCreditRequest struct {
	MemoNumber string `json:"memoNumber" binding:"required"`
}

func (cc *CreditController) Issue(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req IssueCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, _ := actorID(c)
	rma, err := cc.credits.Issue(id, req.MemoNumber, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Credit issued", "rma": rma})
}

func (cc *CreditController) ToggleApproval(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, _ := actorID(c)
	rma, err := cc.credits.ToggleApproval(c.Request.Context(), sessionKey(c), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Credit approval toggled", "rma": rma})
}

func (cc *CreditController) History(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	entries, err := cc.credits.HistoryFor(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": entries})
}

func (cc *CreditController) Dashboard(c *gin.Context) {
	dashboard, err := cc.metrics.CreditDashboard()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "dashboard": dashboard})
}
