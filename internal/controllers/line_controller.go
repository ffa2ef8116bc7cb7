package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmatrack/backend/internal/services"
)

type LineController struct {
	dispositions *services.DispositionService
}

func NewLineController(dispositions *services.DispositionService) *LineController {
	return &LineController{dispositions: dispositions}
}

type LineRequest struct {
	PartNumber      string   `json:"partNumber"`
	ToolNumber      string   `json:"toolNumber"`
	ItemDescription string   `json:"itemDescription"`
	QtyAffected     *int     `json:"qtyAffected"`
	POLotNumber     string   `json:"poLotNumber"`
	TotalCost       *float64 `json:"totalCost"`
}

func (req *LineRequest) toInput() services.LineInput {
	return services.LineInput{
		PartNumber:      req.PartNumber,
		ToolNumber:      req.ToolNumber,
		ItemDescription: req.ItemDescription,
		QtyAffected:     req.QtyAffected,
		POLotNumber:     req.POLotNumber,
		TotalCost:       req.TotalCost,
	}
}

func (lc *LineController) List(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	lines, err := lc.dispositions.LinesFor(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "lines": lines})
}

func (lc *LineController) Add(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req LineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	line, err := lc.dispositions.AddLine(id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Line added", "line": line})
}

func (lc *LineController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	lineID, ok := paramID(c, "lineId")
	if !ok {
		return
	}
	var req LineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	line, err := lc.dispositions.UpdateLine(id, lineID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Line updated", "line": line})
}

func (lc *LineController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	lineID, ok := paramID(c, "lineId")
	if !ok {
		return
	}
	if err := lc.dispositions.DeleteLine(id, lineID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Line deleted"})
}

type DispositionRequest struct {
	Disposition        string `json:"disposition" binding:"required"`
	FailureCode        string `json:"failureCode"`
	FailureDescription string `json:"failureDescription"`
	RootCause          string `json:"rootCause"`
	CorrectiveAction   string `json:"correctiveAction"`
	QtyScrap           *int   `json:"qtyScrap"`
	QtyRework          *int   `json:"qtyRework"`
	QtyReplace         *int   `json:"qtyReplace"`
}

func (lc *LineController) SetDisposition(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	lineID, ok := paramID(c, "lineId")
	if !ok {
		return
	}
	var req DispositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	userID, _ := actorID(c)
	disp, err := lc.dispositions.SetDisposition(id, lineID, services.DispositionInput{
		Disposition:        req.Disposition,
		FailureCode:        req.FailureCode,
		FailureDescription: req.FailureDescription,
		RootCause:          req.RootCause,
		CorrectiveAction:   req.CorrectiveAction,
		QtyScrap:           req.QtyScrap,
		QtyRework:          req.QtyRework,
		QtyReplace:         req.QtyReplace,
	}, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Disposition recorded", "disposition": disp})
}
