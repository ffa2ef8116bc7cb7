package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rmatrack/backend/internal/models"
	"github.com/rmatrack/backend/internal/services"
)

type MetricsController struct {
	metrics *services.MetricsService
}

func NewMetricsController(metrics *services.MetricsService) *MetricsController {
	return &MetricsController{metrics: metrics}
}

func (mc *MetricsController) Overview(c *gin.Context) {
	overview, err := mc.metrics.Overview()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "metrics": overview})
}

type NotificationController struct {
	reminders *services.ReminderService
}

func NewNotificationController(reminders *services.ReminderService) *NotificationController {
	return &NotificationController{reminders: reminders}
}

func (nc *NotificationController) GetPreferences(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}
	pref, err := nc.reminders.PreferencesFor(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "preferences": pref})
}

type PreferencesRequest struct {
	EmailEnabled     bool   `json:"emailEnabled"`
	DaysThreshold    int    `json:"daysThreshold" binding:"required"`
	Frequency        string `json:"frequency" binding:"required"`
	NotifySunday     bool   `json:"notifySunday"`
	NotifyMonday     bool   `json:"notifyMonday"`
	NotifyTuesday    bool   `json:"notifyTuesday"`
	NotifyWednesday  bool   `json:"notifyWednesday"`
	NotifyThursday   bool   `json:"notifyThursday"`
	NotifyFriday     bool   `json:"notifyFriday"`
	NotifySaturday   bool   `json:"notifySaturday"`
	NotificationTime string `json:"notificationTime"`
}

func (nc *NotificationController) UpdatePreferences(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	pref, err := nc.reminders.UpdatePreferences(userID, services.UpdatePreferencesInput{
		EmailEnabled:     req.EmailEnabled,
		DaysThreshold:    req.DaysThreshold,
		Frequency:        models.ReminderFrequency(req.Frequency),
		NotifySunday:     req.NotifySunday,
		NotifyMonday:     req.NotifyMonday,
		NotifyTuesday:    req.NotifyTuesday,
		NotifyWednesday:  req.NotifyWednesday,
		NotifyThursday:   req.NotifyThursday,
		NotifyFriday:     req.NotifyFriday,
		NotifySaturday:   req.NotifySaturday,
		NotificationTime: req.NotificationTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Preferences updated", "preferences": pref})
}

// TriggerSweep runs the reminder sweep immediately. Admin only.
func (nc *NotificationController) TriggerSweep(c *gin.Context) {
	result, err := nc.reminders.Sweep(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Reminder sweep completed", "result": result})
}
