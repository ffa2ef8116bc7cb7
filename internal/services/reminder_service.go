package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rmatrack/backend/internal/logger"
	"github.com/rmatrack/backend/internal/models"
)

// ReminderService sweeps owners' open RMAs and sends reminders according to
// each user's notification preferences.
type ReminderService struct {
	db       *gorm.DB
	notifier *NotificationService
}

// NewReminderService creates a new reminder service.
func NewReminderService(db *gorm.DB, notifier *NotificationService) *ReminderService {
	return &ReminderService{db: db, notifier: notifier}
}

// SweepResult summarizes one reminder run.
type SweepResult struct {
	UsersChecked  int `json:"usersChecked"`
	UsersNotified int `json:"usersNotified"`
	RMAsFlagged   int `json:"rmasFlagged"`
}

// due reports whether the frequency allows another send, given the last one.
func due(freq models.ReminderFrequency, lastSent *time.Time, now time.Time) bool {
	if lastSent == nil {
		return true
	}
	elapsed := now.Sub(*lastSent)
	switch freq {
	case models.FrequencyEvery3Days:
		return elapsed >= 3*24*time.Hour
	case models.FrequencyWeekly:
		return elapsed >= 7*24*time.Hour
	default: // daily
		y1, m1, d1 := lastSent.Date()
		y2, m2, d2 := now.Date()
		return y1 != y2 || m1 != m2 || d1 != d2
	}
}

// Sweep runs one reminder pass at the given wall-clock time. For every user
// with reminders enabled for today's weekday and a satisfied frequency, it
// collects their open RMAs older than their threshold, sends one reminder
// batch and stamps last_sent. Send failures skip the stamp so the next run
// retries.
func (rs *ReminderService) Sweep(ctx context.Context, now time.Time) (*SweepResult, error) {
	var prefs []models.NotificationPreference
	if err := rs.db.Where("email_enabled = ?", true).Find(&prefs).Error; err != nil {
		return nil, fmt.Errorf("failed to load notification preferences: %w", err)
	}

	result := &SweepResult{}
	for i := range prefs {
		pref := &prefs[i]
		result.UsersChecked++

		if !pref.NotifyOn(now.Weekday()) {
			continue
		}
		if !due(pref.Frequency, pref.LastSent, now) {
			continue
		}

		var user models.User
		if err := rs.db.First(&user, pref.UserID).Error; err != nil {
			logger.Warn("Skipping reminder for missing user", map[string]interface{}{
				"user_id": pref.UserID,
				"error":   err.Error(),
			})
			continue
		}

		cutoff := now.AddDate(0, 0, -pref.DaysThreshold)
		var rmas []models.RMA
		err := rs.db.
			Joins("JOIN rma_owners ON rma_owners.rma_id = rmas.id").
			Where("rma_owners.user_id = ?", pref.UserID).
			Where("rmas.status NOT IN ?", []models.RMAStatus{models.StatusClosed, models.StatusRejected}).
			Where("rmas.date_opened <= ?", cutoff).
			Preload("Customer").
			Find(&rmas).Error
		if err != nil {
			return nil, fmt.Errorf("failed to collect open RMAs for user %d: %w", pref.UserID, err)
		}
		if len(rmas) == 0 {
			continue
		}

		if err := rs.notifier.NotifyReminder(ctx, &user, rmas); err != nil {
			logger.Error("Reminder delivery failed", map[string]interface{}{
				"user_id": pref.UserID,
				"error":   err.Error(),
			})
			continue
		}

		if err := rs.db.Model(pref).Update("last_sent", now).Error; err != nil {
			return nil, fmt.Errorf("failed to stamp last_sent for user %d: %w", pref.UserID, err)
		}
		result.UsersNotified++
		result.RMAsFlagged += len(rmas)
	}

	logger.Info("Reminder sweep completed", map[string]interface{}{
		"checked":  result.UsersChecked,
		"notified": result.UsersNotified,
		"flagged":  result.RMAsFlagged,
	})
	return result, nil
}

// PreferencesFor returns the user's preferences, creating defaults on first
// access.
func (rs *ReminderService) PreferencesFor(userID uint) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	err := rs.db.Where("user_id = ?", userID).First(&pref).Error
	if err == nil {
		return &pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	pref = models.NotificationPreference{
		UserID:           userID,
		EmailEnabled:     true,
		DaysThreshold:    7,
		Frequency:        models.FrequencyDaily,
		NotifyMonday:     true,
		NotifyTuesday:    true,
		NotifyWednesday:  true,
		NotifyThursday:   true,
		NotifyFriday:     true,
		NotificationTime: "09:00",
	}
	if err := rs.db.Create(&pref).Error; err != nil {
		return nil, fmt.Errorf("failed to create default preferences: %w", err)
	}
	return &pref, nil
}

// UpdatePreferencesInput carries a full replacement of a user's preferences.
type UpdatePreferencesInput struct {
	EmailEnabled     bool
	DaysThreshold    int
	Frequency        models.ReminderFrequency
	NotifySunday     bool
	NotifyMonday     bool
	NotifyTuesday    bool
	NotifyWednesday  bool
	NotifyThursday   bool
	NotifyFriday     bool
	NotifySaturday   bool
	NotificationTime string
}

// UpdatePreferences replaces the user's preferences.
func (rs *ReminderService) UpdatePreferences(userID uint, input UpdatePreferencesInput) (*models.NotificationPreference, error) {
	if input.DaysThreshold < 1 {
		return nil, validationErr("daysThreshold", "threshold must be at least 1 day")
	}
	switch input.Frequency {
	case models.FrequencyDaily, models.FrequencyEvery3Days, models.FrequencyWeekly:
	default:
		return nil, validationErr("frequency", "unknown reminder frequency")
	}

	pref, err := rs.PreferencesFor(userID)
	if err != nil {
		return nil, err
	}

	err = rs.db.Model(pref).Updates(map[string]interface{}{
		"email_enabled":     input.EmailEnabled,
		"days_threshold":    input.DaysThreshold,
		"frequency":         input.Frequency,
		"notify_sunday":     input.NotifySunday,
		"notify_monday":     input.NotifyMonday,
		"notify_tuesday":    input.NotifyTuesday,
		"notify_wednesday":  input.NotifyWednesday,
		"notify_thursday":   input.NotifyThursday,
		"notify_friday":     input.NotifyFriday,
		"notify_saturday":   input.NotifySaturday,
		"notification_time": input.NotificationTime,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return pref, nil
}
