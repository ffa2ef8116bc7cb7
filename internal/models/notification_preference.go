package models

import "time"

type ReminderFrequency string

const (
	FrequencyDaily      ReminderFrequency = "daily"
	FrequencyEvery3Days ReminderFrequency = "every_3_days"
	FrequencyWeekly     ReminderFrequency = "weekly"
)

// NotificationPreference controls the reminder sweep for one user: which days
// to notify, how old an open RMA must be, and how often to repeat.
type NotificationPreference struct {
	ID               uint              `json:"id" gorm:"primaryKey"`
	UserID           uint              `json:"userId" gorm:"not null;uniqueIndex"`
	EmailEnabled     bool              `json:"emailEnabled"`
	DaysThreshold    int               `json:"daysThreshold" gorm:"not null"`
	Frequency        ReminderFrequency `json:"frequency" gorm:"not null;default:'daily'"`
	NotifySunday     bool              `json:"notifySunday"`
	NotifyMonday     bool              `json:"notifyMonday"`
	NotifyTuesday    bool              `json:"notifyTuesday"`
	NotifyWednesday  bool              `json:"notifyWednesday"`
	NotifyThursday   bool              `json:"notifyThursday"`
	NotifyFriday     bool              `json:"notifyFriday"`
	NotifySaturday   bool              `json:"notifySaturday"`
	NotificationTime string            `json:"notificationTime" gorm:"default:'09:00'"`
	LastSent         *time.Time        `json:"lastSent"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// NotifyOn reports whether reminders are enabled for the given weekday.
func (p *NotificationPreference) NotifyOn(day time.Weekday) bool {
	switch day {
	case time.Sunday:
		return p.NotifySunday
	case time.Monday:
		return p.NotifyMonday
	case time.Tuesday:
		return p.NotifyTuesday
	case time.Wednesday:
		return p.NotifyWednesday
	case time.Thursday:
		return p.NotifyThursday
	case time.Friday:
		return p.NotifyFriday
	case time.Saturday:
		return p.NotifySaturday
	}
	return false
}
