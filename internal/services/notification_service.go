package services

import (
	"context"
	"fmt"
	"net/smtp"
	"os"

	"gorm.io/gorm"

	"github.com/rmatrack/backend/internal/logger"
	"github.com/rmatrack/backend/internal/models"
)

// RMANotification is the payload handed to a Sender. Complaint is truncated
// so subject lines and log records stay readable.
type RMANotification struct {
	RMAID        uint
	RMACode      string
	CustomerName string
	ReturnType   string
	Complaint    string
	ActorName    string
	Kind         string
}

// Sender delivers one notification to one recipient.
type Sender interface {
	Send(ctx context.Context, recipientEmail, recipientName string, n RMANotification) error
}

// logSender is the default sender: it writes the notification to the log
// instead of delivering it. Used when no SMTP host is configured.
type logSender struct{}

func (logSender) Send(_ context.Context, recipientEmail, recipientName string, n RMANotification) error {
	logger.Info("Notification (log only)", map[string]interface{}{
		"recipient": recipientEmail,
		"name":      recipientName,
		"rma":       n.RMACode,
		"customer":  n.CustomerName,
		"kind":      n.Kind,
	})
	return nil
}

// smtpSender delivers notifications over plain SMTP.
type smtpSender struct {
	host string
	port string
	from string
	user string
	pass string
}

func (s *smtpSender) Send(_ context.Context, recipientEmail, _ string, n RMANotification) error {
	subject := fmt.Sprintf("%s: %s", n.Kind, n.RMACode)
	body := fmt.Sprintf(
		"RMA: %s\r\nCustomer: %s\r\nReturn type: %s\r\nComplaint: %s\r\nBy: %s\r\n",
		n.RMACode, n.CustomerName, n.ReturnType, n.Complaint, n.ActorName,
	)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.from, recipientEmail, subject, body,
	))

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	if err := smtp.SendMail(s.host+":"+s.port, auth, s.from, []string{recipientEmail}, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// NewSenderFromEnv returns an SMTP sender when SMTP_HOST is set and the
// log-only sender otherwise.
func NewSenderFromEnv() Sender {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return logSender{}
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "rma-tracker@localhost"
	}
	return &smtpSender{
		host: host,
		port: port,
		from: from,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASSWORD"),
	}
}

// NotificationService fans out RMA notifications to users. Delivery is
// best effort: failures are logged and never returned to the caller.
type NotificationService struct {
	db     *gorm.DB
	sender Sender
}

// NewNotificationService creates a new notification service.
func NewNotificationService(db *gorm.DB, sender Sender) *NotificationService {
	return &NotificationService{db: db, sender: sender}
}

const complaintPreviewLen = 120

func truncateComplaint(s string) string {
	if len(s) <= complaintPreviewLen {
		return s
	}
	return s[:complaintPreviewLen] + "..."
}

// NotifyAssignment tells the given users they now own the RMA.
func (ns *NotificationService) NotifyAssignment(ctx context.Context, rma *models.RMA, customerName string, userIDs []uint, actorID uint) {
	var users []models.User
	if err := ns.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		logger.WithRMA(rma.ID).Error(fmt.Sprintf("Failed to load users for notification: %v", err))
		return
	}

	var actorName string
	var actor models.User
	if err := ns.db.First(&actor, actorID).Error; err == nil {
		actorName = actor.FullName
	}

	n := RMANotification{
		RMAID:        rma.ID,
		RMACode:      rma.Code(),
		CustomerName: customerName,
		ReturnType:   rma.ReturnType,
		Complaint:    truncateComplaint(rma.Complaint),
		ActorName:    actorName,
		Kind:         "RMA assigned",
	}
	for _, user := range users {
		if user.Email == "" {
			continue
		}
		if err := ns.sender.Send(ctx, user.Email, user.FullName, n); err != nil {
			logger.Error("Failed to send assignment notification", map[string]interface{}{
				"rma_id":    rma.ID,
				"recipient": user.Email,
				"error":     err.Error(),
			})
		}
	}
}

// NotifyReminder tells a user about their open RMAs older than the threshold.
func (ns *NotificationService) NotifyReminder(ctx context.Context, user *models.User, rmas []models.RMA) error {
	if user.Email == "" {
		return nil
	}
	for _, rma := range rmas {
		n := RMANotification{
			RMAID:        rma.ID,
			RMACode:      rma.Code(),
			CustomerName: rma.Customer.CustomerName,
			ReturnType:   rma.ReturnType,
			Complaint:    truncateComplaint(rma.Complaint),
			Kind:         "RMA reminder",
		}
		if err := ns.sender.Send(ctx, user.Email, user.FullName, n); err != nil {
			return fmt.Errorf("failed to send reminder to %s: %w", user.Email, err)
		}
	}
	return nil
}
