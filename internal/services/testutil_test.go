package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rmatrack/backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.RMA{},
		&models.RMALine{},
		&models.Disposition{},
		&models.StatusHistory{},
		&models.NotesHistory{},
		&models.CreditHistory{},
		&models.RMAOwner{},
		&models.Attachment{},
		&models.NotificationPreference{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		FullName: username,
		Role:     models.RoleUser,
		IsOwner:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCustomer(t *testing.T, db *gorm.DB, name string) *models.Customer {
	t.Helper()
	customer := &models.Customer{CustomerName: name}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// testFixture wires the service graph against an in-memory database with the
// in-process undo store and a capturing sender.
type testFixture struct {
	db      *gorm.DB
	undo    *UndoService
	rmas    *RMAService
	credits *CreditService
	owners  *OwnerService
	sender  *captureSender
	actor   *models.User

	customerSeq int
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	db := openTestDB(t)
	sender := &captureSender{}
	notifier := NewNotificationService(db, sender)
	undo := NewUndoService(db, NewMemoryUndoStore())
	return &testFixture{
		db:      db,
		undo:    undo,
		rmas:    NewRMAService(db, undo, notifier),
		credits: NewCreditService(db, undo),
		owners:  NewOwnerService(db, notifier),
		sender:  sender,
		actor:   seedUser(t, db, "alice"),
	}
}

func (f *testFixture) createRMA(t *testing.T) *models.RMA {
	t.Helper()
	f.customerSeq++
	customer := seedCustomer(t, f.db, fmt.Sprintf("Test Customer %d", f.customerSeq))
	rma, err := f.rmas.Create(context.Background(), CreateRMAInput{
		CustomerID: customer.ID,
		ReturnType: "Credit",
		Complaint:  "Units arrived damaged",
	}, f.actor.ID)
	require.NoError(t, err)
	return rma
}

type capturedNotification struct {
	Recipient string
	Payload   RMANotification
}

// captureSender records every notification instead of delivering it.
type captureSender struct {
	sent []capturedNotification
}

func (s *captureSender) Send(_ context.Context, recipientEmail, _ string, n RMANotification) error {
	s.sent = append(s.sent, capturedNotification{Recipient: recipientEmail, Payload: n})
	return nil
}
