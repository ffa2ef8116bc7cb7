package models

import (
	"fmt"
	"time"
)

type RMAStatus string

const (
	StatusDraft        RMAStatus = "Draft"
	StatusAcknowledged RMAStatus = "Acknowledged"
	StatusInProgress   RMAStatus = "In Progress"
	StatusDisposition  RMAStatus = "Disposition"
	StatusClosed       RMAStatus = "Closed"
	StatusRejected     RMAStatus = "Rejected"
)

// StatusOptions is the canonical status flow for the whole app.
var StatusOptions = []RMAStatus{
	StatusDraft,
	StatusAcknowledged,
	StatusInProgress,
	StatusDisposition,
	StatusClosed,
	StatusRejected,
}

// Valid reports whether s is one of the six canonical statuses.
func (s RMAStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusAcknowledged, StatusInProgress, StatusDisposition, StatusClosed, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s closes the RMA (sets the date_closed field).
func (s RMAStatus) Terminal() bool {
	return s == StatusClosed || s == StatusRejected
}

// RMACode renders the human-readable code for an RMA id, e.g. 7 -> "RMA0007".
func RMACode(id uint) string {
	return fmt.Sprintf("RMA%04d", id)
}

type RMA struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	CustomerID        uint       `json:"customerId" gorm:"not null;index"`
	Customer          Customer   `json:"customer" gorm:"foreignKey:CustomerID"`
	Status            RMAStatus  `json:"status" gorm:"not null;default:'Draft'"`
	ReturnType        string     `json:"returnType" gorm:"not null"`
	Complaint         string     `json:"complaint" gorm:"type:text"`
	InternalNotes     string     `json:"internalNotes" gorm:"type:text"`
	NotesLastModified *time.Time `json:"notesLastModified"`
	NotesModifiedBy   *uint      `json:"notesModifiedBy"`

	DateOpened         time.Time  `json:"dateOpened" gorm:"not null"`
	CustomerDateOpened *time.Time `json:"customerDateOpened"`
	DateClosed         *time.Time `json:"dateClosed"`

	Acknowledged   bool       `json:"acknowledged" gorm:"not null;default:false"`
	AcknowledgedOn *time.Time `json:"acknowledgedOn"`
	AcknowledgedBy *uint      `json:"acknowledgedBy"`

	CreditApproved        bool       `json:"creditApproved" gorm:"not null;default:false"`
	CreditApprovedOn      *time.Time `json:"creditApprovedOn"`
	CreditApprovedBy      *uint      `json:"creditApprovedBy"`
	CreditAmount          *float64   `json:"creditAmount"`
	CreditMemoNumber      *string    `json:"creditMemoNumber"`
	CreditRejected        bool       `json:"creditRejected" gorm:"not null;default:false"`
	CreditRejectedOn      *time.Time `json:"creditRejectedOn"`
	CreditRejectedBy      *uint      `json:"creditRejectedBy"`
	CreditRejectionReason *string    `json:"creditRejectionReason"`
	CreditIssuedOn        *time.Time `json:"creditIssuedOn"`

	CreatedByUserID uint      `json:"createdByUserId" gorm:"not null"`
	CreatedBy       User      `json:"createdBy" gorm:"foreignKey:CreatedByUserID"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	Lines  []RMALine  `json:"lines,omitempty" gorm:"foreignKey:RMAID"`
	Owners []RMAOwner `json:"owners,omitempty" gorm:"foreignKey:RMAID"`
}

func (RMA) TableName() string {
	return "rmas"
}

// Code returns the display code for this RMA.
func (r *RMA) Code() string {
	return RMACode(r.ID)
}
