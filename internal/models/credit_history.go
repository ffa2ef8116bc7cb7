package models

import (
	"time"

	"gorm.io/datatypes"
)

type CreditAction string

const (
	CreditActionApproved CreditAction = "approved"
	CreditActionRejected CreditAction = "rejected"
	CreditActionIssued   CreditAction = "issued"
	CreditActionReopened CreditAction = "reopened"
	CreditActionToggled  CreditAction = "toggled"
)

// CreditHistory is an append-only ledger of credit-workflow actions.
type CreditHistory struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	RMAID      uint           `json:"rmaId" gorm:"not null;index"`
	Action     CreditAction   `json:"action" gorm:"not null"`
	Amount     *float64       `json:"amount"`
	MemoNumber string         `json:"memoNumber"`
	Comment    string         `json:"comment" gorm:"type:text"`
	Detail     datatypes.JSON `json:"detail"`
	ActorID    uint           `json:"actorId" gorm:"not null"`
	Actor      User           `json:"actor" gorm:"foreignKey:ActorID"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (CreditHistory) TableName() string {
	return "credit_history"
}
