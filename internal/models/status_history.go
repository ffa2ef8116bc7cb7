package models

import "time"

// StatusHistory is an append-only record of status changes. Rows are never
// updated, only inserted or administratively deleted.
type StatusHistory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RMAID     uint      `json:"rmaId" gorm:"not null;index"`
	Status    RMAStatus `json:"status" gorm:"not null"`
	ChangedBy uint      `json:"changedBy" gorm:"not null"`
	User      User      `json:"user" gorm:"foreignKey:ChangedBy"`
	ChangedOn time.Time `json:"changedOn" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text"`
}

func (StatusHistory) TableName() string {
	return "status_history"
}
