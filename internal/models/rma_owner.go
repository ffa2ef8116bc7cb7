package models

import "time"

// RMAOwner joins internal users to the RMAs they are responsible for. At most
// one row exists per (RMA, user) pair.
type RMAOwner struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	RMAID      uint      `json:"rmaId" gorm:"not null;uniqueIndex:idx_rma_owner"`
	UserID     uint      `json:"userId" gorm:"not null;uniqueIndex:idx_rma_owner"`
	User       User      `json:"user" gorm:"foreignKey:UserID"`
	IsPrimary  bool      `json:"isPrimary" gorm:"not null;default:false"`
	AssignedOn time.Time `json:"assignedOn"`
	AssignedBy *uint     `json:"assignedBy"`
}

func (RMAOwner) TableName() string {
	return "rma_owners"
}
