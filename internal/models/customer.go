package models

import "time"

type Customer struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CustomerName string    `json:"customerName" gorm:"not null;uniqueIndex"`
	ContactName  string    `json:"contactName"`
	ContactEmail string    `json:"contactEmail"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Customer) TableName() string {
	return "customers"
}
