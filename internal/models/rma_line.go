package models

import "time"

type RMALine struct {
	ID              uint         `json:"id" gorm:"primaryKey"`
	RMAID           uint         `json:"rmaId" gorm:"not null;index"`
	PartNumber      string       `json:"partNumber"`
	ToolNumber      string       `json:"toolNumber"`
	ItemDescription string       `json:"itemDescription"`
	QtyAffected     *int         `json:"qtyAffected"`
	POLotNumber     string       `json:"poLotNumber"`
	TotalCost       *float64     `json:"totalCost"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
	Disposition     *Disposition `json:"disposition,omitempty" gorm:"foreignKey:RMALineID"`
}

func (RMALine) TableName() string {
	return "rma_lines"
}
