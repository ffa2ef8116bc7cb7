package models

import "time"

// Disposition is the resolution recorded for one RMA line. At most one exists
// per line; a second submission overwrites the first.
type Disposition struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	RMALineID          uint      `json:"rmaLineId" gorm:"not null;uniqueIndex"`
	Disposition        string    `json:"disposition"`
	FailureCode        string    `json:"failureCode"`
	FailureDescription string    `json:"failureDescription"`
	RootCause          string    `json:"rootCause" gorm:"type:text"`
	CorrectiveAction   string    `json:"correctiveAction" gorm:"type:text"`
	QtyScrap           *int      `json:"qtyScrap"`
	QtyRework          *int      `json:"qtyRework"`
	QtyReplace         *int      `json:"qtyReplace"`
	DateDispositioned  time.Time `json:"dateDispositioned"`
	DispositionBy      uint      `json:"dispositionBy"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (Disposition) TableName() string {
	return "dispositions"
}
