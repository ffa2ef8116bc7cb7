package models

import "time"

// NotesHistory is an append-only snapshot of the internal notes text. A row is
// only written when the text actually changed from the previous value.
type NotesHistory struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RMAID        uint      `json:"rmaId" gorm:"not null;index"`
	NotesContent string    `json:"notesContent" gorm:"type:text"`
	ModifiedBy   uint      `json:"modifiedBy" gorm:"not null"`
	User         User      `json:"user" gorm:"foreignKey:ModifiedBy"`
	ModifiedOn   time.Time `json:"modifiedOn" gorm:"not null"`
}

func (NotesHistory) TableName() string {
	return "notes_history"
}
