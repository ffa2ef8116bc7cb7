package models

import "time"

type Attachment struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	RMAID          uint      `json:"rmaId" gorm:"not null;index"`
	AttachmentType string    `json:"attachmentType" gorm:"default:'File'"`
	Filename       string    `json:"filename" gorm:"not null"`
	StorageKey     string    `json:"storageKey" gorm:"not null"`
	ContentType    string    `json:"contentType"`
	SizeBytes      int64     `json:"sizeBytes"`
	AddedBy        uint      `json:"addedBy" gorm:"not null"`
	User           User      `json:"user" gorm:"foreignKey:AddedBy"`
	DateAdded      time.Time `json:"dateAdded"`
}

func (Attachment) TableName() string {
	return "attachments"
}
