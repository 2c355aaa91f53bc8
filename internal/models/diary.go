package models

import "time"

const MaxCaptionLength = 500

// PhotoDiary is one travel photo in a user's diary.
type PhotoDiary struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;index"`
	Image     string `gorm:"size:255;not null"` // blob key
	Caption   string `gorm:"size:500;not null"`
	Location  string `gorm:"size:255;not null"`
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time `gorm:"index"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// CreatePhotoInput holds the text parts of the multipart upload.
type CreatePhotoInput struct {
	Caption   string   `json:"caption" form:"caption" binding:"required,max=500"`
	Location  string   `json:"location" form:"location" binding:"required,max=255"`
	Latitude  *float64 `json:"latitude" form:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" form:"longitude" binding:"omitempty,min=-180,max=180"`
}
