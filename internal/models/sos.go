package models

import "time"

const (
	AlertStatusSent     = "sent"
	AlertStatusReceived = "received"
	AlertStatusResolved = "resolved"
)

// SOSAlert is an emergency alert raised by a user. Rows are append-only.
type SOSAlert struct {
	ID                  uint64    `gorm:"primaryKey"`
	UserID              uint64    `gorm:"not null;index"`
	Latitude            float64   `gorm:"not null"`
	Longitude           float64   `gorm:"not null"`
	LocationDescription *string   `gorm:"size:255"`
	Status              string    `gorm:"size:20;not null;default:'sent'"`
	Message             *string   `gorm:"type:text"`
	CreatedAt           time.Time `gorm:"index"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type CreateAlertInput struct {
	Latitude            *float64 `json:"latitude" form:"latitude" binding:"required,min=-90,max=90"`
	Longitude           *float64 `json:"longitude" form:"longitude" binding:"required,min=-180,max=180"`
	LocationDescription string   `json:"location_description" form:"location_description" binding:"max=255"`
	Message             string   `json:"message" form:"message"`
}
