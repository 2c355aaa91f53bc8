package models

import "time"

// RevokedToken is an entry of the refresh token blacklist.
type RevokedToken struct {
	ID        uint64    `gorm:"primaryKey"`
	JTI       string    `gorm:"column:jti;uniqueIndex;size:64;not null"`
	UserID    uint64    `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}
