package models

import (
	"time"
)

// BloodGroups lists the accepted values for User.BloodGroup.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// User is a registered tourist: credentials plus the medical and emergency
// details responders see when an SOS goes out.
type User struct {
	ID                uint64    `gorm:"primaryKey"`
	Email             string    `gorm:"uniqueIndex;size:254;not null"`
	FullName          string    `gorm:"size:255;not null"`
	Mobile            string    `gorm:"size:15;not null"`
	PasswordHash      string    `gorm:"size:128;not null"`
	BloodGroup        string    `gorm:"size:5;not null"`
	MedicalCondition  *string   `gorm:"type:text"`
	EmergencyContact1 string    `gorm:"column:emergency_contact_1;size:15;not null"`
	EmergencyContact2 *string   `gorm:"column:emergency_contact_2;size:15"`
	ProfileImage      *string   `gorm:"size:255"` // blob key
	Location          *string   `gorm:"size:255"`
	IsActive          bool      `gorm:"not null;default:true"`
	IsStaff           bool      `gorm:"not null;default:false"`
	DateJoined        time.Time `gorm:"autoCreateTime;<-:create"`
}

// RegisterInput is the body of POST /auth/register/.
type RegisterInput struct {
	Email             string `json:"email" form:"email" binding:"required,email,max=254"`
	FullName          string `json:"full_name" form:"full_name" binding:"required,max=255"`
	Mobile            string `json:"mobile" form:"mobile" binding:"required,max=15"`
	Password          string `json:"password" form:"password" binding:"required,min=6"`
	ConfirmPassword   string `json:"confirm_password" form:"confirm_password" binding:"required"`
	BloodGroup        string `json:"blood_group" form:"blood_group" binding:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	MedicalCondition  string `json:"medical_condition" form:"medical_condition"`
	EmergencyContact1 string `json:"emergency_contact_1" form:"emergency_contact_1" binding:"required,max=15"`
	EmergencyContact2 string `json:"emergency_contact_2" form:"emergency_contact_2" binding:"max=15"`
}

// LoginInput is the body of POST /auth/login/.
type LoginInput struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// RefreshInput carries a refresh token for logout and token refresh.
type RefreshInput struct {
	Refresh string `json:"refresh" form:"refresh" binding:"required"`
}

// Profile fields a user may edit. profile_image travels as a file and is
// handled separately.
var ProfileMutableFields = []string{
	"full_name", "mobile", "blood_group", "medical_condition",
	"emergency_contact_1", "emergency_contact_2", "location",
}

// Profile fields that may never appear in an update payload.
var ProfileImmutableFields = []string{"id", "email", "date_joined", "password", "is_active", "is_staff"}

// ProfileUpdate is a profile mutation keyed by JSON field name. A nil value
// means the client sent an explicit null.
type ProfileUpdate map[string]*string
