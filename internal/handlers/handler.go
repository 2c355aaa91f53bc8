package handlers

import (
	"strings"
	"time"

	"tourmate-backend/internal/models"
	"tourmate-backend/internal/services"
	"tourmate-backend/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the HTTP API on top of the services. All dependencies are
// built once in main and passed in.
type Handler struct {
	Auth    *services.AuthService
	Profile *services.ProfileService
	Diary   *services.DiaryService
	Alerts  *services.AlertService
	Admin   *services.AdminService
	Storage storage.Storage
	Logger  *zap.Logger
}

type profileResponse struct {
	ID                uint64    `json:"id"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	Mobile            string    `json:"mobile"`
	BloodGroup        string    `json:"blood_group"`
	MedicalCondition  *string   `json:"medical_condition"`
	EmergencyContact1 string    `json:"emergency_contact_1"`
	EmergencyContact2 *string   `json:"emergency_contact_2"`
	Location          *string   `json:"location"`
	ProfileImage      *string   `json:"profile_image"`
	ProfileImageURL   *string   `json:"profile_image_url"`
	DateJoined        time.Time `json:"date_joined"`
}

type photoResponse struct {
	ID        uint64    `json:"id"`
	Image     string    `json:"image"`
	ImageURL  string    `json:"image_url"`
	Caption   string    `json:"caption"`
	Location  string    `json:"location"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// alertResponse carries the owner's medical and contact details for responders.
type alertResponse struct {
	ID                   uint64    `json:"id"`
	Latitude             float64   `json:"latitude"`
	Longitude            float64   `json:"longitude"`
	LocationDescription  *string   `json:"location_description"`
	Message              *string   `json:"message"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
	UserName             string    `json:"user_name"`
	UserPhone            string    `json:"user_phone"`
	UserBloodGroup       string    `json:"user_blood_group"`
	UserMedicalCondition *string   `json:"user_medical_condition"`
	EmergencyContact1    string    `json:"emergency_contact_1"`
	EmergencyContact2    *string   `json:"emergency_contact_2"`
}

func (h *Handler) profileJSON(c *gin.Context, user *models.User) profileResponse {
	resp := profileResponse{
		ID:                user.ID,
		Email:             user.Email,
		FullName:          user.FullName,
		Mobile:            user.Mobile,
		BloodGroup:        user.BloodGroup,
		MedicalCondition:  user.MedicalCondition,
		EmergencyContact1: user.EmergencyContact1,
		EmergencyContact2: user.EmergencyContact2,
		Location:          user.Location,
		DateJoined:        user.DateJoined,
	}
	if user.ProfileImage != nil && *user.ProfileImage != "" {
		url := h.mediaURL(c, *user.ProfileImage)
		resp.ProfileImage = &url
		resp.ProfileImageURL = &url
	}
	return resp
}

func (h *Handler) photoJSON(c *gin.Context, photo *models.PhotoDiary) photoResponse {
	url := h.mediaURL(c, photo.Image)
	return photoResponse{
		ID:        photo.ID,
		Image:     url,
		ImageURL:  url,
		Caption:   photo.Caption,
		Location:  photo.Location,
		Latitude:  photo.Latitude,
		Longitude: photo.Longitude,
		CreatedAt: photo.CreatedAt,
	}
}

func alertJSON(alert *models.SOSAlert) alertResponse {
	resp := alertResponse{
		ID:                  alert.ID,
		Latitude:            alert.Latitude,
		Longitude:           alert.Longitude,
		LocationDescription: alert.LocationDescription,
		Message:             alert.Message,
		Status:              alert.Status,
		CreatedAt:           alert.CreatedAt,
	}
	if u := alert.User; u != nil {
		resp.UserName = u.FullName
		resp.UserPhone = u.Mobile
		resp.UserBloodGroup = u.BloodGroup
		resp.UserMedicalCondition = u.MedicalCondition
		resp.EmergencyContact1 = u.EmergencyContact1
		resp.EmergencyContact2 = u.EmergencyContact2
	}
	return resp
}

// mediaURL resolves a blob key to an absolute URL, using the request host when
// the store only knows a relative path.
func (h *Handler) mediaURL(c *gin.Context, key string) string {
	raw := h.Storage.URL(key)
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + raw
}
