package services

import (
	"context"
	"fmt"
	"strings"

	"tourmate-backend/internal/models"
	"tourmate-backend/pkg/utils"

	"gorm.io/gorm"
)

// DashboardStats is the staff overview of the whole system.
type DashboardStats struct {
	TotalUsers     int64            `json:"total_users"`
	ActiveUsers    int64            `json:"active_users"`
	TotalPhotos    int64            `json:"total_photos"`
	AlertsByStatus map[string]int64 `json:"alerts_by_status"`
}

// UserFilter narrows the staff user listing. Zero values match everything.
type UserFilter struct {
	Search     string
	BloodGroup string
	IsActive   *bool
	IsStaff    *bool
}

type AlertFilter struct {
	Status string
	Search string // owner's full name or mobile
}

type PhotoFilter struct {
	Search string // caption, location or owner's full name
	UserID uint64
}

// AdminService backs the read-only staff API. It never mutates anything.
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{AlertsByStatus: map[string]int64{
		models.AlertStatusSent:     0,
		models.AlertStatusReceived: 0,
		models.AlertStatusResolved: 0,
	}}

	// 1. Users
	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := db.Model(&models.User{}).Where("is_active = ?", true).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, fmt.Errorf("count active users: %w", err)
	}

	// 2. Photos
	if err := db.Model(&models.PhotoDiary{}).Count(&stats.TotalPhotos).Error; err != nil {
		return nil, fmt.Errorf("count photos: %w", err)
	}

	// 3. Alerts per status
	var rows []struct {
		Status string
		Total  int64
	}
	err := db.Model(&models.SOSAlert{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count alerts: %w", err)
	}
	for _, row := range rows {
		stats.AlertsByStatus[row.Status] = row.Total
	}
	return stats, nil
}

// ListUsers returns accounts newest first.
func (s *AdminService) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})

	if pattern := likePattern(filter.Search); pattern != "" {
		query = query.Where("(LOWER(email) LIKE ? ESCAPE '!' OR LOWER(full_name) LIKE ? ESCAPE '!' OR LOWER(mobile) LIKE ? ESCAPE '!')",
			pattern, pattern, pattern)
	}
	if filter.BloodGroup != "" {
		query = query.Where("blood_group = ?", filter.BloodGroup)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsStaff != nil {
		query = query.Where("is_staff = ?", *filter.IsStaff)
	}

	var users []models.User
	if err := query.Order("date_joined DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListAlerts returns every alert in the system newest first, owners preloaded.
func (s *AdminService) ListAlerts(ctx context.Context, filter AlertFilter) ([]models.SOSAlert, error) {
	db := s.db.WithContext(ctx)
	query := db.Preload("User")

	if status := strings.TrimSpace(filter.Status); status != "" {
		if status != models.AlertStatusSent && status != models.AlertStatusReceived && status != models.AlertStatusResolved {
			return nil, utils.ValidationError("status", fmt.Sprintf("%q is not a valid choice.", status))
		}
		query = query.Where("status = ?", status)
	}
	if pattern := likePattern(filter.Search); pattern != "" {
		owners := db.Model(&models.User{}).Select("id").
			Where("(LOWER(full_name) LIKE ? ESCAPE '!' OR LOWER(mobile) LIKE ? ESCAPE '!')", pattern, pattern)
		query = query.Where("user_id IN (?)", owners)
	}

	var alerts []models.SOSAlert
	if err := query.Order("created_at DESC").Order("id DESC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// ListPhotos returns diary entries of every user newest first, owners preloaded.
func (s *AdminService) ListPhotos(ctx context.Context, filter PhotoFilter) ([]models.PhotoDiary, error) {
	db := s.db.WithContext(ctx)
	query := db.Preload("User")

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if pattern := likePattern(filter.Search); pattern != "" {
		owners := db.Model(&models.User{}).Select("id").Where("LOWER(full_name) LIKE ? ESCAPE '!'", pattern)
		query = query.Where("(LOWER(caption) LIKE ? ESCAPE '!' OR LOWER(location) LIKE ? ESCAPE '!' OR user_id IN (?))",
			pattern, pattern, owners)
	}

	var photos []models.PhotoDiary
	if err := query.Order("created_at DESC").Order("id DESC").Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

// likePattern builds a case-insensitive contains pattern, or "" for a blank term.
func likePattern(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
