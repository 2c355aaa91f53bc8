package services

import (
	"context"
	"fmt"

	"tourmate-backend/internal/models"
	"tourmate-backend/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AlertService records SOS alerts. Alerts are append-only and always come back
// with their owner preloaded, so responders see the owner's current details.
type AlertService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAlertService(db *gorm.DB, logger *zap.Logger) *AlertService {
	return &AlertService{db: db, logger: logger}
}

func (s *AlertService) CreateAlert(ctx context.Context, userID uint64, input models.CreateAlertInput) (*models.SOSAlert, error) {
	if err := utils.ValidateStruct(&input); err != nil {
		return nil, err
	}

	alert := models.SOSAlert{
		UserID:              userID,
		Latitude:            *input.Latitude,
		Longitude:           *input.Longitude,
		LocationDescription: optional(input.LocationDescription),
		Message:             optional(input.Message),
		Status:              models.AlertStatusSent,
	}
	if err := s.db.WithContext(ctx).Create(&alert).Error; err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}

	s.logger.Warn("sos alert raised",
		zap.Uint64("alert_id", alert.ID),
		zap.Uint64("user_id", userID),
		zap.Float64("latitude", alert.Latitude),
		zap.Float64("longitude", alert.Longitude),
	)

	if err := s.db.WithContext(ctx).Preload("User").First(&alert, alert.ID).Error; err != nil {
		return nil, fmt.Errorf("load alert: %w", err)
	}
	return &alert, nil
}

// ListHistory returns every alert of the user, newest first.
func (s *AlertService) ListHistory(ctx context.Context, userID uint64) ([]models.SOSAlert, error) {
	var alerts []models.SOSAlert
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}
