package blacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourmate-backend/internal/models"

	"gorm.io/gorm"
)

// GormBlacklist keeps revoked tokens in the revoked_tokens table.
type GormBlacklist struct {
	db *gorm.DB
}

func NewGormBlacklist(db *gorm.DB) *GormBlacklist {
	return &GormBlacklist{db: db}
}

func (b *GormBlacklist) Revoke(ctx context.Context, jti string, userID uint64, expiresAt time.Time) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// expired rows can never be presented again
		if err := tx.Where("expires_at < ?", time.Now()).Delete(&models.RevokedToken{}).Error; err != nil {
			return fmt.Errorf("purge expired tokens: %w", err)
		}

		var count int64
		if err := tx.Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
			return fmt.Errorf("lookup revoked token: %w", err)
		}
		if count > 0 {
			return ErrAlreadyRevoked
		}

		err := tx.Create(&models.RevokedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyRevoked
		}
		if err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
		return nil
	})
}

func (b *GormBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := b.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, fmt.Errorf("lookup revoked token: %w", err)
	}
	return count > 0, nil
}
