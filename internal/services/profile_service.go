package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tourmate-backend/internal/models"
	"tourmate-backend/internal/storage"
	"tourmate-backend/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type profileRule struct {
	required bool
	tag      string
}

// Validation rules of the text fields a user may change on their profile.
var profileRules = map[string]profileRule{
	"full_name":           {required: true, tag: "max=255"},
	"mobile":              {required: true, tag: "max=15"},
	"blood_group":         {required: true, tag: "oneof=A+ A- B+ B- AB+ AB- O+ O-"},
	"medical_condition":   {},
	"emergency_contact_1": {required: true, tag: "max=15"},
	"emergency_contact_2": {tag: "max=15"},
	"location":            {tag: "max=255"},
}

type ProfileService struct {
	db        *gorm.DB
	store     storage.Storage
	maxUpload int64
	logger    *zap.Logger
}

func NewProfileService(db *gorm.DB, store storage.Storage, maxUpload int64, logger *zap.Logger) *ProfileService {
	return &ProfileService{db: db, store: store, maxUpload: maxUpload, logger: logger}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uint64) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFoundError(msgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// UpdateProfile applies a full (PUT) or partial (PATCH) update. Immutable keys
// in the payload reject the whole request. A new profile image replaces the
// old blob, which is removed once the record points at the new one.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint64, update models.ProfileUpdate, image *storage.Upload, partial bool) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	errs := utils.FieldErrors{}
	for _, key := range models.ProfileImmutableFields {
		if _, ok := update[key]; ok {
			errs.Add(key, "This field cannot be changed.")
		}
	}

	changes := map[string]interface{}{}
	for _, key := range models.ProfileMutableFields {
		raw, ok := update[key]
		if !ok {
			if !partial {
				errs.Add(key, "This field is required.")
			}
			continue
		}
		rule := profileRules[key]
		if raw == nil {
			if rule.required {
				errs.Add(key, "This field may not be null.")
			} else {
				changes[key] = nil
			}
			continue
		}

		value := strings.TrimSpace(*raw)
		if value == "" {
			if rule.required {
				errs.Add(key, "This field may not be blank.")
			} else {
				changes[key] = nil
			}
			continue
		}
		if rule.tag != "" {
			before := len(errs[key])
			utils.ValidateVar(errs, key, value, rule.tag)
			if len(errs[key]) > before {
				continue
			}
		}
		changes[key] = value
	}

	clearImage := false
	if raw, ok := update["profile_image"]; ok && image == nil {
		if raw != nil && strings.TrimSpace(*raw) != "" {
			errs.Add("profile_image", "The submitted data was not a file. Check the encoding type on the form.")
		} else {
			clearImage = true
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	oldImage := user.ProfileImage
	var newImage string
	if image != nil {
		newImage, err = storage.SaveImage(ctx, s.store, "profiles", *image, s.maxUpload)
		if err != nil {
			if storage.IsUploadError(err) {
				return nil, utils.ValidationError("profile_image", uploadMessage(err))
			}
			return nil, err
		}
		changes["profile_image"] = newImage
	} else if clearImage {
		changes["profile_image"] = nil
	}

	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(changes).Error; err != nil {
			if newImage != "" {
				s.removeBlob(ctx, newImage)
			}
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}

	if _, replaced := changes["profile_image"]; replaced && oldImage != nil && *oldImage != newImage {
		s.removeBlob(ctx, *oldImage)
	}
	return s.GetProfile(ctx, userID)
}

func (s *ProfileService) removeBlob(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Error("failed to delete profile image", zap.String("key", key), zap.Error(err))
	}
}

func uploadMessage(err error) string {
	msg := err.Error()
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
