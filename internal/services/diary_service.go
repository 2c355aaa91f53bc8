package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tourmate-backend/internal/models"
	"tourmate-backend/internal/storage"
	"tourmate-backend/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const msgPhotoNotFound = "Photo not found."

// '!' escapes LIKE wildcards; backslash means different things across dialects.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// DiaryService manages the travel photo diary of each user.
type DiaryService struct {
	db        *gorm.DB
	store     storage.Storage
	maxUpload int64
	logger    *zap.Logger
	now       func() time.Time
}

func NewDiaryService(db *gorm.DB, store storage.Storage, maxUpload int64, logger *zap.Logger) *DiaryService {
	return &DiaryService{db: db, store: store, maxUpload: maxUpload, logger: logger, now: time.Now}
}

// ListEntries returns the user's photos newest first. A non-empty search keeps
// the photos whose caption or location contains it, ignoring case.
func (s *DiaryService) ListEntries(ctx context.Context, userID uint64, search string) ([]models.PhotoDiary, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)

	if pattern := likePattern(search); pattern != "" {
		query = query.Where("(LOWER(caption) LIKE ? ESCAPE '!' OR LOWER(location) LIKE ? ESCAPE '!')", pattern, pattern)
	}

	var photos []models.PhotoDiary
	if err := query.Order("created_at DESC").Order("id DESC").Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

// CreateEntry stores the image then the record. If the record cannot be
// written the image is removed again.
func (s *DiaryService) CreateEntry(ctx context.Context, userID uint64, input models.CreatePhotoInput, image *storage.Upload) (*models.PhotoDiary, error) {
	input.Caption = strings.TrimSpace(input.Caption)
	input.Location = strings.TrimSpace(input.Location)

	errs := utils.FieldErrors{}
	if image == nil {
		errs.Add("image", "No file was submitted.")
	}
	if err := errs.Merge(utils.ValidateStruct(&input)); err != nil {
		return nil, err
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	key, err := storage.SaveImage(ctx, s.store, "photos/"+s.now().Format("2006/01"), *image, s.maxUpload)
	if err != nil {
		if storage.IsUploadError(err) {
			return nil, utils.ValidationError("image", uploadMessage(err))
		}
		return nil, err
	}

	photo := models.PhotoDiary{
		UserID:    userID,
		Image:     key,
		Caption:   input.Caption,
		Location:  input.Location,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	}
	if err := s.db.WithContext(ctx).Create(&photo).Error; err != nil {
		s.removeBlob(ctx, key)
		return nil, fmt.Errorf("create photo: %w", err)
	}
	return &photo, nil
}

// GetEntry finds a photo owned by userID. Photos of other users are reported
// exactly like missing ones.
func (s *DiaryService) GetEntry(ctx context.Context, userID, id uint64) (*models.PhotoDiary, error) {
	var photo models.PhotoDiary
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&photo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFoundError(msgPhotoNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find photo: %w", err)
	}
	return &photo, nil
}

// DeleteEntry removes the image blob and then the record. A failing blob
// delete is logged and does not stop the record from going away.
func (s *DiaryService) DeleteEntry(ctx context.Context, userID, id uint64) error {
	photo, err := s.GetEntry(ctx, userID, id)
	if err != nil {
		return err
	}

	s.removeBlob(ctx, photo.Image)

	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", photo.ID, userID).Delete(&models.PhotoDiary{})
	if res.Error != nil {
		return fmt.Errorf("delete photo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.NotFoundError(msgPhotoNotFound)
	}
	return nil
}

func (s *DiaryService) removeBlob(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Error("failed to delete photo image", zap.String("key", key), zap.Error(err))
	}
}
