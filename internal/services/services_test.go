package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"tourmate-backend/internal/blacklist"
	"tourmate-backend/internal/config"
	"tourmate-backend/internal/models"
	"tourmate-backend/internal/storage"
	"tourmate-backend/pkg/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type testEnv struct {
	db      *gorm.DB
	store   *storage.LocalStorage
	auth    *AuthService
	profile *ProfileService
	diary   *DiaryService
	alerts  *AlertService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	utils.PasswordCost = bcrypt.MinCost

	db, err := config.OpenDatabase("sqlite", "file::memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	store := storage.NewLocalStorage(t.TempDir(), "/media")
	tokens := utils.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
	log := zap.NewNop()

	return &testEnv{
		db:      db,
		store:   store,
		auth:    NewAuthService(db, tokens, blacklist.NewGormBlacklist(db), log),
		profile: NewProfileService(db, store, 1<<20, log),
		diary:   NewDiaryService(db, store, 1<<20, log),
		alerts:  NewAlertService(db, log),
	}
}

func registerInput(email string) models.RegisterInput {
	return models.RegisterInput{
		Email:             email,
		FullName:          "Asha Rao",
		Mobile:            "+919876543210",
		Password:          "secret123",
		ConfirmPassword:   "secret123",
		BloodGroup:        "O+",
		EmergencyContact1: "+911234567890",
	}
}

func registerUser(t *testing.T, env *testEnv, email string) (*models.User, utils.TokenPair) {
	t.Helper()
	user, tokens, err := env.auth.Register(context.Background(), registerInput(email))
	require.NoError(t, err)
	return user, tokens
}

func pngUpload(name string) *storage.Upload {
	return &storage.Upload{Filename: name, Content: bytes.NewReader(pngBytes)}
}

func requireFieldError(t *testing.T, err error, field string) *utils.AppError {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, utils.KindValidation, appErr.Kind)
	require.Contains(t, appErr.Fields, field)
	return appErr
}

func requireKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, kind, appErr.Kind)
}

func ptr[T any](v T) *T { return &v }

// failingStore saves like LocalStorage but can never delete.
type failingStore struct {
	*storage.LocalStorage
}

func (failingStore) Delete(ctx context.Context, key string) error {
	return errors.New("bucket unavailable")
}
