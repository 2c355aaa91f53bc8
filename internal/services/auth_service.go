package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tourmate-backend/internal/blacklist"
	"tourmate-backend/internal/models"
	"tourmate-backend/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgEmailTaken         = "user with this email already exists."
	msgInvalidToken       = "Token is invalid or expired."
	msgRevokedToken       = "Token is blacklisted."
	msgUserNotFound       = "User not found."
)

// AuthService owns registration, login and the token lifecycle.
type AuthService struct {
	db        *gorm.DB
	tokens    *utils.TokenManager
	blacklist blacklist.Blacklist
	logger    *zap.Logger
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenManager, bl blacklist.Blacklist, logger *zap.Logger) *AuthService {
	return &AuthService{db: db, tokens: tokens, blacklist: bl, logger: logger}
}

// Register creates the account and logs it in straight away.
func (s *AuthService) Register(ctx context.Context, input models.RegisterInput) (*models.User, utils.TokenPair, error) {
	input.Email = NormalizeEmail(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	input.Mobile = strings.TrimSpace(input.Mobile)
	input.EmergencyContact1 = strings.TrimSpace(input.EmergencyContact1)
	input.EmergencyContact2 = strings.TrimSpace(input.EmergencyContact2)

	errs := utils.FieldErrors{}
	if err := errs.Merge(utils.ValidateStruct(&input)); err != nil {
		return nil, utils.TokenPair{}, err
	}
	if input.Password != input.ConfirmPassword {
		errs.Add("confirm_password", "Passwords do not match.")
	}

	if input.Email != "" {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
			return nil, utils.TokenPair{}, fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			errs.Add("email", msgEmailTaken)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, utils.TokenPair{}, err
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, utils.TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:             input.Email,
		FullName:          input.FullName,
		Mobile:            input.Mobile,
		PasswordHash:      hashedPassword,
		BloodGroup:        input.BloodGroup,
		MedicalCondition:  optional(input.MedicalCondition),
		EmergencyContact1: input.EmergencyContact1,
		EmergencyContact2: optional(input.EmergencyContact2),
		IsActive:          true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.TokenPair{}, utils.ValidationError("email", msgEmailTaken)
		}
		return nil, utils.TokenPair{}, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, utils.TokenPair{}, err
	}
	s.logger.Info("user registered", zap.Uint64("user_id", user.ID))
	return &user, tokens, nil
}

// Login checks the credentials of an active account and issues a new token pair.
func (s *AuthService) Login(ctx context.Context, input models.LoginInput) (*models.User, utils.TokenPair, error) {
	if err := utils.ValidateStruct(&input); err != nil {
		return nil, utils.TokenPair{}, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(input.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.TokenPair{}, utils.AuthError(msgInvalidCredentials)
	}
	if err != nil {
		return nil, utils.TokenPair{}, fmt.Errorf("find user: %w", err)
	}

	if !user.IsActive || !utils.CheckPassword(input.Password, user.PasswordHash) {
		return nil, utils.TokenPair{}, utils.AuthError(msgInvalidCredentials)
	}

	tokens, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, utils.TokenPair{}, err
	}
	return &user, tokens, nil
}

// Logout blacklists a refresh token of the calling user. Access tokens already
// handed out stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID uint64, refresh string) error {
	claims, err := s.tokens.Parse(refresh, utils.RefreshToken)
	if err != nil || claims.UserID != userID {
		return utils.ValidationError("refresh", msgInvalidToken)
	}

	err = s.blacklist.Revoke(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time)
	if errors.Is(err, blacklist.ErrAlreadyRevoked) {
		return utils.ValidationError("refresh", msgRevokedToken)
	}
	if err != nil {
		return err
	}
	s.logger.Info("refresh token revoked", zap.Uint64("user_id", userID), zap.String("jti", claims.ID))
	return nil
}

// Refresh mints a new access token from a valid, unrevoked refresh token.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := s.tokens.Parse(refresh, utils.RefreshToken)
	if err != nil {
		return "", utils.AuthError(msgInvalidToken)
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", utils.AuthError(msgRevokedToken)
	}

	if _, err := s.activeUser(ctx, claims.UserID); err != nil {
		return "", err
	}
	return s.tokens.GenerateAccess(claims.UserID)
}

// Authenticate resolves a bearer access token to its active user.
func (s *AuthService) Authenticate(ctx context.Context, access string) (*models.User, error) {
	claims, err := s.tokens.Parse(access, utils.AccessToken)
	if err != nil {
		return nil, utils.AuthError(msgInvalidToken)
	}
	return s.activeUser(ctx, claims.UserID)
}

func (s *AuthService) activeUser(ctx context.Context, userID uint64) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.AuthError(msgUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return nil, utils.AuthError(msgUserNotFound)
	}
	return &user, nil
}

// NormalizeEmail lower-cases the domain part, leaving the local part untouched.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
