package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var (
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenExpired   = errors.New("token is expired")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims carried by both access and refresh tokens.
type Claims struct {
	UserID    uint64    `json:"user_id"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is what register and login hand back to the app.
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// TokenManager signs and verifies HS256 tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// GeneratePair issues a fresh refresh token and an access token for the user.
func (m *TokenManager) GeneratePair(userID uint64) (TokenPair, error) {
	refresh, err := m.sign(userID, RefreshToken, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := m.sign(userID, AccessToken, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Refresh: refresh, Access: access}, nil
}

// GenerateAccess issues a single access token.
func (m *TokenManager) GenerateAccess(userID uint64) (string, error) {
	return m.sign(userID, AccessToken, m.accessTTL)
}

func (m *TokenManager) sign(userID uint64, tokenType TokenType, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry and checks the token is of the wanted type.
func (m *TokenManager) Parse(encodedToken string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(encodedToken, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid || claims.ID == "" || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
