package middleware

import (
	"context"
	"net/http"
	"strings"

	"tourmate-backend/internal/models"
	"tourmate-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserKey   = "user"
	ContextUserIDKey = "userID"
)

// Authenticator resolves a bearer access token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, access string) (*models.User, error)
}

// AuthMiddleware rejects requests without a valid "Bearer <access token>" header
// and stores the authenticated user in the context.
func AuthMiddleware(auth Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Authentication credentials were not provided.", nil)
			c.Abort()
			return
		}

		// 2. Must be "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Authorization header must contain two space-delimited values.", nil)
			c.Abort()
			return
		}

		// 3. Token -> user
		user, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			utils.HandleError(c, logger, err)
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

// CurrentUser returns the user put in the context by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	if val, ok := c.Get(ContextUserKey); ok {
		if user, ok := val.(*models.User); ok {
			return user
		}
	}
	return nil
}

// StaffOnly lets through staff accounts only. It must run after AuthMiddleware.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsStaff {
			utils.APIResponse(c, http.StatusForbidden, false, "You do not have permission to perform this action.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
