package handlers

import (
	"net/http"

	"tourmate-backend/internal/middleware"
	"tourmate-backend/internal/models"
	"tourmate-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Register creates an account and returns the profile with a token pair.
func (h *Handler) Register(c *gin.Context) {
	var input models.RegisterInput
	if err := c.ShouldBind(&input); err != nil {
		utils.HandleError(c, h.Logger, utils.TranslateBindError(err))
		return
	}

	user, tokens, err := h.Auth.Register(c.Request.Context(), input)
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}

	utils.APIResponse(c, http.StatusCreated, true, "Account created successfully.", gin.H{
		"user":   h.profileJSON(c, user),
		"tokens": tokens,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		utils.HandleError(c, h.Logger, utils.TranslateBindError(err))
		return
	}

	user, tokens, err := h.Auth.Login(c.Request.Context(), input)
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Login successful.", gin.H{
		"user":   h.profileJSON(c, user),
		"tokens": tokens,
	})
}

// Logout blacklists the refresh token given in the body.
func (h *Handler) Logout(c *gin.Context) {
	var input models.RefreshInput
	if err := c.ShouldBind(&input); err != nil {
		utils.HandleError(c, h.Logger, utils.TranslateBindError(err))
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.Auth.Logout(c.Request.Context(), user.ID, input.Refresh); err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Logged out successfully.", nil)
}

// RefreshToken exchanges a refresh token for a new access token.
func (h *Handler) RefreshToken(c *gin.Context) {
	var input models.RefreshInput
	if err := c.ShouldBind(&input); err != nil {
		utils.HandleError(c, h.Logger, utils.TranslateBindError(err))
		return
	}

	access, err := h.Auth.Refresh(c.Request.Context(), input.Refresh)
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Token refreshed.", gin.H{"access": access})
}
