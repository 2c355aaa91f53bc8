package handlers

import (
	"net/http"

	"tourmate-backend/internal/services"
	"tourmate-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

type adminUserResponse struct {
	profileResponse
	IsActive bool `json:"is_active"`
	IsStaff  bool `json:"is_staff"`
}

type adminPhotoResponse struct {
	photoResponse
	UserID   uint64 `json:"user_id"`
	UserName string `json:"user_name"`
}

type adminAlertResponse struct {
	alertResponse
	UserID uint64 `json:"user_id"`
}

// GetDashboardStats gives staff a count of users, photos and alerts per status.
func (h *Handler) GetDashboardStats(c *gin.Context) {
	stats, err := h.Admin.DashboardStats(c.Request.Context())
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Dashboard stats.", stats)
}

// GetAllUsers lists accounts. Query: search, blood_group, is_active, is_staff.
func (h *Handler) GetAllUsers(c *gin.Context) {
	errs := utils.FieldErrors{}
	filter := services.UserFilter{
		Search:     c.Query("search"),
		BloodGroup: c.Query("blood_group"),
		IsActive:   queryBool(c, "is_active", errs),
		IsStaff:    queryBool(c, "is_staff", errs),
	}
	if err := errs.Err(); err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}

	users, err := h.Admin.ListUsers(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}

	data := make([]adminUserResponse, 0, len(users))
	for i := range users {
		data = append(data, adminUserResponse{
			profileResponse: h.profileJSON(c, &users[i]),
			IsActive:        users[i].IsActive,
			IsStaff:         users[i].IsStaff,
		})
	}
	utils.APIResponse(c, http.StatusOK, true, "All users.", data)
}

// GetAllAlerts lists the SOS alerts of every user. Query: status, search.
func (h *Handler) GetAllAlerts(c *gin.Context) {
	alerts, err := h.Admin.ListAlerts(c.Request.Context(), services.AlertFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}

	data := make([]adminAlertResponse, 0, len(alerts))
	for i := range alerts {
		data = append(data, adminAlertResponse{alertResponse: alertJSON(&alerts[i]), UserID: alerts[i].UserID})
	}
	utils.APIResponse(c, http.StatusOK, true, "All SOS alerts.", data)
}

// GetAllPhotos lists diary entries of every user. Query: search, user_id.
func (h *Handler) GetAllPhotos(c *gin.Context) {
	filter := services.PhotoFilter{Search: c.Query("search")}
	if raw := c.Query("user_id"); raw != "" {
		id, ok := utils.ParseID(raw)
		if !ok {
			utils.HandleError(c, h.Logger, utils.ValidationError("user_id", "A valid integer is required."))
			return
		}
		filter.UserID = id
	}

	photos, err := h.Admin.ListPhotos(c.Request.Context(), filter)
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}

	data := make([]adminPhotoResponse, 0, len(photos))
	for i := range photos {
		resp := adminPhotoResponse{photoResponse: h.photoJSON(c, &photos[i]), UserID: photos[i].UserID}
		if photos[i].User != nil {
			resp.UserName = photos[i].User.FullName
		}
		data = append(data, resp)
	}
	utils.APIResponse(c, http.StatusOK, true, "All photos.", data)
}

// queryBool reads an optional true/false query parameter.
func queryBool(c *gin.Context, key string, errs utils.FieldErrors) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	val, err := cast.ToBoolE(raw)
	if err != nil {
		errs.Add(key, "Must be a valid boolean.")
		return nil
	}
	return &val
}
