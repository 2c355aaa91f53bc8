package handlers

import (
	"net/http"

	"tourmate-backend/internal/middleware"
	"tourmate-backend/internal/models"
	"tourmate-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CreateAlert raises an SOS and answers with everything a responder needs.
func (h *Handler) CreateAlert(c *gin.Context) {
	var input models.CreateAlertInput
	if err := c.ShouldBind(&input); err != nil {
		utils.HandleError(c, h.Logger, utils.TranslateBindError(err))
		return
	}

	alert, err := h.Alerts.CreateAlert(c.Request.Context(), middleware.CurrentUser(c).ID, input)
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "SOS alert sent. Help is on the way.", gin.H{"alert": alertJSON(alert)})
}

func (h *Handler) AlertHistory(c *gin.Context) {
	alerts, err := h.Alerts.ListHistory(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}

	data := make([]alertResponse, 0, len(alerts))
	for i := range alerts {
		data = append(data, alertJSON(&alerts[i]))
	}
	utils.APIResponse(c, http.StatusOK, true, "SOS history.", data)
}
