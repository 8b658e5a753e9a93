package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weilunc/clipread/internal/model"
	"github.com/weilunc/clipread/internal/pkg/response"
	"github.com/weilunc/clipread/internal/service"
)

type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.Load(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, settings)
}

// Update replaces the whole settings document, matching the options surface
// which always saves every field at once.
func (h *SettingsHandler) Update(c *gin.Context) {
	var settings model.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.settings.Save(c.Request.Context(), settings); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
