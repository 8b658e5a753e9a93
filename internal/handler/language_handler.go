package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weilunc/clipread/internal/locale"
	"github.com/weilunc/clipread/internal/pkg/response"
	"github.com/weilunc/clipread/internal/service"
)

type LanguageHandler struct {
	settings *service.SettingsService
	uiLocale string
}

func NewLanguageHandler(settings *service.SettingsService, uiLocale string) *LanguageHandler {
	return &LanguageHandler{settings: settings, uiLocale: uiLocale}
}

// Options answers the option list for one of the three selector kinds plus
// the effective display language the selection resolves to.
func (h *LanguageHandler) Options(c *gin.Context) {
	kind := locale.SelectorKind(c.DefaultQuery("kind", string(locale.SelectorTarget)))
	switch kind {
	case locale.SelectorTarget, locale.SelectorSource, locale.SelectorDisplay:
	default:
		response.Error(c, http.StatusBadRequest, "unknown selector kind")
		return
	}
	settings, err := h.settings.Load(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"options":       locale.SelectorOptions(kind, settings.DisplayLanguage, h.uiLocale, settings.PrefLangA, settings.PrefLangB),
		"effectiveCode": locale.EffectiveCode(settings.DisplayLanguage, h.uiLocale),
		"effectiveName": locale.EffectiveName(settings.DisplayLanguage, h.uiLocale),
	})
}
