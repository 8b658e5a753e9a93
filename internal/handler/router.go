package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Capture   *CaptureHandler
	Reader    *ReaderHandler
	Chat      *ChatHandler
	Settings  *SettingsHandler
	Languages *LanguageHandler
	Status    *StatusHandler
	Files     *FileHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/capture", deps.Capture.Dispatch)

	api.GET("/reader/:id", deps.Reader.Open)
	api.POST("/reader/:id/paragraphs/:index/translate", deps.Reader.Translate)
	api.PUT("/reader/:id/language", deps.Reader.SetLanguage)
	api.POST("/reader/:id/translate-all", deps.Reader.TranslateAll)
	api.POST("/reader/:id/export", deps.Reader.Export)

	api.POST("/chat/sessions", deps.Chat.Create)
	api.GET("/chat/sessions/:id", deps.Chat.Get)
	api.DELETE("/chat/sessions/:id", deps.Chat.Delete)
	api.POST("/chat/sessions/:id/messages", deps.Chat.Send)
	api.POST("/chat/sessions/:id/images", deps.Chat.StageImage)
	api.POST("/chat/sessions/:id/document", deps.Chat.StageDocument)
	api.DELETE("/chat/sessions/:id/images/:index", deps.Chat.RemoveImage)
	api.DELETE("/chat/sessions/:id/document", deps.Chat.RemoveDocument)
	api.DELETE("/chat/sessions/:id/staged", deps.Chat.ClearStaged)
	api.GET("/chat/presets", deps.Chat.Presets)

	api.GET("/settings", deps.Settings.Get)
	api.PUT("/settings", deps.Settings.Update)

	api.GET("/languages", deps.Languages.Options)

	api.GET("/targets", deps.Status.Targets)
	api.GET("/targets/:targetId/badge", deps.Status.Badge)

	api.GET("/files/:key", deps.Files.Get)
}
