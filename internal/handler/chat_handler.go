package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/weilunc/clipread/internal/pkg/response"
	"github.com/weilunc/clipread/internal/service"
)

type ChatHandler struct {
	chat     *service.ChatService
	settings *service.SettingsService
}

func NewChatHandler(chat *service.ChatService, settings *service.SettingsService) *ChatHandler {
	return &ChatHandler{chat: chat, settings: settings}
}

type chatCreateRequest struct {
	Model string `json:"model"`
}

func (h *ChatHandler) Create(c *gin.Context) {
	var req chatCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	view, err := h.chat.NewSession(c.Request.Context(), req.Model)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *ChatHandler) Delete(c *gin.Context) {
	if err := h.chat.Delete(c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *ChatHandler) Get(c *gin.Context) {
	view, turns, err := h.chat.History(c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"session": view, "turns": turns})
}

type chatSendRequest struct {
	Text string `json:"text"`
}

func (h *ChatHandler) Send(c *gin.Context) {
	var req chatSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	reply, err := h.chat.Send(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, reply)
}

func (h *ChatHandler) StageImage(c *gin.Context) {
	var att service.Attachment
	if err := c.ShouldBindJSON(&att); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	view, err := h.chat.StageImage(c.Param("id"), att)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *ChatHandler) StageDocument(c *gin.Context) {
	var att service.Attachment
	if err := c.ShouldBindJSON(&att); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	view, err := h.chat.StageDocument(c.Param("id"), att)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *ChatHandler) RemoveImage(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid image index")
		return
	}
	view, err := h.chat.RemoveStagedImage(c.Param("id"), idx)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *ChatHandler) RemoveDocument(c *gin.Context) {
	view, err := h.chat.RemoveStagedDocument(c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *ChatHandler) ClearStaged(c *gin.Context) {
	view, err := h.chat.ClearStaged(c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, view)
}

// Presets lists the quick-prompt slots; empty slots stay in the map so the
// surface can render disabled buttons.
func (h *ChatHandler) Presets(c *gin.Context) {
	settings, err := h.settings.Load(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, settings.Presets())
}
