package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/weilunc/clipread/internal/pkg/response"
	"github.com/weilunc/clipread/internal/service"
)

type ReaderHandler struct {
	reader *service.ReaderService
}

func NewReaderHandler(reader *service.ReaderService) *ReaderHandler {
	return &ReaderHandler{reader: reader}
}

func (h *ReaderHandler) Open(c *gin.Context) {
	view, err := h.reader.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, view)
}

// Translate toggles the translation of one paragraph.
func (h *ReaderHandler) Translate(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid paragraph index")
		return
	}
	view, err := h.reader.Translate(c.Request.Context(), c.Param("id"), idx)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, view)
}

type readerLanguageRequest struct {
	TargetLang string `json:"targetLang"`
}

func (h *ReaderHandler) SetLanguage(c *gin.Context) {
	var req readerLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	view, err := h.reader.SetTargetLanguage(c.Param("id"), req.TargetLang)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, view)
}

type readerTranslateAllRequest struct {
	TargetLang string `json:"targetLang"`
}

func (h *ReaderHandler) TranslateAll(c *gin.Context) {
	var req readerTranslateAllRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	text, err := h.reader.TranslateAll(c.Request.Context(), c.Param("id"), req.TargetLang)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"text": text})
}

func (h *ReaderHandler) Export(c *gin.Context) {
	key, content, err := h.reader.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"key":     key,
		"url":     "/api/v1/files/" + key,
		"content": content,
	})
}
