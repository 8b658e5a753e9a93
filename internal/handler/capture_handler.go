package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weilunc/clipread/internal/model"
	"github.com/weilunc/clipread/internal/pkg/response"
	"github.com/weilunc/clipread/internal/service"
)

type CaptureHandler struct {
	capture *service.CaptureService
}

func NewCaptureHandler(capture *service.CaptureService) *CaptureHandler {
	return &CaptureHandler{capture: capture}
}

// Dispatch accepts one tagged capture request and answers with the handoff
// reference the reader surface opens.
func (h *CaptureHandler) Dispatch(c *gin.Context) {
	var req model.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	ref, err := h.capture.Dispatch(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, ref)
}
