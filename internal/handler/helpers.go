package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/weilunc/clipread/internal/gemini"
	"github.com/weilunc/clipread/internal/pkg/errs"
	"github.com/weilunc/clipread/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))

	var apiErr *gemini.APIError
	var rejected *gemini.RejectedError
	var terminated *gemini.TerminatedError
	var network *gemini.NetworkError
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrBusy), errors.Is(err, errs.ErrTurnLimit):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrAttachmentLimit):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrCapture):
		response.Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, gemini.ErrNoAPIKey):
		response.Error(c, http.StatusBadRequest, "Gemini API key is not configured")
	case errors.As(err, &rejected):
		response.Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &apiErr), errors.As(err, &terminated), errors.As(err, &network),
		errors.Is(err, gemini.ErrMalformedResponse):
		response.Error(c, http.StatusBadGateway, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "internal error")
	}
}
