package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weilunc/clipread/internal/service"
)

type FileHandler struct {
	reader *service.ReaderService
}

func NewFileHandler(reader *service.ReaderService) *FileHandler {
	return &FileHandler{reader: reader}
}

// Get streams an archived export as a plain-text download.
func (h *FileHandler) Get(c *gin.Context) {
	key := c.Param("key")
	r, err := h.reader.OpenExport(c.Request.Context(), key)
	if err != nil {
		handleError(c, err)
		return
	}
	defer r.Close()
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+key+`"`)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, r)
}
