package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/weilunc/clipread/internal/badge"
	"github.com/weilunc/clipread/internal/devtool"
	"github.com/weilunc/clipread/internal/pkg/response"
)

// TargetLister is the slice of the devtool client the status surface uses.
type TargetLister interface {
	ListTargets(ctx context.Context) ([]devtool.TargetInfo, error)
	Attached(targetID string) bool
}

type StatusHandler struct {
	badges  *badge.Registry
	targets TargetLister
}

func NewStatusHandler(badges *badge.Registry, targets TargetLister) *StatusHandler {
	return &StatusHandler{badges: badges, targets: targets}
}

// Badge reports the transient capture indicator for one page target. An
// unset badge answers empty text so the surface clears its indicator.
func (h *StatusHandler) Badge(c *gin.Context) {
	state, ok := h.badges.Get(c.Param("targetId"))
	if !ok {
		response.Success(c, badge.State{})
		return
	}
	response.Success(c, state)
}

type targetView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Attached bool   `json:"attached"`
}

// Targets lists the debuggable page targets and whether a capture session is
// currently attached to each.
func (h *StatusHandler) Targets(c *gin.Context) {
	targets, err := h.targets.ListTargets(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	out := make([]targetView, 0, len(targets))
	for _, t := range targets {
		out = append(out, targetView{
			ID:       t.ID,
			Title:    t.Title,
			URL:      t.URL,
			Attached: h.targets.Attached(t.ID),
		})
	}
	response.Success(c, out)
}
