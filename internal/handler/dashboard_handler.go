package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Karama2000/kara-app-sub001/internal/service"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
	"github.com/Karama2000/kara-app-sub001/pkg/response"
)

type dashboardService interface {
	Dashboard(ctx context.Context, sess *session.Session) (*service.DashboardView, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get godoc
// @Summary Role dashboard
// @Description Counters and charts of the caller's role. Parent dashboards are refreshed in the background.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	view, err := h.service.Dashboard(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"refreshed_at": view.RefreshedAt}
	if view.Polled {
		meta["poll_interval_seconds"] = view.PollInterval
	}
	response.JSON(c, http.StatusOK, view, withMeta(c, meta))
}
