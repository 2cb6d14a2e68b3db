package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/pkg/response"
)

type auditService interface {
	Enabled() bool
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, error)
}

// AuditHandler exposes the admin action journal.
type AuditHandler struct {
	service auditService
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(svc auditService) *AuditHandler {
	return &AuditHandler{service: svc}
}

// List godoc
// @Summary Recent admin actions
// @Tags Audit
// @Produce json
// @Param session_id query string false "Session filter"
// @Param action query string false "Action filter"
// @Param limit query int false "Max entries (default 100, max 500)"
// @Success 200 {object} response.Envelope
// @Router /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter := models.AuditFilter{
		SessionID: c.Query("session_id"),
		Action:    c.Query("action"),
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}
	entries, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, map[string]interface{}{"enabled": h.service.Enabled()})
}
