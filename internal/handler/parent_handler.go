package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/pkg/response"
)

type parentService interface {
	Children(ctx context.Context) ([]models.Student, error)
	Progress(ctx context.Context) ([]models.Progress, error)
	ClearProgress(ctx context.Context) error
}

// ParentHandler serves the parent space.
type ParentHandler struct {
	service parentService
}

// NewParentHandler constructs the handler.
func NewParentHandler(svc parentService) *ParentHandler {
	return &ParentHandler{service: svc}
}

// Children godoc
// @Summary Parent's children
// @Tags Parent
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /parent/children [get]
func (h *ParentHandler) Children(c *gin.Context) {
	children, err := h.service.Children(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, children)
}

// Progress godoc
// @Summary Children progress
// @Tags Parent
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /parent/progress [get]
func (h *ParentHandler) Progress(c *gin.Context) {
	progress, err := h.service.Progress(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress)
}

// ClearProgress godoc
// @Summary Clear progress history
// @Tags Parent
// @Success 204
// @Router /parent/progress [delete]
func (h *ParentHandler) ClearProgress(c *gin.Context) {
	if err := h.service.ClearProgress(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
