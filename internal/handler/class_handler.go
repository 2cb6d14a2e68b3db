package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/service"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	"github.com/Karama2000/kara-app-sub001/pkg/response"
)

type classService interface {
	Get(ctx context.Context, id string) (*models.Class, error)
	Update(ctx context.Context, sess *session.Session, id string, input models.UpdateClassInput) (*models.Class, error)
	SetPassStatus(ctx context.Context, sess *session.Session, studentID string, hasPassed bool) error
	ExportRoster(ctx context.Context, classID, format string) (*service.ExportFile, error)
}

// PassRequest promotes or holds back a student.
type PassRequest struct {
	HasPassed *bool `json:"hasPassed" binding:"required"`
}

// ClassHandler exposes class editing and roster export.
type ClassHandler struct {
	service classService
}

// NewClassHandler constructs the handler.
func NewClassHandler(svc classService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// Get godoc
// @Summary Get class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body models.UpdateClassInput true "Class payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var input models.UpdateClassInput
	if !bindJSON(c, &input) {
		return
	}
	class, err := h.service.Update(c.Request.Context(), sess, c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}

// Pass godoc
// @Summary Set student pass status
// @Tags Classes
// @Accept json
// @Param id path string true "Student ID"
// @Param payload body PassRequest true "Pass status"
// @Success 204
// @Router /classes/students/{id}/pass [post]
func (h *ClassHandler) Pass(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req PassRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.SetPassStatus(c.Request.Context(), sess, c.Param("id"), *req.HasPassed); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export class roster
// @Tags Classes
// @Produce text/csv,application/pdf
// @Param id path string true "Class ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /classes/{id}/students/export [get]
func (h *ClassHandler) Export(c *gin.Context) {
	file, err := h.service.ExportRoster(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
