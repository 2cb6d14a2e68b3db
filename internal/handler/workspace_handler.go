package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Karama2000/kara-app-sub001/internal/cascade"
	"github.com/Karama2000/kara-app-sub001/internal/listing"
	"github.com/Karama2000/kara-app-sub001/internal/service"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	"github.com/Karama2000/kara-app-sub001/pkg/response"
)

// ConfirmTokenHeader carries the delete confirmation token.
const ConfirmTokenHeader = "X-Confirm-Token"

type workspaceService interface {
	Cascade(ctx context.Context, sess *session.Session, name string) (cascade.Snapshot, error)
	SelectCascade(ctx context.Context, sess *session.Session, name, level, id string) (cascade.Snapshot, error)
	Table(ctx context.Context, sess *session.Session, name string) (listing.View, error)
	RefreshTable(ctx context.Context, sess *session.Session, name string) (listing.View, error)
	FilterTable(ctx context.Context, sess *session.Session, name string, req service.TableFilterRequest) (listing.View, error)
	RequestRowDelete(ctx context.Context, sess *session.Session, name, id string) (*service.DeleteConfirmation, error)
	ConfirmRowDelete(ctx context.Context, sess *session.Session, name, id, token string) (listing.View, error)
}

// SelectRequest selects an option of a cascade level. An empty id clears it.
type SelectRequest struct {
	ID string `json:"id"`
}

// WorkspaceHandler serves the cascading selectors and list tables of a session.
type WorkspaceHandler struct {
	service workspaceService
}

// NewWorkspaceHandler constructs the handler.
func NewWorkspaceHandler(svc workspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{service: svc}
}

// Cascade godoc
// @Summary Cascade state
// @Description Returns the levels of a dependent selector chain, loading its root on first use.
// @Tags Workspace
// @Produce json
// @Param name path string true "Cascade name (classes, unites, enfant-1..4)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /cascades/{name} [get]
func (h *WorkspaceHandler) Cascade(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	snap, err := h.service.Cascade(c.Request.Context(), sess, c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snap)
}

// Select godoc
// @Summary Select a cascade option
// @Description Selecting a level clears every level below it and loads the next one.
// @Tags Workspace
// @Accept json
// @Produce json
// @Param name path string true "Cascade name"
// @Param level path string true "Level name"
// @Param payload body SelectRequest true "Selected id"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cascades/{name}/levels/{level} [put]
func (h *WorkspaceHandler) Select(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req SelectRequest
	if !bindJSON(c, &req) {
		return
	}
	snap, err := h.service.SelectCascade(c.Request.Context(), sess, c.Param("name"), c.Param("level"), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snap)
}

// Table godoc
// @Summary Table view
// @Tags Workspace
// @Produce json
// @Param name path string true "Table name"
// @Success 200 {object} response.Envelope
// @Router /tables/{name} [get]
func (h *WorkspaceHandler) Table(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	view, err := h.service.Table(c.Request.Context(), sess, c.Param("name"))
	h.respondView(c, view, err)
}

// Refresh godoc
// @Summary Re-fetch a table
// @Tags Workspace
// @Produce json
// @Param name path string true "Table name"
// @Success 200 {object} response.Envelope
// @Router /tables/{name}/refresh [post]
func (h *WorkspaceHandler) Refresh(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	view, err := h.service.RefreshTable(c.Request.Context(), sess, c.Param("name"))
	h.respondView(c, view, err)
}

// Filter godoc
// @Summary Filter a table
// @Description Search and field filters apply locally; server filters re-fetch.
// @Tags Workspace
// @Accept json
// @Produce json
// @Param name path string true "Table name"
// @Param payload body service.TableFilterRequest true "Filters"
// @Success 200 {object} response.Envelope
// @Router /tables/{name}/filters [put]
func (h *WorkspaceHandler) Filter(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req service.TableFilterRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.FilterTable(c.Request.Context(), sess, c.Param("name"), req)
	h.respondView(c, view, err)
}

// RequestDelete godoc
// @Summary Ask to delete a row
// @Description Returns the confirmation token required by the delete.
// @Tags Workspace
// @Produce json
// @Param name path string true "Table name"
// @Param id path string true "Row id"
// @Success 200 {object} response.Envelope
// @Router /tables/{name}/rows/{id}/delete-request [post]
func (h *WorkspaceHandler) RequestDelete(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	confirmation, err := h.service.RequestRowDelete(c.Request.Context(), sess, c.Param("name"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, confirmation)
}

// ConfirmDelete godoc
// @Summary Delete a row
// @Description Requires the token from delete-request in the X-Confirm-Token header or the confirm query parameter.
// @Tags Workspace
// @Produce json
// @Param name path string true "Table name"
// @Param id path string true "Row id"
// @Param confirm query string false "Confirmation token"
// @Success 200 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /tables/{name}/rows/{id} [delete]
func (h *WorkspaceHandler) ConfirmDelete(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	token := c.GetHeader(ConfirmTokenHeader)
	if token == "" {
		token = c.Query("confirm")
	}
	view, err := h.service.ConfirmRowDelete(c.Request.Context(), sess, c.Param("name"), c.Param("id"), token)
	h.respondView(c, view, err)
}

func (h *WorkspaceHandler) respondView(c *gin.Context, view listing.View, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, withMeta(c, nil))
}
