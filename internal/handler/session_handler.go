package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Karama2000/kara-app-sub001/internal/middleware"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	"github.com/Karama2000/kara-app-sub001/pkg/config"
	"github.com/Karama2000/kara-app-sub001/pkg/response"
)

type sessionManager interface {
	Authenticate(ctx context.Context, creds session.Credentials) (*session.Session, error)
	Logout(ctx context.Context, id string) error
	SetDarkMode(ctx context.Context, id string, enabled bool) (*session.Session, error)
}

// PreferencesRequest updates display preferences.
type PreferencesRequest struct {
	DarkMode *bool `json:"darkMode" binding:"required"`
}

// SessionHandler opens and closes dashboard sessions.
type SessionHandler struct {
	manager sessionManager
	cfg     config.SessionConfig
	secure  bool
}

// NewSessionHandler constructs the handler. secure marks the cookie Secure.
func NewSessionHandler(manager sessionManager, cfg config.SessionConfig, secure bool) *SessionHandler {
	return &SessionHandler{manager: manager, cfg: cfg, secure: secure}
}

// Create godoc
// @Summary Open a session
// @Description Stores the token and profile returned by the backend login.
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body session.Credentials true "Backend login result"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /session [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var creds session.Credentials
	if !bindJSON(c, &creds) {
		return
	}

	sess, err := h.manager.Authenticate(c.Request.Context(), creds)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.ContextSessionKey, sess)
	h.setCookie(c, sess.ID, int(h.cfg.TTL.Seconds()))
	response.Created(c, sess)
}

// Get godoc
// @Summary Current session
// @Tags Session
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /session [get]
func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, sess)
}

// Delete godoc
// @Summary Log out
// @Tags Session
// @Success 204
// @Router /session [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	id := middleware.SessionID(c, h.cfg)
	if id != "" {
		if err := h.manager.Logout(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}
	}
	h.setCookie(c, "", -1)
	response.NoContent(c)
}

// Preferences godoc
// @Summary Update display preferences
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body PreferencesRequest true "Preferences"
// @Success 200 {object} response.Envelope
// @Router /session/preferences [patch]
func (h *SessionHandler) Preferences(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req PreferencesRequest
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.manager.SetDarkMode(c.Request.Context(), sess.ID, *req.DarkMode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

func (h *SessionHandler) setCookie(c *gin.Context, value string, maxAge int) {
	if h.cfg.CookieName == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, value, maxAge, "/", "", h.secure, true)
}
