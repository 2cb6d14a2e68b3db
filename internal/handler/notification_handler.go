package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	"github.com/Karama2000/kara-app-sub001/pkg/response"
)

type notificationService interface {
	List(ctx context.Context) ([]models.Notification, error)
	MarkRead(ctx context.Context, sess *session.Session, id string) error
	MarkAllRead(ctx context.Context, sess *session.Session) error
	Delete(ctx context.Context, sess *session.Session, id string) error
	DeleteAll(ctx context.Context, sess *session.Session) error
	UnreadMessageCount(ctx context.Context) (int, error)
	ReceivedMessages(ctx context.Context) ([]models.Message, error)
}

// NotificationHandler serves notifications and the message counters.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(svc notificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	h.withSession(c, func(ctx context.Context, sess *session.Session) error {
		return h.service.MarkRead(ctx, sess, c.Param("id"))
	})
}

// MarkAllRead godoc
// @Summary Mark every notification read
// @Tags Notifications
// @Success 204
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	h.withSession(c, h.service.MarkAllRead)
}

// Delete godoc
// @Summary Delete a notification
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	h.withSession(c, func(ctx context.Context, sess *session.Session) error {
		return h.service.Delete(ctx, sess, c.Param("id"))
	})
}

// DeleteAll godoc
// @Summary Delete every notification
// @Tags Notifications
// @Success 204
// @Router /notifications [delete]
func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	h.withSession(c, h.service.DeleteAll)
}

// UnreadMessages godoc
// @Summary Unread message count
// @Tags Messages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/unread-count [get]
func (h *NotificationHandler) UnreadMessages(c *gin.Context) {
	count, err := h.service.UnreadMessageCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count})
}

// ReceivedMessages godoc
// @Summary Received messages
// @Tags Messages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/received [get]
func (h *NotificationHandler) ReceivedMessages(c *gin.Context) {
	messages, err := h.service.ReceivedMessages(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages)
}

func (h *NotificationHandler) withSession(c *gin.Context, fn func(context.Context, *session.Session) error) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), sess); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
