package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/session"
)

type notificationBackend interface {
	Notifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
	DeleteAllNotifications(ctx context.Context) error
	UnreadMessageCount(ctx context.Context) (int, error)
	ReceivedMessages(ctx context.Context) ([]models.Message, error)
}

// NotificationService manages the notification centre and the inbox summary.
type NotificationService struct {
	api        notificationBackend
	workspaces *WorkspaceService
	logger     *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(api notificationBackend, workspaces *WorkspaceService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{api: api, workspaces: workspaces, logger: logger}
}

// List fetches the notifications.
func (s *NotificationService) List(ctx context.Context) ([]models.Notification, error) {
	return s.api.Notifications(ctx)
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, sess *session.Session, id string) error {
	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	if ws, ok := s.workspaces.Lookup(sess.ID); ok {
		if n, found := ws.Notifications.Find(id); found {
			n.Read = true
			ws.Notifications.Replace(n)
		}
	}
	return nil
}

// MarkAllRead flags every notification as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, sess *session.Session) error {
	if err := s.api.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	if ws, ok := s.workspaces.Lookup(sess.ID); ok {
		items := ws.Notifications.Items()
		for i := range items {
			items[i].Read = true
		}
		ws.Notifications.Set(items)
	}
	return nil
}

// Delete removes one notification.
func (s *NotificationService) Delete(ctx context.Context, sess *session.Session, id string) error {
	if err := s.api.DeleteNotification(ctx, id); err != nil {
		return err
	}
	if ws, ok := s.workspaces.Lookup(sess.ID); ok {
		ws.Notifications.Remove(id)
	}
	return nil
}

// DeleteAll clears the notification list.
func (s *NotificationService) DeleteAll(ctx context.Context, sess *session.Session) error {
	if err := s.api.DeleteAllNotifications(ctx); err != nil {
		return err
	}
	if ws, ok := s.workspaces.Lookup(sess.ID); ok {
		ws.Notifications.Set([]models.Notification{})
	}
	return nil
}

// UnreadMessageCount returns the number of unread messages.
func (s *NotificationService) UnreadMessageCount(ctx context.Context) (int, error) {
	return s.api.UnreadMessageCount(ctx)
}

// ReceivedMessages lists the inbox.
func (s *NotificationService) ReceivedMessages(ctx context.Context) ([]models.Message, error) {
	return s.api.ReceivedMessages(ctx)
}
