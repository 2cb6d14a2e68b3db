package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Karama2000/kara-app-sub001/internal/models"
)

func escape(id string) string {
	return url.PathEscape(id)
}

// Levels lists every niveau.
func (c *Client) Levels(ctx context.Context) ([]models.Level, error) {
	var levels []models.Level
	if err := c.getJSON(ctx, "/api/niveaux", &levels); err != nil {
		return nil, err
	}
	return levels, nil
}

// ClassesByLevel lists the classes of one level.
func (c *Client) ClassesByLevel(ctx context.Context, levelID string) ([]models.Class, error) {
	var classes []models.Class
	if err := c.getJSON(ctx, "/api/classes/niveau/"+escape(levelID), &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// Class fetches one class.
func (c *Client) Class(ctx context.Context, id string) (*models.Class, error) {
	var class models.Class
	if err := c.getJSON(ctx, "/api/classes/"+escape(id), &class); err != nil {
		return nil, err
	}
	return &class, nil
}

// ClassStudents lists the students enrolled in a class.
func (c *Client) ClassStudents(ctx context.Context, classID string) ([]models.Student, error) {
	var students []models.Student
	if err := c.getJSON(ctx, "/api/classes/"+escape(classID)+"/eleves", &students); err != nil {
		return nil, err
	}
	return students, nil
}

// UpdateClass edits a class.
func (c *Client) UpdateClass(ctx context.Context, id string, input models.UpdateClassInput) (*models.Class, error) {
	var class models.Class
	if err := c.sendJSON(ctx, http.MethodPut, "/api/classes/"+escape(id), input, &class); err != nil {
		return nil, err
	}
	if class.ID == "" {
		class = models.Class{ID: id, Nom: input.Nom, Niveau: models.Ref{ID: input.Niveau}}
	}
	return &class, nil
}

// DeleteClass removes a class.
func (c *Client) DeleteClass(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/classes/"+escape(id), nil, nil)
}

// SetPassStatus promotes or holds back a student.
func (c *Client) SetPassStatus(ctx context.Context, input models.PassInput) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/classes/eleve/pass", input, nil)
}

// Users lists every account.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.getJSON(ctx, "/api/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// User fetches one account.
func (c *Client) User(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, "/api/user/"+escape(id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser posts the multipart account form.
func (c *Client) CreateUser(ctx context.Context, form Multipart) (*models.User, error) {
	var user models.User
	if err := c.sendMultipart(ctx, http.MethodPost, "/api/users", form, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser sends the multipart account form for an existing account.
func (c *Client) UpdateUser(ctx context.Context, id string, form Multipart) (*models.User, error) {
	var user models.User
	if err := c.sendMultipart(ctx, http.MethodPut, "/api/user/"+escape(id), form, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/user/"+escape(id), nil, nil)
}

// PendingUsers lists accounts awaiting approval.
func (c *Client) PendingUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.getJSON(ctx, "/api/pending-users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ApproveUser accepts a pending account.
func (c *Client) ApproveUser(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodPut, "/api/approve-user/"+escape(id), nil, nil)
}

// RejectUser refuses a pending account.
func (c *Client) RejectUser(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodPut, "/api/reject-user/"+escape(id), nil, nil)
}

// ProgramsPath is the programs collection visible to role.
func ProgramsPath(role models.UserRole) string {
	if role == models.RoleAdmin {
		return "/api/admin/programs"
	}
	return "/api/programs"
}

// Programs lists the programs visible to role.
func (c *Client) Programs(ctx context.Context, role models.UserRole) ([]models.Program, error) {
	var programs []models.Program
	if err := c.getJSON(ctx, ProgramsPath(role), &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// Units lists every unit.
func (c *Client) Units(ctx context.Context) ([]models.Unit, error) {
	var units []models.Unit
	if err := c.getJSON(ctx, "/api/units", &units); err != nil {
		return nil, err
	}
	return units, nil
}

// Lessons lists every lesson with its embedded tests.
func (c *Client) Lessons(ctx context.Context) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := c.getJSON(ctx, "/api/lessons", &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// CreateLesson posts the multipart lesson form.
func (c *Client) CreateLesson(ctx context.Context, form Multipart) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := c.sendMultipart(ctx, http.MethodPost, "/api/lessons", form, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// UpdateLesson sends the multipart lesson form for an existing lesson.
func (c *Client) UpdateLesson(ctx context.Context, id string, form Multipart) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := c.sendMultipart(ctx, http.MethodPut, "/api/lessons/"+escape(id), form, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// DeleteLesson removes a lesson. The backend is trusted to remove its tests too.
func (c *Client) DeleteLesson(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/lessons/"+escape(id), nil, nil)
}

// CreateTest posts the multipart test form.
func (c *Client) CreateTest(ctx context.Context, form Multipart) (*models.Test, error) {
	var test models.Test
	if err := c.sendMultipart(ctx, http.MethodPost, "/api/tests", form, &test); err != nil {
		return nil, err
	}
	return &test, nil
}

// UpdateTest sends the multipart test form for an existing test.
func (c *Client) UpdateTest(ctx context.Context, id string, form Multipart) (*models.Test, error) {
	var test models.Test
	if err := c.sendMultipart(ctx, http.MethodPut, "/api/tests/"+escape(id), form, &test); err != nil {
		return nil, err
	}
	return &test, nil
}

// DeleteTest removes a test.
func (c *Client) DeleteTest(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/tests/"+escape(id), nil, nil)
}

// Notifications lists the signed-in user's notifications.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := c.getJSON(ctx, "/api/notifications", &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead flags one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodPut, "/api/notifications/"+escape(id)+"/read", nil, nil)
}

// MarkAllNotificationsRead flags every notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodPut, "/api/notifications/read-all", nil, nil)
}

// DeleteNotification removes one notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/notifications/"+escape(id), nil, nil)
}

// DeleteAllNotifications clears the notification list.
func (c *Client) DeleteAllNotifications(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/notifications", nil, nil)
}

// UnreadMessageCount returns the number of unread messages.
func (c *Client) UnreadMessageCount(ctx context.Context) (int, error) {
	return c.Count(ctx, "/api/messages/unread-count")
}

// ReceivedMessages lists the signed-in user's inbox.
func (c *Client) ReceivedMessages(ctx context.Context) ([]models.Message, error) {
	var messages []models.Message
	if err := c.getJSON(ctx, "/api/messages/received", &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// ParentChildren lists the students linked to the signed-in parent.
func (c *Client) ParentChildren(ctx context.Context) ([]models.Student, error) {
	var children []models.Student
	if err := c.getJSON(ctx, "/api/parent/children", &children); err != nil {
		return nil, err
	}
	return children, nil
}

// ParentProgress lists the progress entries of the parent's children.
func (c *Client) ParentProgress(ctx context.Context) ([]models.Progress, error) {
	var progress []models.Progress
	if err := c.getJSON(ctx, "/api/parent/progress", &progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// ClearParentProgress deletes the progress history of the parent's children.
func (c *Client) ClearParentProgress(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/parent/progress", nil, nil)
}
