package service

import (
	"context"
	"sync"

	"github.com/Karama2000/kara-app-sub001/internal/backend"
	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
)

// fakeGateway stands in for the remote API across the service tests.
type fakeGateway struct {
	mu sync.Mutex

	levels        []models.Level
	classes       map[string][]models.Class
	students      map[string][]models.Student
	users         []models.User
	pending       []models.User
	notifications []models.Notification
	programs      []models.Program
	units         []models.Unit
	lessons       []models.Lesson
	counts        map[string]int
	countErr      map[string]error
	deleteErr     error
	levelsErr     []error

	calls     []string
	userForms []backend.Multipart
	passes    []models.PassInput
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		levels: []models.Level{{ID: "cp1", Nom: "CP1"}, {ID: "ce1", Nom: "CE1"}},
		classes: map[string][]models.Class{
			"cp1": {{ID: "c1", Nom: "CP1-A", Niveau: models.Ref{ID: "cp1"}}},
			"ce1": {{ID: "c2", Nom: "CE1-A", Niveau: models.Ref{ID: "ce1"}}, {ID: "c3", Nom: "CE1-B", Niveau: models.Ref{ID: "ce1"}}},
		},
		students: map[string][]models.Student{
			"c1": {
				{ID: "e1", Nom: "Diallo", Prenom: "Awa", NumInscription: "2024-001"},
				{ID: "e2", Nom: "Martin", Prenom: "Léo", NumInscription: "2024-002"},
			},
		},
		users: []models.User{
			{ID: "u1", Nom: "Ben Salah", Prenom: "Karim", Role: models.RoleTeacher, Status: models.StatusApproved},
			{ID: "u2", Nom: "Traoré", Prenom: "Fatou", Role: models.RoleParent, Status: models.StatusPending},
		},
		pending: []models.User{
			{ID: "u2", Nom: "Traoré", Prenom: "Fatou", Role: models.RoleParent, Status: models.StatusPending},
		},
		notifications: []models.Notification{{ID: "n1", Message: "Nouvelle leçon"}, {ID: "n2", Message: "Résultat disponible", Read: true}},
		programs:      []models.Program{{ID: "p1", Title: "Mathématiques"}, {ID: "p2", Title: "Français"}},
		units: []models.Unit{
			{ID: "un1", Title: "Nombres", Program: models.Ref{ID: "p1"}},
			{ID: "un2", Title: "Lecture", Program: models.Ref{ID: "p2"}},
		},
		counts:   map[string]int{},
		countErr: map[string]error{},
	}
}

func (f *fakeGateway) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGateway) Levels(ctx context.Context) ([]models.Level, error) {
	f.record("levels")
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.levelsErr) > 0 {
		err := f.levelsErr[0]
		f.levelsErr = f.levelsErr[1:]
		return nil, err
	}
	return f.levels, nil
}

func (f *fakeGateway) ClassesByLevel(ctx context.Context, levelID string) ([]models.Class, error) {
	f.record("classes:" + levelID)
	return f.classes[levelID], nil
}

func (f *fakeGateway) Class(ctx context.Context, id string) (*models.Class, error) {
	f.record("class:" + id)
	for _, list := range f.classes {
		for _, c := range list {
			if c.ID == id {
				return &c, nil
			}
		}
	}
	return nil, appErrors.Clone(appErrors.ErrBackendRejected, "Classe introuvable")
}

func (f *fakeGateway) ClassStudents(ctx context.Context, classID string) ([]models.Student, error) {
	f.record("students:" + classID)
	return f.students[classID], nil
}

func (f *fakeGateway) UpdateClass(ctx context.Context, id string, input models.UpdateClassInput) (*models.Class, error) {
	f.record("update-class:" + id)
	return &models.Class{ID: id, Nom: input.Nom, Niveau: models.Ref{ID: input.Niveau}}, nil
}

func (f *fakeGateway) DeleteClass(ctx context.Context, id string) error {
	f.record("delete-class:" + id)
	return f.deleteErr
}

func (f *fakeGateway) SetPassStatus(ctx context.Context, input models.PassInput) error {
	f.record("pass:" + input.EleveID)
	f.mu.Lock()
	f.passes = append(f.passes, input)
	f.mu.Unlock()
	return nil
}

func (f *fakeGateway) Users(ctx context.Context) ([]models.User, error) {
	f.record("users")
	return f.users, nil
}

func (f *fakeGateway) User(ctx context.Context, id string) (*models.User, error) {
	f.record("user:" + id)
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrBackendRejected, "Utilisateur introuvable")
}

func (f *fakeGateway) CreateUser(ctx context.Context, form backend.Multipart) (*models.User, error) {
	f.record("create-user")
	f.mu.Lock()
	f.userForms = append(f.userForms, form)
	f.mu.Unlock()
	return &models.User{ID: "u-new", Nom: form.Fields["nom"], Prenom: form.Fields["prenom"], Role: models.UserRole(form.Fields["role"])}, nil
}

func (f *fakeGateway) UpdateUser(ctx context.Context, id string, form backend.Multipart) (*models.User, error) {
	f.record("update-user:" + id)
	f.mu.Lock()
	f.userForms = append(f.userForms, form)
	f.mu.Unlock()
	return &models.User{ID: id, Nom: form.Fields["nom"], Prenom: form.Fields["prenom"], Role: models.UserRole(form.Fields["role"])}, nil
}

func (f *fakeGateway) DeleteUser(ctx context.Context, id string) error {
	f.record("delete-user:" + id)
	return f.deleteErr
}

func (f *fakeGateway) PendingUsers(ctx context.Context) ([]models.User, error) {
	f.record("pending-users")
	return f.pending, nil
}

func (f *fakeGateway) ApproveUser(ctx context.Context, id string) error {
	f.record("approve:" + id)
	return nil
}

func (f *fakeGateway) RejectUser(ctx context.Context, id string) error {
	f.record("reject:" + id)
	return nil
}

func (f *fakeGateway) Programs(ctx context.Context, role models.UserRole) ([]models.Program, error) {
	f.record("programs:" + string(role))
	return f.programs, nil
}

func (f *fakeGateway) Units(ctx context.Context) ([]models.Unit, error) {
	f.record("units")
	return f.units, nil
}

func (f *fakeGateway) Lessons(ctx context.Context) ([]models.Lesson, error) {
	f.record("lessons")
	return f.lessons, nil
}

func (f *fakeGateway) CreateLesson(ctx context.Context, form backend.Multipart) (*models.Lesson, error) {
	f.record("create-lesson")
	return &models.Lesson{ID: "l-new", Title: form.Fields["title"]}, nil
}

func (f *fakeGateway) UpdateLesson(ctx context.Context, id string, form backend.Multipart) (*models.Lesson, error) {
	f.record("update-lesson:" + id)
	return &models.Lesson{ID: id, Title: form.Fields["title"]}, nil
}

func (f *fakeGateway) DeleteLesson(ctx context.Context, id string) error {
	f.record("delete-lesson:" + id)
	return f.deleteErr
}

func (f *fakeGateway) CreateTest(ctx context.Context, form backend.Multipart) (*models.Test, error) {
	f.record("create-test")
	return &models.Test{ID: "t-new", Title: form.Fields["title"]}, nil
}

func (f *fakeGateway) UpdateTest(ctx context.Context, id string, form backend.Multipart) (*models.Test, error) {
	f.record("update-test:" + id)
	return &models.Test{ID: id, Title: form.Fields["title"]}, nil
}

func (f *fakeGateway) DeleteTest(ctx context.Context, id string) error {
	f.record("delete-test:" + id)
	return f.deleteErr
}

func (f *fakeGateway) Notifications(ctx context.Context) ([]models.Notification, error) {
	f.record("notifications")
	return f.notifications, nil
}

func (f *fakeGateway) MarkNotificationRead(ctx context.Context, id string) error {
	f.record("read:" + id)
	return nil
}

func (f *fakeGateway) MarkAllNotificationsRead(ctx context.Context) error {
	f.record("read-all")
	return nil
}

func (f *fakeGateway) DeleteNotification(ctx context.Context, id string) error {
	f.record("delete-notification:" + id)
	return f.deleteErr
}

func (f *fakeGateway) DeleteAllNotifications(ctx context.Context) error {
	f.record("delete-notifications")
	return nil
}

func (f *fakeGateway) UnreadMessageCount(ctx context.Context) (int, error) {
	return f.Count(ctx, "/api/messages/unread-count")
}

func (f *fakeGateway) ReceivedMessages(ctx context.Context) ([]models.Message, error) {
	f.record("messages")
	return []models.Message{{ID: "m1", Subject: "Réunion"}}, nil
}

func (f *fakeGateway) ParentChildren(ctx context.Context) ([]models.Student, error) {
	f.record("children")
	return f.students["c1"], nil
}

func (f *fakeGateway) ParentProgress(ctx context.Context) ([]models.Progress, error) {
	f.record("progress")
	return []models.Progress{{ID: "pr1"}}, nil
}

func (f *fakeGateway) ClearParentProgress(ctx context.Context) error {
	f.record("clear-progress")
	return nil
}

func (f *fakeGateway) Count(ctx context.Context, path string) (int, error) {
	f.record("count:" + path)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.countErr[path]; err != nil {
		return 0, err
	}
	return f.counts[path], nil
}

func adminSession() *session.Session {
	return &session.Session{ID: "s-admin", State: session.StateAuthenticated, Token: "tok", Nom: "Diallo", Prenom: "Awa", Role: models.RoleAdmin}
}

func sessionFor(id string, role models.UserRole) *session.Session {
	return &session.Session{ID: id, State: session.StateAuthenticated, Token: "tok-" + id, Role: role}
}
