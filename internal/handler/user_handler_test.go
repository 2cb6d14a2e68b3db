package handler

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/service"
	"github.com/Karama2000/kara-app-sub001/internal/session"
)

type fakeUserService struct {
	forms    []service.UserForm
	image    string
	approved []string
}

func (f *fakeUserService) Get(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (f *fakeUserService) Create(ctx context.Context, sess *session.Session, form service.UserForm) (*models.User, error) {
	f.forms = append(f.forms, form)
	if form.Image != nil {
		raw, _ := io.ReadAll(form.Image.Content)
		f.image = string(raw)
	}
	return &models.User{ID: "u-new", Nom: form.Nom, Role: form.Role}, nil
}

func (f *fakeUserService) Update(ctx context.Context, sess *session.Session, id string, form service.UserForm) (*models.User, error) {
	f.forms = append(f.forms, form)
	return &models.User{ID: id, Nom: form.Nom}, nil
}

func (f *fakeUserService) Approve(ctx context.Context, sess *session.Session, id string) error {
	f.approved = append(f.approved, id)
	return nil
}

func (f *fakeUserService) Reject(ctx context.Context, sess *session.Session, id string) error {
	return nil
}

func userRouter(svc *fakeUserService) http.Handler {
	h := NewUserHandler(svc)
	r := newEngine()
	r.Use(withSession(models.RoleAdmin))
	r.POST("/users", h.Create)
	r.PUT("/users/:id", h.Update)
	r.PUT("/users/:id/approve", h.Approve)
	return r
}

func TestUserCreateMultipart(t *testing.T) {
	svc := &fakeUserService{}
	body, contentType := multipartBody(t, map[string]string{
		"role":     "parent",
		"nom":      "Traoré",
		"prenom":   "Fatou",
		"email":    "fatou@example.com",
		"password": "secret1",
		"children": `[{"niveau":"cp1","classe":"c1","eleve":"e1"}]`,
	}, service.ImageField, "photo.png", "png-bytes")

	rec := serve(userRouter(svc), http.MethodPost, "/users", body, map[string]string{"Content-Type": contentType})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, svc.forms, 1)
	form := svc.forms[0]
	assert.Equal(t, models.RoleParent, form.Role)
	assert.Equal(t, []models.Child{{Niveau: "cp1", Classe: "c1", Eleve: "e1"}}, form.Children)
	require.NotNil(t, form.Image)
	assert.Equal(t, "photo.png", form.Image.Name)
	assert.Equal(t, "png-bytes", svc.image)
}

func TestUserCreateMultipartWithoutImage(t *testing.T) {
	svc := &fakeUserService{}
	body, contentType := multipartBody(t, map[string]string{"role": "teacher", "nom": "Ben Salah"}, "", "", "")

	rec := serve(userRouter(svc), http.MethodPost, "/users", body, map[string]string{"Content-Type": contentType})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, svc.forms[0].Image)
}

func TestUserCreateRejectsMalformedChildren(t *testing.T) {
	svc := &fakeUserService{}
	body, contentType := multipartBody(t, map[string]string{"role": "parent", "children": "not-json"}, "", "", "")

	rec := serve(userRouter(svc), http.MethodPost, "/users", body, map[string]string{"Content-Type": contentType})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.forms)
}

func TestUserUpdateJSON(t *testing.T) {
	svc := &fakeUserService{}

	rec := serve(userRouter(svc), http.MethodPut, "/users/u1", jsonBody(t, map[string]string{"role": "teacher", "nom": "Ben Salah"}), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", decode(t, rec).Data["_id"])
}

func TestUserApprove(t *testing.T) {
	svc := &fakeUserService{}

	rec := serve(userRouter(svc), http.MethodPut, "/users/u2/approve", nil, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"u2"}, svc.approved)
}
