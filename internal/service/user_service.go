package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Karama2000/kara-app-sub001/internal/backend"
	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
	"github.com/Karama2000/kara-app-sub001/pkg/validation"
)

const (
	parentChildrenTag = "parent_children"
	studentClassTag   = "student_class"
)

// ImageField is the multipart field of the profile picture.
const ImageField = "image"

type userBackend interface {
	User(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, form backend.Multipart) (*models.User, error)
	UpdateUser(ctx context.Context, id string, form backend.Multipart) (*models.User, error)
	ApproveUser(ctx context.Context, id string) error
	RejectUser(ctx context.Context, id string) error
}

// UserForm is the account form of every role. A parent needs one to four fully
// specified children; a student needs a level and a class.
type UserForm struct {
	Role           models.UserRole `json:"role" validate:"required,oneof=admin teacher parent student"`
	Nom            string          `json:"nom" validate:"required,notblank"`
	Prenom         string          `json:"prenom" validate:"required,notblank"`
	Email          string          `json:"email" validate:"required,email"`
	Password       string          `json:"password" validate:"omitempty,min=6"`
	Telephone      string          `json:"telephone"`
	Specialite     string          `json:"specialite"`
	NumInscription string          `json:"numInscription"`
	Niveau         string          `json:"niveau"`
	Classe         string          `json:"classe"`
	Children       []models.Child  `json:"children" validate:"omitempty,max=4,dive"`
	Image          *backend.File   `json:"-"`
}

// UserService handles account creation, edition and approval.
type UserService struct {
	api        userBackend
	validator  *validation.Validator
	workspaces *WorkspaceService
	logger     *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(api userBackend, validate *validation.Validator, workspaces *WorkspaceService, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	validate.Engine().RegisterStructValidation(userFormStructValidation, UserForm{})
	validate.RegisterMessage(parentChildrenTag, "un parent doit avoir entre 1 et 4 enfants avec niveau, classe et élève renseignés")
	validate.RegisterMessage(studentClassTag, "{0} est obligatoire pour un élève")
	return &UserService{api: api, validator: validate, workspaces: workspaces, logger: logger}
}

func userFormStructValidation(sl validator.StructLevel) {
	form, ok := sl.Current().Interface().(UserForm)
	if !ok {
		return
	}
	switch form.Role {
	case models.RoleParent:
		if len(form.Children) == 0 || len(form.Children) > models.MaxChildren {
			sl.ReportError(form.Children, "children", "Children", parentChildrenTag, "")
		}
	case models.RoleStudent:
		if strings.TrimSpace(form.Niveau) == "" {
			sl.ReportError(form.Niveau, "niveau", "Niveau", studentClassTag, "")
		}
		if strings.TrimSpace(form.Classe) == "" {
			sl.ReportError(form.Classe, "classe", "Classe", studentClassTag, "")
		}
	}
}

// Validate checks the form without any network call.
func (s *UserService) Validate(form UserForm) error {
	return s.validator.Struct(form)
}

// Get fetches one account.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.api.User(ctx, id)
}

// Create validates the form then posts it. The users table is updated in place.
func (s *UserService) Create(ctx context.Context, sess *session.Session, form UserForm) (*models.User, error) {
	if err := s.Validate(form); err != nil {
		return nil, err
	}
	if form.Password == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "password est un champ obligatoire")
	}
	payload, err := userPayload(form)
	if err != nil {
		return nil, err
	}

	user, err := s.api.CreateUser(ctx, payload)
	if err != nil {
		return nil, err
	}
	if ws, ok := s.workspaces.Lookup(sess.ID); ok && ws.Users.Mounted() {
		ws.Users.Append(*user)
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(form.Role)))
	return user, nil
}

// Update validates the form then sends it for an existing account.
func (s *UserService) Update(ctx context.Context, sess *session.Session, id string, form UserForm) (*models.User, error) {
	if err := s.Validate(form); err != nil {
		return nil, err
	}
	payload, err := userPayload(form)
	if err != nil {
		return nil, err
	}

	user, err := s.api.UpdateUser(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	if user.ID == "" {
		user.ID = id
	}
	if ws, ok := s.workspaces.Lookup(sess.ID); ok {
		ws.Users.Replace(*user)
	}
	return user, nil
}

// Approve accepts a pending account.
func (s *UserService) Approve(ctx context.Context, sess *session.Session, id string) error {
	if err := s.api.ApproveUser(ctx, id); err != nil {
		return err
	}
	s.settle(sess, id, models.StatusApproved)
	return nil
}

// Reject refuses a pending account.
func (s *UserService) Reject(ctx context.Context, sess *session.Session, id string) error {
	if err := s.api.RejectUser(ctx, id); err != nil {
		return err
	}
	s.settle(sess, id, models.StatusRejected)
	return nil
}

// settle removes the account from the pending table and updates its status in
// the users table.
func (s *UserService) settle(sess *session.Session, id, status string) {
	ws, ok := s.workspaces.Lookup(sess.ID)
	if !ok {
		return
	}
	ws.PendingUsers.Remove(id)
	if user, found := ws.Users.Find(id); found {
		user.Status = status
		ws.Users.Replace(user)
	}
}

func userPayload(form UserForm) (backend.Multipart, error) {
	payload := backend.Multipart{}
	payload.Set("role", string(form.Role))
	payload.Set("nom", strings.TrimSpace(form.Nom))
	payload.Set("prenom", strings.TrimSpace(form.Prenom))
	payload.Set("email", strings.TrimSpace(form.Email))
	optional := map[string]string{
		"password":       form.Password,
		"telephone":      form.Telephone,
		"specialite":     form.Specialite,
		"numInscription": form.NumInscription,
		"niveau":         form.Niveau,
		"classe":         form.Classe,
	}
	for key, value := range optional {
		if value != "" {
			payload.Set(key, value)
		}
	}
	if form.Role == models.RoleParent {
		children, err := json.Marshal(form.Children)
		if err != nil {
			return backend.Multipart{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encodage des enfants impossible")
		}
		payload.Set("children", string(children))
	}
	if form.Image != nil && form.Image.Content != nil {
		image := *form.Image
		image.Field = ImageField
		payload.File = &image
	}
	return payload, nil
}
