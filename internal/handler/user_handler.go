package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/service"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
	"github.com/Karama2000/kara-app-sub001/pkg/response"
)

type userService interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, sess *session.Session, form service.UserForm) (*models.User, error)
	Update(ctx context.Context, sess *session.Session, id string, form service.UserForm) (*models.User, error)
	Approve(ctx context.Context, sess *session.Session, id string) error
	Reject(ctx context.Context, sess *session.Session, id string) error
}

// UserHandler handles account endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// Create godoc
// @Summary Create user
// @Description Accepts JSON or multipart/form-data with an optional image file. Parents need 1 to 4 children.
// @Tags Users
// @Accept json,mpfd
// @Produce json
// @Param payload body service.UserForm true "Account form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	form, release, ok := bindUserForm(c)
	if !ok {
		return
	}
	defer release()

	user, err := h.service.Create(c.Request.Context(), sess, form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Update godoc
// @Summary Update user
// @Tags Users
// @Accept json,mpfd
// @Produce json
// @Param id path string true "User ID"
// @Param payload body service.UserForm true "Account form"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	form, release, ok := bindUserForm(c)
	if !ok {
		return
	}
	defer release()

	user, err := h.service.Update(c.Request.Context(), sess, c.Param("id"), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// Approve godoc
// @Summary Approve pending account
// @Tags Users
// @Param id path string true "User ID"
// @Success 204
// @Router /users/{id}/approve [put]
func (h *UserHandler) Approve(c *gin.Context) {
	h.settle(c, h.service.Approve)
}

// Reject godoc
// @Summary Reject pending account
// @Tags Users
// @Param id path string true "User ID"
// @Success 204
// @Router /users/{id}/reject [put]
func (h *UserHandler) Reject(c *gin.Context) {
	h.settle(c, h.service.Reject)
}

func (h *UserHandler) settle(c *gin.Context, fn func(context.Context, *session.Session, string) error) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), sess, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func bindUserForm(c *gin.Context) (service.UserForm, func(), bool) {
	noop := func() {}
	if !isMultipart(c) {
		var form service.UserForm
		if !bindJSON(c, &form) {
			return form, noop, false
		}
		return form, noop, true
	}

	form := service.UserForm{
		Role:           models.UserRole(c.PostForm("role")),
		Nom:            c.PostForm("nom"),
		Prenom:         c.PostForm("prenom"),
		Email:          c.PostForm("email"),
		Password:       c.PostForm("password"),
		Telephone:      c.PostForm("telephone"),
		Specialite:     c.PostForm("specialite"),
		NumInscription: c.PostForm("numInscription"),
		Niveau:         c.PostForm("niveau"),
		Classe:         c.PostForm("classe"),
	}
	if raw := c.PostForm("children"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &form.Children); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "liste des enfants invalide"))
			return form, noop, false
		}
	}
	image, release, err := uploadedFile(c, service.ImageField)
	if err != nil {
		response.Error(c, err)
		return form, noop, false
	}
	form.Image = image
	return form, release, true
}
