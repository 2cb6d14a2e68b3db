package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karama2000/kara-app-sub001/internal/cascade"
	"github.com/Karama2000/kara-app-sub001/internal/listing"
	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/service"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
)

type fakeWorkspace struct {
	selected     []string
	filter       service.TableFilterRequest
	confirmToken string
	selectErr    error
}

func (f *fakeWorkspace) Cascade(ctx context.Context, sess *session.Session, name string) (cascade.Snapshot, error) {
	return cascade.Snapshot{Levels: []cascade.LevelState{{Name: "niveau", Enabled: true}}}, nil
}

func (f *fakeWorkspace) SelectCascade(ctx context.Context, sess *session.Session, name, level, id string) (cascade.Snapshot, error) {
	if f.selectErr != nil {
		return cascade.Snapshot{}, f.selectErr
	}
	f.selected = append(f.selected, name+"/"+level+"="+id)
	return cascade.Snapshot{}, nil
}

func (f *fakeWorkspace) Table(ctx context.Context, sess *session.Session, name string) (listing.View, error) {
	if name == "users" && sess.Role != models.RoleAdmin {
		return listing.View{}, appErrors.ErrForbidden
	}
	return listing.View{Name: name}, nil
}

func (f *fakeWorkspace) RefreshTable(ctx context.Context, sess *session.Session, name string) (listing.View, error) {
	return listing.View{Name: name}, nil
}

func (f *fakeWorkspace) FilterTable(ctx context.Context, sess *session.Session, name string, req service.TableFilterRequest) (listing.View, error) {
	f.filter = req
	return listing.View{Name: name}, nil
}

func (f *fakeWorkspace) RequestRowDelete(ctx context.Context, sess *session.Session, name, id string) (*service.DeleteConfirmation, error) {
	return &service.DeleteConfirmation{Table: name, ID: id, Token: "tok-1"}, nil
}

func (f *fakeWorkspace) ConfirmRowDelete(ctx context.Context, sess *session.Session, name, id, token string) (listing.View, error) {
	f.confirmToken = token
	if token != "tok-1" {
		return listing.View{}, appErrors.ErrConfirmationRequired
	}
	return listing.View{Name: name, Ack: &listing.Ack{Kind: listing.AckSuccess, Message: listing.MessageDeleted}}, nil
}

func workspaceRouter(svc *fakeWorkspace, role models.UserRole) http.Handler {
	h := NewWorkspaceHandler(svc)
	r := newEngine()
	r.Use(withSession(role))
	r.GET("/cascades/:name", h.Cascade)
	r.PUT("/cascades/:name/levels/:level", h.Select)
	r.GET("/tables/:name", h.Table)
	r.PUT("/tables/:name/filters", h.Filter)
	r.POST("/tables/:name/rows/:id/delete-request", h.RequestDelete)
	r.DELETE("/tables/:name/rows/:id", h.ConfirmDelete)
	return r
}

func TestWorkspaceSelect(t *testing.T) {
	svc := &fakeWorkspace{}
	r := workspaceRouter(svc, models.RoleAdmin)

	rec := serve(r, http.MethodPut, "/cascades/classes/levels/niveau", jsonBody(t, SelectRequest{ID: "cp1"}), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"classes/niveau=cp1"}, svc.selected)
}

func TestWorkspaceStaleSelectionIsConflict(t *testing.T) {
	r := workspaceRouter(&fakeWorkspace{selectErr: appErrors.ErrStaleResponse}, models.RoleAdmin)

	rec := serve(r, http.MethodPut, "/cascades/classes/levels/niveau", jsonBody(t, SelectRequest{ID: "cp1"}), nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "STALE_RESPONSE", decode(t, rec).Error.Code)
}

func TestWorkspaceTableForbidden(t *testing.T) {
	r := workspaceRouter(&fakeWorkspace{}, models.RoleParent)

	rec := serve(r, http.MethodGet, "/tables/users", nil, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWorkspaceFilterBindsRequest(t *testing.T) {
	svc := &fakeWorkspace{}
	r := workspaceRouter(svc, models.RoleAdmin)

	rec := serve(r, http.MethodPut, "/tables/classes/filters", jsonBody(t, map[string]interface{}{
		"search": "ce1",
		"server": map[string]string{"niveau": "ce1"},
	}), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.filter.Search)
	assert.Equal(t, "ce1", *svc.filter.Search)
	assert.Equal(t, "ce1", svc.filter.Server["niveau"])
}

func TestWorkspaceTwoStepDelete(t *testing.T) {
	svc := &fakeWorkspace{}
	r := workspaceRouter(svc, models.RoleAdmin)

	rec := serve(r, http.MethodDelete, "/tables/users/rows/u1", nil, nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)

	rec = serve(r, http.MethodPost, "/tables/users/rows/u1/delete-request", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode(t, rec).Data["token"].(string)

	rec = serve(r, http.MethodDelete, "/tables/users/rows/u1", nil, map[string]string{ConfirmTokenHeader: token})
	require.Equal(t, http.StatusOK, rec.Code)
	ack := decode(t, rec).Data["ack"].(map[string]interface{})
	assert.Equal(t, listing.MessageDeleted, ack["message"])

	rec = serve(r, http.MethodDelete, "/tables/users/rows/u1?confirm=tok-1", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
