package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karama2000/kara-app-sub001/internal/backend"
	"github.com/Karama2000/kara-app-sub001/internal/middleware"
	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/service"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	"github.com/Karama2000/kara-app-sub001/pkg/config"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
	"github.com/Karama2000/kara-app-sub001/pkg/response"
	"github.com/Karama2000/kara-app-sub001/pkg/validation"
)

func TestBackendUnauthorizedEndsSessionAndDropsWorkspace(t *testing.T) {
	var hits int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/api/users" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"token expired"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer upstream.Close()

	validate := validation.New()
	store := session.NewMemoryStore()
	bus := session.NewBus()
	manager := session.NewManager(store, bus, validate.Engine(), nil, session.ManagerConfig{TTL: handlerSessionConfig.TTL})
	api := backend.New(config.BackendConfig{BaseURL: upstream.URL}, backend.WithUnauthorizedHook(manager.HandleUnauthorized))
	svc := service.NewWorkspaceService(api, validate, bus, nil, nil)

	ctx := context.Background()
	sess, err := manager.Authenticate(ctx, session.Credentials{Token: "opaque-token", Nom: "Diallo", Prenom: "Awa", Role: models.RoleAdmin})
	require.NoError(t, err)

	r := newEngine()
	group := r.Group("/", middleware.Session(manager, handlerSessionConfig))
	group.GET("/tables/:name", NewWorkspaceHandler(svc).Table)

	w := serve(r, http.MethodGet, "/tables/users", nil, map[string]string{handlerSessionConfig.HeaderName: sess.ID})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w)
	assert.Equal(t, "SESSION_EXPIRED", env.Error.Code)
	assert.Equal(t, response.LoginRoute, env.Meta["redirect"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, appErrors.ErrSessionNotFound)
	_, ok := svc.Lookup(sess.ID)
	assert.False(t, ok)

	// The expired id no longer resolves.
	w = serve(r, http.MethodGet, "/tables/users", nil, map[string]string{handlerSessionConfig.HeaderName: sess.ID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
