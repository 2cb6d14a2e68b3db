package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	"github.com/Karama2000/kara-app-sub001/pkg/config"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
	"github.com/Karama2000/kara-app-sub001/pkg/middleware/requestid"
)

type observerStub struct {
	mu    sync.Mutex
	calls []string
}

func (o *observerStub) ObserveBackendCall(resource string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, resource)
}

func authedContext() context.Context {
	return session.WithSession(context.Background(), &session.Session{
		ID:    "s1",
		State: session.StateAuthenticated,
		Token: "tok-123",
		Role:  models.RoleAdmin,
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.BackendConfig{BaseURL: srv.URL + "/", Timeout: time.Second}, opts...)
}

func TestClientSendsBearerToken(t *testing.T) {
	obs := &observerStub{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/niveaux", r.URL.Path)
		_, _ = io.WriteString(w, `[{"_id":"n1","nom":"CP1"},{"_id":"n2","nom":"CE1"}]`)
	}, WithObserver(obs))

	levels, err := client.Levels(authedContext())
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, "CE1", levels[1].Nom)
	assert.Equal(t, []string{"niveaux"}, obs.calls)
}

func TestClientForwardsRequestID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-42", r.Header.Get(requestid.HeaderKey))
		_, _ = io.WriteString(w, `[]`)
	})

	_, err := client.Levels(requestid.WithID(authedContext(), "req-42"))
	require.NoError(t, err)
}

func TestClientWithoutSessionSkipsNetwork(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Levels(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	assert.False(t, called)
}

func TestClientUnauthorizedExpiresSession(t *testing.T) {
	var hookCalls int
	var hookSession string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Token invalide"}`)
	}, WithUnauthorizedHook(func(ctx context.Context) {
		hookCalls++
		if s, ok := session.FromContext(ctx); ok {
			hookSession = s.ID
		}
	}))

	_, err := client.Users(authedContext())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrSessionExpired))
	assert.True(t, appErrors.IsSessionExpiry(err))
	assert.Equal(t, 1, hookCalls)
	assert.Equal(t, "s1", hookSession)
}

func TestClientRejectionKeepsBackendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"Cet email est déjà utilisé"}`)
	})

	err := client.ApproveUser(authedContext(), "u1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBackendRejected.Code, appErr.Code)
	assert.Equal(t, "Cet email est déjà utilisé", appErr.Message)
	assert.Equal(t, http.StatusConflict, appErr.Status)
}

func TestClientRejectionReadsErrorField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Niveau introuvable"}`)
	})

	_, err := client.ClassesByLevel(authedContext(), "zz")
	appErr := appErrors.FromError(err)
	assert.Equal(t, "Niveau introuvable", appErr.Message)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestClientServerErrorIsGeneric(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"stack trace here"}`)
	})

	_, err := client.Lessons(authedContext())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBackendUnavailable.Code, appErr.Code)
	assert.Equal(t, appErrors.MessageBackendUnavailable, appErr.Message)
}

func TestClientTransportFailureIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	client := New(config.BackendConfig{BaseURL: url, Timeout: time.Second})

	_, err := client.Notifications(authedContext())
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBackendUnavailable.Code, appErr.Code)
	assert.Equal(t, appErrors.MessageBackendUnavailable, appErr.Message)
}

func TestCreateLessonOmitsAbsentMediaFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "Les fractions", r.FormValue("title"))
		_, hasValue := r.MultipartForm.Value["mediaFile"]
		_, hasFile := r.MultipartForm.File["mediaFile"]
		assert.False(t, hasValue)
		assert.False(t, hasFile)
		_, _ = io.WriteString(w, `{"_id":"l1","title":"Les fractions","programId":"p1","unitId":"u1"}`)
	})

	form := Multipart{}
	form.Set("title", "Les fractions")
	form.Set("programId", "p1")
	form.Set("unitId", "u1")
	lesson, err := client.CreateLesson(authedContext(), form)
	require.NoError(t, err)
	assert.Equal(t, "l1", lesson.ID)
	assert.Equal(t, "u1", lesson.Unit.ID)
}

func TestCreateTestSendsMediaFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("mediaFile")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		assert.Equal(t, "audio.mp3", header.Filename)
		assert.Equal(t, "ID3", string(body))
		assert.Equal(t, "l1", r.FormValue("lessonId"))
		_, _ = io.WriteString(w, `{"_id":"t1","title":"Quiz","lessonId":{"_id":"l1","title":"Les fractions"}}`)
	})

	form := Multipart{File: &File{Field: "mediaFile", Name: "audio.mp3", ContentType: "audio/mpeg", Content: strings.NewReader("ID3")}}
	form.Set("lessonId", "l1")
	test, err := client.CreateTest(authedContext(), form)
	require.NoError(t, err)
	assert.Equal(t, "l1", test.Lesson.ID)
	assert.Equal(t, "Les fractions", test.Lesson.Name)
}

func TestCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users":
			_, _ = io.WriteString(w, `[{"_id":"a"},{"_id":"b"},{"_id":"c"}]`)
		case "/api/messages/unread-count":
			_, _ = io.WriteString(w, `{"count":7}`)
		default:
			_, _ = io.WriteString(w, `{"total":1}`)
		}
	})
	ctx := authedContext()

	n, err := client.Count(ctx, "/api/users")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = client.UnreadMessageCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = client.Count(ctx, "/api/other")
	assert.True(t, errors.Is(err, appErrors.ErrBackendUnavailable))
}

func TestProgramsPathByRole(t *testing.T) {
	assert.Equal(t, "/api/admin/programs", ProgramsPath(models.RoleAdmin))
	assert.Equal(t, "/api/programs", ProgramsPath(models.RoleTeacher))
}

func TestResourceOf(t *testing.T) {
	assert.Equal(t, "classes", resourceOf("/api/classes/niveau/42"))
	assert.Equal(t, "pending-users", resourceOf("/api/pending-users"))
	assert.Equal(t, "root", resourceOf("/api/"))
}
