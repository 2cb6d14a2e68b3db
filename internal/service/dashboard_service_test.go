package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
)

type fakeDashboardMetrics struct {
	mu      sync.Mutex
	results map[string][]bool
}

func (m *fakeDashboardMetrics) RecordDashboardRefresh(role string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = map[string][]bool{}
	}
	m.results[role] = append(m.results[role], ok)
}

func TestAdminDashboardCounters(t *testing.T) {
	api := newFakeGateway()
	api.counts["/api/users"] = 12
	api.counts["/api/pending-users"] = 3
	api.counts["/api/classes"] = 5
	api.counts["/api/admin/programs"] = 2
	metrics := &fakeDashboardMetrics{}
	svc := NewDashboardService(api, session.NewBus(), metrics, nil, DashboardServiceConfig{PollInterval: time.Hour})

	view, err := svc.Dashboard(context.Background(), adminSession())
	require.NoError(t, err)

	assert.Equal(t, 12, view.Counters[CounterUsers])
	assert.Equal(t, 2, view.Counters[CounterPrograms])
	assert.False(t, view.Polled)
	require.Len(t, view.Charts, 2)
	assert.Equal(t, 15, view.Charts[0].Total)
	assert.Equal(t, []bool{true}, metrics.results["admin"])
}

func TestAdminDashboardIsAllOrNothing(t *testing.T) {
	api := newFakeGateway()
	api.counts["/api/users"] = 12
	api.countErr["/api/classes"] = appErrors.Clone(appErrors.ErrBackendUnavailable, "")
	metrics := &fakeDashboardMetrics{}
	svc := NewDashboardService(api, session.NewBus(), metrics, nil, DashboardServiceConfig{PollInterval: time.Hour})

	view, err := svc.Dashboard(context.Background(), adminSession())

	assert.Nil(t, view)
	assert.True(t, errors.Is(err, appErrors.ErrBackendUnavailable))
	assert.Equal(t, []bool{false}, metrics.results["admin"])
}

func TestTeacherDashboardUsesTeacherSources(t *testing.T) {
	api := newFakeGateway()
	api.counts["/api/programs"] = 4
	api.counts["/api/messages/unread-count"] = 7
	svc := NewDashboardService(api, session.NewBus(), nil, nil, DashboardServiceConfig{PollInterval: time.Hour})

	view, err := svc.Dashboard(context.Background(), sessionFor("s-teacher", models.RoleTeacher))
	require.NoError(t, err)

	assert.Equal(t, 4, view.Counters[CounterPrograms])
	assert.Equal(t, 7, view.Counters[CounterUnreadMessages])
	assert.NotContains(t, api.calls, "count:/api/admin/programs")
}

func TestParentDashboardStartsPoller(t *testing.T) {
	api := newFakeGateway()
	api.counts["/api/parent/children"] = 2
	bus := session.NewBus()
	svc := NewDashboardService(api, bus, nil, nil, DashboardServiceConfig{PollInterval: time.Hour})
	t.Cleanup(svc.Close)
	sess := sessionFor("s-parent", models.RoleParent)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	view, err := svc.Dashboard(ctx, sess)
	require.NoError(t, err)

	assert.True(t, view.Polled)
	assert.Equal(t, 3600.0, view.PollInterval)
	assert.Equal(t, 2, view.Counters[CounterChildren])
	assert.Equal(t, 1, view.Counters[CounterUnreadNotifications])
	assert.True(t, svc.Polling(sess.ID))

	_, err = svc.Dashboard(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 1, countCalls(api, "count:/api/parent/children"))
}

func TestParentPollerStopsWhenSessionEnds(t *testing.T) {
	api := newFakeGateway()
	bus := session.NewBus()
	svc := NewDashboardService(api, bus, nil, nil, DashboardServiceConfig{PollInterval: 10 * time.Millisecond})
	t.Cleanup(svc.Close)
	sess := sessionFor("s-parent", models.RoleParent)

	_, err := svc.Dashboard(context.Background(), sess)
	require.NoError(t, err)

	bus.Publish(session.Event{SessionID: sess.ID, Role: sess.Role, Reason: session.ReasonLogout, At: time.Now()})
	assert.False(t, svc.Polling(sess.ID))

	time.Sleep(50 * time.Millisecond)
	settled := countCalls(api, "count:/api/parent/children")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, countCalls(api, "count:/api/parent/children"))
}

func TestStudentDashboardForbidden(t *testing.T) {
	api := newFakeGateway()
	svc := NewDashboardService(api, session.NewBus(), nil, nil, DashboardServiceConfig{})

	_, err := svc.Dashboard(context.Background(), sessionFor("s-student", models.RoleStudent))

	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.Equal(t, 0, api.callCount())
}

func countCalls(api *fakeGateway, call string) int {
	api.mu.Lock()
	defer api.mu.Unlock()
	n := 0
	for _, c := range api.calls {
		if c == call {
			n++
		}
	}
	return n
}
