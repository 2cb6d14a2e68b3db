package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Karama2000/kara-app-sub001/internal/backend"
	"github.com/Karama2000/kara-app-sub001/internal/dashboard"
	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
)

// Counter names of the role dashboards.
const (
	CounterUsers               = "users"
	CounterPendingUsers        = "pendingUsers"
	CounterClasses             = "classes"
	CounterPrograms            = "programs"
	CounterLessons             = "lessons"
	CounterTests               = "tests"
	CounterUnreadMessages      = "unreadMessages"
	CounterChildren            = "children"
	CounterProgress            = "progress"
	CounterUnreadNotifications = "unreadNotifications"
)

type dashboardBackend interface {
	Count(ctx context.Context, path string) (int, error)
	Notifications(ctx context.Context) ([]models.Notification, error)
}

type dashboardMetrics interface {
	RecordDashboardRefresh(role string, ok bool)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	PollInterval time.Duration
}

// DashboardView is the payload of a role dashboard.
type DashboardView struct {
	Role         models.UserRole    `json:"role"`
	Counters     dashboard.Counters `json:"counters"`
	Charts       []dashboard.Series `json:"charts"`
	RefreshedAt  time.Time          `json:"refreshedAt"`
	Polled       bool               `json:"polled"`
	PollInterval float64            `json:"pollIntervalSeconds,omitempty"`
}

// DashboardService composes the role dashboards. Parent dashboards are refreshed by
// a per-session poller; the others are aggregated on request.
type DashboardService struct {
	api     dashboardBackend
	metrics dashboardMetrics
	logger  *zap.Logger
	cfg     DashboardServiceConfig

	mu      sync.Mutex
	pollers map[string]*dashboard.Poller
}

// NewDashboardService constructs the service. Pollers stop when their session ends.
func NewDashboardService(api dashboardBackend, bus *session.Bus, metrics dashboardMetrics, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = dashboard.DefaultPollInterval
	}
	s := &DashboardService{
		api:     api,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		pollers: make(map[string]*dashboard.Poller),
	}
	bus.Subscribe(func(e session.Event) { s.StopPolling(e.SessionID) })
	return s
}

// Dashboard returns the dashboard of the session's role.
func (s *DashboardService) Dashboard(ctx context.Context, sess *session.Session) (*DashboardView, error) {
	switch sess.Role {
	case models.RoleAdmin, models.RoleTeacher:
		counters, err := s.aggregator(sess.Role).Run(ctx)
		s.record(sess.Role, err == nil)
		if err != nil {
			return nil, err
		}
		return s.view(sess.Role, counters, time.Now(), false), nil
	case models.RoleParent:
		snap, err := s.poller(sess).Wait(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, appErrors.MessageBackendUnavailable)
		}
		if !snap.OK() {
			return nil, snap.Err
		}
		return s.view(sess.Role, snap.Counters, snap.RefreshedAt, true), nil
	default:
		return nil, appErrors.ErrForbidden
	}
}

// StopPolling stops the session's poller, if any. The poller is stopped
// asynchronously since the session may end from inside a polling cycle.
func (s *DashboardService) StopPolling(sessionID string) {
	s.mu.Lock()
	p, ok := s.pollers[sessionID]
	delete(s.pollers, sessionID)
	s.mu.Unlock()
	if ok {
		go p.Stop()
	}
}

// Polling reports whether a poller runs for the session.
func (s *DashboardService) Polling(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pollers[sessionID]
	return ok
}

// Close stops every poller and waits for them.
func (s *DashboardService) Close() {
	s.mu.Lock()
	pollers := s.pollers
	s.pollers = make(map[string]*dashboard.Poller)
	s.mu.Unlock()
	for _, p := range pollers {
		p.Stop()
	}
}

func (s *DashboardService) poller(sess *session.Session) *dashboard.Poller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pollers[sess.ID]; ok {
		return p
	}
	role := sess.Role
	p := dashboard.NewPoller(s.aggregator(role), s.cfg.PollInterval, s.logger.With(zap.String("session_id", sess.ID)),
		dashboard.WithResultHook(func(snap dashboard.Snapshot) { s.record(role, snap.OK()) }))
	p.Start(session.WithSession(context.Background(), sess.Clone()))
	s.pollers[sess.ID] = p
	return p
}

func (s *DashboardService) aggregator(role models.UserRole) *dashboard.Aggregator {
	count := func(name, path string) dashboard.Source {
		return dashboard.Source{Name: name, Count: func(ctx context.Context) (int, error) {
			return s.api.Count(ctx, path)
		}}
	}
	switch role {
	case models.RoleAdmin:
		return dashboard.NewAggregator(
			count(CounterUsers, "/api/users"),
			count(CounterPendingUsers, "/api/pending-users"),
			count(CounterClasses, "/api/classes"),
			count(CounterPrograms, backend.ProgramsPath(role)),
		)
	case models.RoleTeacher:
		return dashboard.NewAggregator(
			count(CounterPrograms, backend.ProgramsPath(role)),
			count(CounterLessons, "/api/lessons"),
			count(CounterTests, "/api/tests"),
			count(CounterUnreadMessages, "/api/messages/unread-count"),
		)
	default:
		return dashboard.NewAggregator(
			count(CounterChildren, "/api/parent/children"),
			count(CounterProgress, "/api/parent/progress"),
			dashboard.Source{Name: CounterUnreadNotifications, Count: s.unreadNotifications},
			count(CounterUnreadMessages, "/api/messages/unread-count"),
		)
	}
}

func (s *DashboardService) unreadNotifications(ctx context.Context) (int, error) {
	notifications, err := s.api.Notifications(ctx)
	if err != nil {
		return 0, err
	}
	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}
	return unread, nil
}

func (s *DashboardService) view(role models.UserRole, counters dashboard.Counters, at time.Time, polled bool) *DashboardView {
	v := &DashboardView{Role: role, Counters: counters, Charts: charts(role, counters), RefreshedAt: at, Polled: polled}
	if polled {
		v.PollInterval = s.cfg.PollInterval.Seconds()
	}
	return v
}

func (s *DashboardService) record(role models.UserRole, ok bool) {
	if s.metrics != nil {
		s.metrics.RecordDashboardRefresh(string(role), ok)
	}
}

func charts(role models.UserRole, counters dashboard.Counters) []dashboard.Series {
	switch role {
	case models.RoleAdmin:
		return []dashboard.Series{
			dashboard.Chart("Comptes", counters, []dashboard.Label{
				{Key: CounterUsers, Label: "Utilisateurs"},
				{Key: CounterPendingUsers, Label: "En attente"},
			}),
			dashboard.Chart("Établissement", counters, []dashboard.Label{
				{Key: CounterClasses, Label: "Classes"},
				{Key: CounterPrograms, Label: "Programmes"},
			}),
		}
	case models.RoleTeacher:
		return []dashboard.Series{
			dashboard.Chart("Contenus pédagogiques", counters, []dashboard.Label{
				{Key: CounterPrograms, Label: "Programmes"},
				{Key: CounterLessons, Label: "Leçons"},
				{Key: CounterTests, Label: "Tests"},
			}),
			dashboard.Chart("Messagerie", counters, []dashboard.Label{
				{Key: CounterUnreadMessages, Label: "Messages non lus"},
			}),
		}
	default:
		return []dashboard.Series{
			dashboard.Chart("Suivi des enfants", counters, []dashboard.Label{
				{Key: CounterChildren, Label: "Enfants"},
				{Key: CounterProgress, Label: "Progressions"},
			}),
			dashboard.Chart("Communication", counters, []dashboard.Label{
				{Key: CounterUnreadNotifications, Label: "Notifications non lues"},
				{Key: CounterUnreadMessages, Label: "Messages non lus"},
			}),
		}
	}
}
