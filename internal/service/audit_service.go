package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	"github.com/Karama2000/kara-app-sub001/pkg/jobs"
)

type auditStore interface {
	Insert(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, error)
}

type auditMetrics interface {
	RecordAuditDropped()
}

// AuditServiceConfig tunes the journal worker pool.
type AuditServiceConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// AuditService journals admin actions asynchronously. A nil store disables it.
type AuditService struct {
	store   auditStore
	queue   *jobs.Queue[models.AuditEntry]
	metrics auditMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuditService constructs the service and subscribes it to session endings.
func NewAuditService(store auditStore, bus *session.Bus, metrics auditMetrics, logger *zap.Logger, cfg AuditServiceConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{store: store, metrics: metrics, logger: logger, now: time.Now}
	if store != nil {
		s.queue = jobs.NewQueue[models.AuditEntry]("audit", s.persist, jobs.QueueConfig{
			Workers:    cfg.Workers,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Logger:     logger,
		})
	}
	if bus != nil {
		bus.Subscribe(s.onSessionEvent)
	}
	return s
}

// Enabled reports whether entries are persisted.
func (s *AuditService) Enabled() bool {
	return s != nil && s.store != nil
}

// Start launches the journal workers.
func (s *AuditService) Start(ctx context.Context) {
	if s.Enabled() {
		s.queue.Start(ctx)
	}
}

// Stop stops the workers. Entries still queued are dropped.
func (s *AuditService) Stop() {
	if s.Enabled() {
		s.queue.Stop()
	}
}

// Record queues an entry. It never blocks the request; a full queue drops the entry.
func (s *AuditService) Record(entry models.AuditEntry) {
	if !s.Enabled() {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	if len(entry.Details) == 0 {
		entry.Details = json.RawMessage("{}")
	}
	if err := s.queue.Enqueue(jobs.Job[models.AuditEntry]{ID: entry.ID, Payload: entry}); err != nil {
		s.logger.Warn("audit entry dropped", zap.String("action", entry.Action), zap.Error(err))
		if s.metrics != nil {
			s.metrics.RecordAuditDropped()
		}
	}
}

// List returns recent journal entries.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, error) {
	if !s.Enabled() {
		return []models.AuditEntry{}, nil
	}
	return s.store.List(ctx, filter)
}

func (s *AuditService) persist(ctx context.Context, job jobs.Job[models.AuditEntry]) error {
	entry := job.Payload
	return s.store.Insert(ctx, &entry)
}

func (s *AuditService) onSessionEvent(e session.Event) {
	action := models.AuditActionLogout
	if e.Expired() {
		action = models.AuditActionExpired
	}
	details, _ := json.Marshal(map[string]string{"reason": e.Reason})
	s.Record(models.AuditEntry{
		SessionID: e.SessionID,
		Role:      string(e.Role),
		Action:    action,
		Resource:  "session",
		Details:   details,
		CreatedAt: e.At.UTC(),
	})
}
