package session

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
)

// Credentials are what the login screen received from the backend.
type Credentials struct {
	Token  string          `json:"token" validate:"required"`
	Nom    string          `json:"nom" validate:"required"`
	Prenom string          `json:"prenom"`
	Role   models.UserRole `json:"role" validate:"required,oneof=admin teacher parent student"`
}

// ManagerConfig tunes session lifetimes.
type ManagerConfig struct {
	TTL time.Duration
}

// Manager owns the session lifecycle and is the only writer of the store.
type Manager struct {
	store     Store
	bus       *Bus
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
	now       func() time.Time
}

// NewManager constructs a Manager.
func NewManager(store Store, bus *Bus, validate *validator.Validate, logger *zap.Logger, cfg ManagerConfig) *Manager {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if bus == nil {
		bus = NewBus()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Manager{store: store, bus: bus, validator: validate, logger: logger, ttl: cfg.TTL, now: time.Now}
}

// Bus exposes the event bus for subscribers.
func (m *Manager) Bus() *Bus {
	return m.bus
}

// Authenticate opens a session for a backend-issued token. A JWT whose exp has
// already passed is refused; the session never outlives the token.
func (m *Manager) Authenticate(ctx context.Context, creds Credentials) (*Session, error) {
	if err := m.validator.Struct(creds); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "identifiants de session invalides")
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	if exp, ok := tokenExpiry(creds.Token); ok {
		if !now.Before(exp) {
			return nil, appErrors.ErrSessionExpired
		}
		if exp.Before(expiresAt) {
			expiresAt = exp
		}
	}

	s := &Session{
		ID:        uuid.NewString(),
		State:     StateAuthenticated,
		Token:     creds.Token,
		Nom:       creds.Nom,
		Prenom:    creds.Prenom,
		Role:      creds.Role,
		ExpiresAt: expiresAt,
	}
	if err := m.store.Save(ctx, s, expiresAt.Sub(now)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "impossible d'enregistrer la session")
	}
	m.logger.Info("session authenticated", zap.String("session_id", s.ID), zap.String("role", string(s.Role)))
	return s.Clone(), nil
}

// Resolve loads an authenticated session. Sessions past their expiry transition to
// expired on the way out.
func (m *Manager) Resolve(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, appErrors.ErrUnauthorized
	}
	s, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrSessionNotFound) {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lecture de session impossible")
	}
	if s.ExpiredAt(m.now()) {
		m.expire(ctx, s, ReasonTokenExpired)
		return nil, appErrors.ErrSessionExpired
	}
	return s, nil
}

// Expire ends the session after the backend rejected its token. Only the caller that
// actually removes the record publishes the event.
func (m *Manager) Expire(ctx context.Context, id, reason string) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return
	}
	m.expire(ctx, s, reason)
}

// Logout clears the session on user request.
func (m *Manager) Logout(ctx context.Context, id string) error {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrSessionNotFound) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lecture de session impossible")
	}
	m.expire(ctx, s, ReasonLogout)
	return nil
}

// HandleUnauthorized expires the session carried by ctx. It is the backend client's
// hook for 401 responses.
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	s, ok := FromContext(ctx)
	if !ok {
		return
	}
	s.State = StateExpired
	m.Expire(context.WithoutCancel(ctx), s.ID, ReasonUnauthorized)
}

// SetDarkMode stores the theme preference.
func (m *Manager) SetDarkMode(ctx context.Context, id string, enabled bool) (*Session, error) {
	s, err := m.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	s.DarkMode = enabled
	remaining := s.ExpiresAt.Sub(m.now())
	if err := m.store.Save(ctx, s, remaining); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "impossible d'enregistrer la préférence")
	}
	return s, nil
}

func (m *Manager) expire(ctx context.Context, s *Session, reason string) {
	removed, err := m.store.Delete(ctx, s.ID)
	if err != nil {
		m.logger.Warn("session delete failed", zap.String("session_id", s.ID), zap.Error(err))
		return
	}
	if !removed {
		return
	}
	m.logger.Info("session ended", zap.String("session_id", s.ID), zap.String("reason", reason))
	m.bus.Publish(Event{SessionID: s.ID, Role: s.Role, Reason: reason, At: m.now()})
}
