package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
)

// Hash fields of a stored session. They mirror the keys the dashboard kept in
// browser storage; the expiry lives in the key TTL.
const (
	fieldToken    = "token"
	fieldNom      = "nom"
	fieldPrenom   = "prenom"
	fieldRole     = "role"
	fieldDarkMode = "darkMode"
)

// SessionRepository stores sessions as Redis hashes.
type SessionRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionRepository constructs a Redis backed session store.
func NewSessionRepository(client *redis.Client, prefix string, logger *zap.Logger) *SessionRepository {
	if prefix == "" {
		prefix = "kara:session:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{client: client, prefix: prefix, logger: logger, now: time.Now}
}

func (r *SessionRepository) key(id string) string {
	return r.prefix + id
}

// Get loads the hash and its remaining TTL in one round trip.
func (r *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	key := r.key(id)
	pipe := r.client.Pipeline()
	fieldsCmd := pipe.HGetAll(ctx, key)
	ttlCmd := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}

	fields := fieldsCmd.Val()
	if len(fields) == 0 || fields[fieldToken] == "" {
		return nil, appErrors.ErrSessionNotFound
	}
	darkMode, _ := strconv.ParseBool(fields[fieldDarkMode])

	s := &session.Session{
		ID:       id,
		State:    session.StateAuthenticated,
		Token:    fields[fieldToken],
		Nom:      fields[fieldNom],
		Prenom:   fields[fieldPrenom],
		Role:     models.UserRole(fields[fieldRole]),
		DarkMode: darkMode,
	}
	if ttl := ttlCmd.Val(); ttl > 0 {
		s.ExpiresAt = r.now().Add(ttl)
	}
	return s, nil
}

// Save writes the hash and its TTL atomically.
func (r *SessionRepository) Save(ctx context.Context, s *session.Session, ttl time.Duration) error {
	key := r.key(s.ID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			fieldToken:    s.Token,
			fieldNom:      s.Nom,
			fieldPrenom:   s.Prenom,
			fieldRole:     string(s.Role),
			fieldDarkMode: strconv.FormatBool(s.DarkMode),
		})
		if ttl > 0 {
			pipe.PExpire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save session %s: %w", s.ID, err)
	}
	return nil
}

// Delete removes the hash; DEL's reply tells whether this caller removed it.
func (r *SessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis delete session %s: %w", id, err)
	}
	return n > 0, nil
}

// Close releases the underlying Redis connection.
func (r *SessionRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
