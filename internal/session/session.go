// Package session holds the dashboard credential store: the backend-issued bearer
// token plus the display fields the browser used to keep in local storage.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/Karama2000/kara-app-sub001/internal/models"
)

// State is a step of the session lifecycle: anonymous → authenticated → expired.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
	StateExpired       State = "expired"
)

// Session is the credential record of one dashboard user.
type Session struct {
	ID        string          `json:"id"`
	State     State           `json:"state"`
	Token     string          `json:"-"`
	Nom       string          `json:"nom"`
	Prenom    string          `json:"prenom"`
	Role      models.UserRole `json:"role"`
	DarkMode  bool            `json:"darkMode"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// Authenticated reports whether the session can call the backend.
func (s *Session) Authenticated() bool {
	return s != nil && s.State == StateAuthenticated && s.Token != ""
}

// ExpiredAt reports whether the session is past its expiry at t.
func (s *Session) ExpiredAt(t time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && !t.Before(s.ExpiresAt)
}

// DisplayName is "Prénom Nom".
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.Prenom + " " + s.Nom)
}

// Clone returns an independent copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

type contextKey struct{}

// WithSession returns a context carrying the session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext extracts the session placed by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
