package session

import (
	"sync"
	"time"

	"github.com/Karama2000/kara-app-sub001/internal/models"
)

// Reasons a session leaves the authenticated state.
const (
	ReasonLogout       = "logout"
	ReasonUnauthorized = "unauthorized"
	ReasonTokenExpired = "token_expired"
)

// Event is published once per session when it stops being authenticated.
type Event struct {
	SessionID string
	Role      models.UserRole
	Reason    string
	At        time.Time
}

// Expired reports whether the transition was an expiry rather than a logout.
func (e Event) Expired() bool {
	return e.Reason != ReasonLogout
}

// Bus fans session events out to subscribers. Subscribers run synchronously on the
// publishing goroutine and must not block.
type Bus struct {
	mu   sync.RWMutex
	subs []func(Event)
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for every future event.
func (b *Bus) Subscribe(fn func(Event)) {
	if b == nil || fn == nil {
		return
	}
	b.mu.Lock()
	b.subs = append(b.subs, fn)
	b.mu.Unlock()
}

// Publish delivers e to every subscriber.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := make([]func(Event), len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(e)
	}
}
