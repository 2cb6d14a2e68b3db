package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/session"
)

type fakeAuditStore struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (f *fakeAuditStore) Insert(ctx context.Context, entry *models.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditStore) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.AuditEntry, 0, len(f.entries))
	for _, e := range f.entries {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeAuditStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type countingAuditMetrics struct {
	mu      sync.Mutex
	dropped int
}

func (m *countingAuditMetrics) RecordAuditDropped() {
	m.mu.Lock()
	m.dropped++
	m.mu.Unlock()
}

func TestAuditRecordPersistsAsynchronously(t *testing.T) {
	store := &fakeAuditStore{}
	svc := NewAuditService(store, nil, nil, nil, AuditServiceConfig{Workers: 1})
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)

	svc.Record(models.AuditEntry{SessionID: "s-admin", Action: models.AuditActionUserCreate, Resource: "users"})

	assert.Eventually(t, func() bool { return store.len() == 1 }, time.Second, 10*time.Millisecond)
	entries, err := svc.List(context.Background(), models.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].CreatedAt.IsZero())
	assert.JSONEq(t, "{}", string(entries[0].Details))
}

func TestAuditRecordsSessionEnd(t *testing.T) {
	store := &fakeAuditStore{}
	bus := session.NewBus()
	svc := NewAuditService(store, bus, nil, nil, AuditServiceConfig{Workers: 1})
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)

	bus.Publish(session.Event{SessionID: "s-parent", Role: models.RoleParent, Reason: session.ReasonUnauthorized, At: time.Now()})

	assert.Eventually(t, func() bool { return store.len() == 1 }, time.Second, 10*time.Millisecond)
	entries, err := svc.List(context.Background(), models.AuditFilter{Action: models.AuditActionExpired})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "parent", entries[0].Role)
	assert.JSONEq(t, `{"reason":"unauthorized"}`, string(entries[0].Details))
}

func TestAuditDisabledIsNoop(t *testing.T) {
	svc := NewAuditService(nil, session.NewBus(), nil, nil, AuditServiceConfig{})
	svc.Start(context.Background())
	defer svc.Stop()

	assert.False(t, svc.Enabled())
	svc.Record(models.AuditEntry{Action: models.AuditActionLogin})
	entries, err := svc.List(context.Background(), models.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAuditDropsWhenNotRunning(t *testing.T) {
	metrics := &countingAuditMetrics{}
	svc := NewAuditService(&fakeAuditStore{}, nil, metrics, nil, AuditServiceConfig{})

	svc.Record(models.AuditEntry{Action: models.AuditActionLogin})

	assert.Equal(t, 1, metrics.dropped)
}
