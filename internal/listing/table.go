// Package listing implements the list-filter-action tables of the dashboard:
// a fetched collection, client-side search and field filters, and a confirmed,
// optimistic row delete.
package listing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
)

// Acknowledgment kinds.
const (
	AckSuccess = "success"
	AckError   = "error"
)

// MessageDeleted is shown after a successful delete.
const MessageDeleted = "Élément supprimé avec succès."

// Config wires a table to its collection.
type Config[T any] struct {
	Name string
	// Fetch loads the collection for the current server-side filters.
	Fetch  func(ctx context.Context, filters map[string]string) ([]T, error)
	Delete func(ctx context.Context, id string) error
	ID     func(T) string
	// Search returns the display fields matched by the free-text search.
	Search func(T) []string
	Field  func(item T, name string) string
	// ServerFilters and FieldFilters list the accepted filter names.
	ServerFilters []string
	FieldFilters  []string
}

// Ack is the outcome message of the last row action.
type Ack struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// View is a serialisable copy of the table state.
type View struct {
	Name          string            `json:"name"`
	Rows          interface{}       `json:"rows"`
	Count         int               `json:"count"`
	Total         int               `json:"total"`
	Search        string            `json:"search,omitempty"`
	ServerFilters map[string]string `json:"serverFilters,omitempty"`
	FieldFilters  map[string]string `json:"fieldFilters,omitempty"`
	Loading       bool              `json:"loading"`
	Error         string            `json:"error,omitempty"`
	Ack           *Ack              `json:"ack,omitempty"`
}

// Table is the state of one list screen.
type Table[T any] struct {
	cfg Config[T]

	mu            sync.Mutex
	items         []T
	search        string
	serverFilters map[string]string
	fieldFilters  map[string]string
	pending       map[string]string
	loading       bool
	err           string
	ack           *Ack
	generation    uint64
	mounted       bool
}

// New builds a table.
func New[T any](cfg Config[T]) (*Table[T], error) {
	if cfg.Name == "" || cfg.Fetch == nil || cfg.ID == nil {
		return nil, fmt.Errorf("listing: name, fetch and id are required")
	}
	return &Table[T]{
		cfg:           cfg,
		serverFilters: make(map[string]string),
		fieldFilters:  make(map[string]string),
		pending:       make(map[string]string),
	}, nil
}

// Name identifies the table.
func (t *Table[T]) Name() string {
	return t.cfg.Name
}

// Refresh re-fetches the collection. Only the latest fetch is applied.
func (t *Table[T]) Refresh(ctx context.Context) error {
	t.mu.Lock()
	t.generation++
	gen := t.generation
	t.loading = true
	t.mounted = true
	filters := copyMap(t.serverFilters)
	t.mu.Unlock()

	items, err := t.cfg.Fetch(ctx, filters)

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.generation {
		return appErrors.ErrStaleResponse
	}
	t.loading = false
	if err != nil {
		t.items = nil
		t.err = appErrors.FromError(err).Message
		return err
	}
	t.items = items
	t.err = ""
	t.pending = make(map[string]string)
	return nil
}

// Mounted reports whether the collection was fetched at least once.
func (t *Table[T]) Mounted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mounted
}

// SetServerFilter changes a filter mapped to a query of the backend and re-fetches.
func (t *Table[T]) SetServerFilter(ctx context.Context, key, value string) error {
	if !contains(t.cfg.ServerFilters, key) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("filtre %q inconnu", key))
	}
	t.mu.Lock()
	setOrClear(t.serverFilters, key, value)
	t.mu.Unlock()
	return t.Refresh(ctx)
}

// SetSearch sets the free-text search.
func (t *Table[T]) SetSearch(query string) {
	t.mu.Lock()
	t.search = strings.TrimSpace(query)
	t.mu.Unlock()
}

// SetFieldFilter sets an exact-match filter applied locally.
func (t *Table[T]) SetFieldFilter(name, value string) error {
	if t.cfg.Field == nil || !contains(t.cfg.FieldFilters, name) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("filtre %q inconnu", name))
	}
	t.mu.Lock()
	setOrClear(t.fieldFilters, name, value)
	t.mu.Unlock()
	return nil
}

// Rows returns the items passing the client-side filters.
func (t *Table[T]) Rows() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible()
}

// Len is the number of fetched items, before filtering.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Find returns the fetched item with id.
func (t *Table[T]) Find(id string) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i := t.indexOf(id); i >= 0 {
		return t.items[i], true
	}
	var zero T
	return zero, false
}

// RequestDelete is the first step of a delete: it returns the token ConfirmDelete
// expects.
func (t *Table[T]) RequestDelete(id string) (string, error) {
	if t.cfg.Delete == nil {
		return "", appErrors.Clone(appErrors.ErrForbidden, "suppression non disponible")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.indexOf(id) < 0 {
		return "", appErrors.Clone(appErrors.ErrNotFound, "élément introuvable")
	}
	token := uuid.NewString()
	t.pending[id] = token
	return token, nil
}

// ConfirmDelete issues the delete once confirmed. Success removes exactly that row
// without re-fetching; failure leaves the rows untouched. Either way an Ack is set.
func (t *Table[T]) ConfirmDelete(ctx context.Context, id, token string) error {
	t.mu.Lock()
	expected, ok := t.pending[id]
	if !ok || token == "" || token != expected {
		t.mu.Unlock()
		return appErrors.ErrConfirmationRequired
	}
	delete(t.pending, id)
	t.mu.Unlock()

	if err := t.cfg.Delete(ctx, id); err != nil {
		t.mu.Lock()
		t.ack = &Ack{Kind: AckError, Message: appErrors.FromError(err).Message}
		t.mu.Unlock()
		return err
	}

	t.mu.Lock()
	t.remove(id)
	t.ack = &Ack{Kind: AckSuccess, Message: MessageDeleted}
	t.mu.Unlock()
	return nil
}

// Replace swaps the item with the same id in place. It reports whether one was found.
func (t *Table[T]) Replace(item T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexOf(t.cfg.ID(item))
	if i < 0 {
		return false
	}
	t.items[i] = item
	return true
}

// Append adds a newly created item.
func (t *Table[T]) Append(item T) {
	t.mu.Lock()
	t.items = append(t.items, item)
	t.mu.Unlock()
}

// Items returns every fetched item, ignoring client-side filters.
func (t *Table[T]) Items() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]T, len(t.items))
	copy(out, t.items)
	return out
}

// Set replaces the local items without fetching.
func (t *Table[T]) Set(items []T) {
	t.mu.Lock()
	t.items = items
	t.pending = make(map[string]string)
	t.mu.Unlock()
}

// Remove drops the item with id from local state.
func (t *Table[T]) Remove(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remove(id)
}

// View copies the table state for rendering.
func (t *Table[T]) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := t.visible()
	v := View{
		Name:          t.cfg.Name,
		Rows:          rows,
		Count:         len(rows),
		Total:         len(t.items),
		Search:        t.search,
		ServerFilters: copyMap(t.serverFilters),
		FieldFilters:  copyMap(t.fieldFilters),
		Loading:       t.loading,
		Error:         t.err,
	}
	if t.ack != nil {
		ack := *t.ack
		v.Ack = &ack
	}
	return v
}

func (t *Table[T]) visible() []T {
	out := make([]T, 0, len(t.items))
	needle := strings.ToLower(t.search)
	for _, item := range t.items {
		if needle != "" && !t.matchesSearch(item, needle) {
			continue
		}
		if !t.matchesFields(item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (t *Table[T]) matchesSearch(item T, needle string) bool {
	if t.cfg.Search == nil {
		return true
	}
	haystack := strings.ToLower(strings.Join(t.cfg.Search(item), " "))
	return strings.Contains(haystack, needle)
}

func (t *Table[T]) matchesFields(item T) bool {
	for name, want := range t.fieldFilters {
		if t.cfg.Field(item, name) != want {
			return false
		}
	}
	return true
}

func (t *Table[T]) indexOf(id string) int {
	for i, item := range t.items {
		if t.cfg.ID(item) == id {
			return i
		}
	}
	return -1
}

func (t *Table[T]) remove(id string) bool {
	i := t.indexOf(id)
	if i < 0 {
		return false
	}
	t.items = append(t.items[:i:i], t.items[i+1:]...)
	delete(t.pending, id)
	return true
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func setOrClear(m map[string]string, key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		delete(m, key)
		return
	}
	m[key] = value
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Lister is the type-independent surface of a Table.
type Lister interface {
	Name() string
	Mounted() bool
	Refresh(ctx context.Context) error
	SetServerFilter(ctx context.Context, key, value string) error
	SetSearch(query string)
	SetFieldFilter(name, value string) error
	RequestDelete(id string) (string, error)
	ConfirmDelete(ctx context.Context, id, token string) error
	View() View
}

var _ Lister = (*Table[struct{}])(nil)
