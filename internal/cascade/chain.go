// Package cascade implements dependent selector chains such as
// niveau → classe → élève, where each level's options depend on the
// selection one level up.
package cascade

import (
	"context"
	"fmt"
	"sync"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
)

// FetchFunc loads the options of a level given the parent selection. The root level
// is fetched with an empty parent.
type FetchFunc func(ctx context.Context, parentID string) ([]models.Option, error)

// Step describes one level of a chain.
type Step struct {
	Name  string
	Fetch FetchFunc
}

// LevelState is the observable state of one level.
type LevelState struct {
	Name     string          `json:"name"`
	Selected string          `json:"selected"`
	Options  []models.Option `json:"options"`
	Enabled  bool            `json:"enabled"`
	Loading  bool            `json:"loading"`
	Error    string          `json:"error,omitempty"`
}

// Snapshot is a copy of a chain's state.
type Snapshot struct {
	Levels []LevelState `json:"levels"`
}

// Level returns the state of the named level.
func (s Snapshot) Level(name string) (LevelState, bool) {
	for _, l := range s.Levels {
		if l.Name == name {
			return l, true
		}
	}
	return LevelState{}, false
}

type level struct {
	selected   string
	options    []models.Option
	loaded     bool
	loading    bool
	err        string
	generation uint64
}

// Chain holds the selections of one dependent selector chain.
type Chain struct {
	mu     sync.Mutex
	steps  []Step
	levels []level
}

// New builds a chain from its ordered steps.
func New(steps ...Step) (*Chain, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("cascade: at least one step is required")
	}
	for i, s := range steps {
		if s.Name == "" || s.Fetch == nil {
			return nil, fmt.Errorf("cascade: step %d needs a name and a fetch function", i)
		}
	}
	return &Chain{steps: steps, levels: make([]level, len(steps))}, nil
}

// MustNew is New for statically known steps. It panics on an invalid step list.
func MustNew(steps ...Step) *Chain {
	c, err := New(steps...)
	if err != nil {
		panic(err)
	}
	return c
}

// Depth is the number of levels.
func (c *Chain) Depth() int {
	return len(c.steps)
}

// Index returns the position of the named level.
func (c *Chain) Index(name string) (int, bool) {
	for i, s := range c.steps {
		if s.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Load fetches the root options and clears every selection.
func (c *Chain) Load(ctx context.Context) error {
	c.mu.Lock()
	c.clearFrom(0)
	gen := c.begin(0)
	c.mu.Unlock()

	return c.fetch(ctx, 0, "", gen)
}

// Select stores id at level k and invalidates everything below it. For a non-empty
// id the children are fetched; the response is applied only while the selection that
// triggered it is still current, otherwise ErrStaleResponse is returned.
func (c *Chain) Select(ctx context.Context, k int, id string) error {
	if k < 0 || k >= len(c.steps) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("niveau de sélection %d inconnu", k))
	}

	c.mu.Lock()
	if k > 0 && c.levels[k-1].selected == "" {
		c.mu.Unlock()
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("sélectionnez d'abord %s", c.steps[k-1].Name))
	}
	cur := &c.levels[k]
	if id != "" && !cur.loaded {
		c.mu.Unlock()
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("options de %s indisponibles", c.steps[k].Name))
	}
	if id != "" && !hasOption(cur.options, id) {
		c.mu.Unlock()
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("choix invalide pour %s", c.steps[k].Name))
	}
	cur.selected = id
	c.clearFrom(k + 1)

	if id == "" || k == len(c.steps)-1 {
		c.mu.Unlock()
		return nil
	}
	gen := c.begin(k + 1)
	c.mu.Unlock()

	return c.fetch(ctx, k+1, id, gen)
}

// SelectByName is Select addressed by level name.
func (c *Chain) SelectByName(ctx context.Context, name, id string) error {
	k, ok := c.Index(name)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("sélecteur %q inconnu", name))
	}
	return c.Select(ctx, k, id)
}

// Ready reports whether level k holds options from a successful fetch.
func (c *Chain) Ready(k int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if k < 0 || k >= len(c.levels) {
		return false
	}
	return c.levels[k].loaded
}

// Selected returns the current selection at level k.
func (c *Chain) Selected(k int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if k < 0 || k >= len(c.levels) {
		return ""
	}
	return c.levels[k].selected
}

// Snapshot copies the chain state.
func (c *Chain) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := Snapshot{Levels: make([]LevelState, len(c.levels))}
	for i, l := range c.levels {
		options := make([]models.Option, len(l.options))
		copy(options, l.options)
		out.Levels[i] = LevelState{
			Name:     c.steps[i].Name,
			Selected: l.selected,
			Options:  options,
			Enabled:  i == 0 || c.levels[i-1].selected != "",
			Loading:  l.loading,
			Error:    l.err,
		}
	}
	return out
}

// begin marks level k as loading and returns the generation the fetch must match.
func (c *Chain) begin(k int) uint64 {
	l := &c.levels[k]
	l.generation++
	l.loading = true
	return l.generation
}

// clearFrom resets levels k..N. Bumping the generation orphans in-flight fetches.
func (c *Chain) clearFrom(k int) {
	for i := k; i < len(c.levels); i++ {
		c.levels[i] = level{generation: c.levels[i].generation + 1}
	}
}

func (c *Chain) fetch(ctx context.Context, k int, parentID string, gen uint64) error {
	options, err := c.steps[k].Fetch(ctx, parentID)

	c.mu.Lock()
	defer c.mu.Unlock()

	l := &c.levels[k]
	if l.generation != gen || (k > 0 && c.levels[k-1].selected != parentID) {
		return appErrors.ErrStaleResponse
	}
	l.loading = false
	if err != nil {
		l.options = nil
		l.loaded = false
		l.err = appErrors.FromError(err).Message
		if appErrors.IsSessionExpiry(err) {
			return err
		}
		return nil
	}
	if options == nil {
		options = []models.Option{}
	}
	l.options = options
	l.loaded = true
	l.err = ""
	return nil
}

func hasOption(options []models.Option, id string) bool {
	for _, o := range options {
		if o.ID == id {
			return true
		}
	}
	return false
}
