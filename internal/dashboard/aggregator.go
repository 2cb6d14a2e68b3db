// Package dashboard computes the summary counters of the role dashboards.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source is one count-bearing request.
type Source struct {
	Name  string
	Count func(ctx context.Context) (int, error)
}

// Counters maps a source name to its count.
type Counters map[string]int

// Aggregator fans a fixed set of sources out concurrently and joins them
// all-or-nothing: one failing source fails the whole run.
type Aggregator struct {
	sources []Source
}

// NewAggregator constructs an aggregator over sources.
func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{sources: sources}
}

// Names lists the source names in declaration order.
func (a *Aggregator) Names() []string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.Name
	}
	return names
}

// Run issues every request and returns the full counter set, or the first error.
func (a *Aggregator) Run(ctx context.Context) (Counters, error) {
	results := make([]int, len(a.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			n, err := src.Count(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name, err)
			}
			results[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counters := make(Counters, len(a.sources))
	for i, src := range a.sources {
		counters[src.Name] = results[i]
	}
	return counters, nil
}

// Snapshot is the outcome of one refresh cycle. A failed cycle has no counters.
type Snapshot struct {
	Counters    Counters  `json:"counters,omitempty"`
	Err         error     `json:"-"`
	Error       string    `json:"error,omitempty"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// OK reports whether the cycle succeeded.
func (s Snapshot) OK() bool {
	return s.Err == nil && s.Counters != nil
}
