package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
)

// DefaultPollInterval is the refresh period of polled dashboards.
const DefaultPollInterval = 10 * time.Second

// Runner produces counters; *Aggregator implements it.
type Runner interface {
	Run(ctx context.Context) (Counters, error)
}

// Poller re-runs a Runner on a fixed interval and keeps the latest snapshot.
// There is no backoff and no jitter.
type Poller struct {
	runner   Runner
	interval time.Duration
	logger   *zap.Logger
	onResult func(Snapshot)
	now      func() time.Time

	mu     sync.RWMutex
	latest Snapshot
	ready  chan struct{}
	once   sync.Once

	cancel context.CancelFunc
	done   chan struct{}
}

// PollerOption customises a Poller.
type PollerOption func(*Poller)

// WithResultHook is called after every cycle.
func WithResultHook(fn func(Snapshot)) PollerOption {
	return func(p *Poller) { p.onResult = fn }
}

// NewPoller constructs a poller. It does nothing until Start.
func NewPoller(runner Runner, interval time.Duration, logger *zap.Logger, opts ...PollerOption) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Poller{
		runner:   runner,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start runs one cycle immediately then one per interval until ctx is done or Stop.
func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		cancel()
		return
	}
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.Refresh(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Refresh(ctx)
			}
		}
	}()
}

// Stop ends polling and waits for the in-flight cycle.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Refresh runs one cycle and replaces the snapshot. A failed cycle clears the counters.
func (p *Poller) Refresh(ctx context.Context) Snapshot {
	counters, err := p.runner.Run(ctx)
	if err != nil && ctx.Err() != nil {
		return p.Latest()
	}

	snap := Snapshot{RefreshedAt: p.now()}
	if err != nil {
		snap.Err = err
		snap.Error = appErrors.FromError(err).Message
		p.logger.Warn("dashboard refresh failed", zap.Error(err))
	} else {
		snap.Counters = counters
	}

	p.mu.Lock()
	p.latest = snap
	p.mu.Unlock()
	p.once.Do(func() { close(p.ready) })

	if p.onResult != nil {
		p.onResult(snap)
	}
	return snap
}

// Latest returns the most recent snapshot.
func (p *Poller) Latest() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Wait blocks until the first cycle completes or ctx is done.
func (p *Poller) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case <-p.ready:
		return p.Latest(), nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}
