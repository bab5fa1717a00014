package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmehra2102/figurine-storefront/internal/cart/domain"
)

// Persister writes cart snapshots in the background. Enqueue never blocks;
// a cart enqueued several times before the next flush is written once with
// its latest snapshot. A failed write is logged and retried only if the cart
// changes again. Once Run has returned, Enqueue writes through synchronously.
type Persister struct {
	log      *slog.Logger
	repo     SnapshotRepository
	interval time.Duration
	timeout  time.Duration

	flushMu sync.Mutex

	mu       sync.Mutex
	pending  map[string]domain.Snapshot
	inflight map[string]domain.Snapshot
	stopped  bool
	wake     chan struct{}
}

func NewPersister(log *slog.Logger, repo SnapshotRepository, interval time.Duration) *Persister {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &Persister{
		log:      log,
		repo:     repo,
		interval: interval,
		timeout:  2 * time.Second,
		pending:  make(map[string]domain.Snapshot),
		wake:     make(chan struct{}, 1),
	}
}

func (p *Persister) Enqueue(cartID string, snap domain.Snapshot) {
	p.mu.Lock()
	p.pending[cartID] = snap
	stopped := p.stopped
	p.mu.Unlock()

	if stopped {
		p.Flush(context.Background())
		return
	}
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Persister) Pending(cartID string) (domain.Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if snap, ok := p.pending[cartID]; ok {
		return snap, true
	}
	snap, ok := p.inflight[cartID]
	return snap, ok
}

func (p *Persister) Run(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.stopped = true
			p.mu.Unlock()
			p.Flush(context.WithoutCancel(ctx))
			p.log.Info("cart persister stopping")
			return nil
		case <-p.wake:
			p.Flush(ctx)
		case <-t.C:
			p.Flush(ctx)
		}
	}
}

// Flush writes every pending snapshot. Concurrent calls run one at a time so
// Pending keeps seeing the batch that is being written.
func (p *Persister) Flush(ctx context.Context) {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	p.mu.Lock()
	batch := p.pending
	p.pending = make(map[string]domain.Snapshot, len(batch))
	p.inflight = batch
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inflight = nil
		p.mu.Unlock()
	}()

	for cartID, snap := range batch {
		saveCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := p.repo.Save(saveCtx, cartID, snap)
		cancel()
		if err != nil {
			p.log.Warn("cart snapshot save failed", "cart_id", cartID, "err", err)
			continue
		}
		p.log.Debug("cart snapshot saved", "cart_id", cartID, "items", len(snap.Items))
	}
}
