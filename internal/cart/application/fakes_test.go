package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/dmehra2102/figurine-storefront/internal/cart/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memRepo struct {
	mu      sync.Mutex
	snaps   map[string]domain.Snapshot
	saves   int
	failAll bool
	loadErr error
}

func newMemRepo() *memRepo {
	return &memRepo{snaps: map[string]domain.Snapshot{}}
}

func (r *memRepo) Save(ctx context.Context, cartID string, snap domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.failAll {
		return errors.New("quota exceeded")
	}
	r.snaps[cartID] = snap
	return nil
}

func (r *memRepo) Load(ctx context.Context, cartID string) (domain.Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return domain.Snapshot{}, false, r.loadErr
	}
	snap, ok := r.snaps[cartID]
	return snap, ok, nil
}

func (r *memRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *memRepo) stored(cartID string) (domain.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.snaps[cartID]
	return snap, ok
}

// syncWriter saves straight through so service tests stay deterministic.
type syncWriter struct {
	repo    *memRepo
	pending map[string]domain.Snapshot
}

func (w *syncWriter) Enqueue(cartID string, snap domain.Snapshot) {
	_ = w.repo.Save(context.Background(), cartID, snap)
}

func (w *syncWriter) Pending(cartID string) (domain.Snapshot, bool) {
	snap, ok := w.pending[cartID]
	return snap, ok
}

type fakeCatalog struct {
	entries map[string]CatalogEntry
	err     error
}

func (c *fakeCatalog) Product(ctx context.Context, id string) (CatalogEntry, bool, error) {
	if c.err != nil {
		return CatalogEntry{}, false, c.err
	}
	e, ok := c.entries[id]
	return e, ok, nil
}

type fakeInquiries struct {
	saved []ShippingInquiry
	err   error
}

func (f *fakeInquiries) SaveInquiry(ctx context.Context, inq ShippingInquiry) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, inq)
	return nil
}
