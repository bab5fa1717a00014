package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmehra2102/figurine-storefront/internal/cart/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func snapWith(qty int) domain.Snapshot {
	return domain.Snapshot{Items: []domain.LineItem{
		domain.NewStandardItem(domain.Product{ID: "asset-owl", Price: decimal.RequireFromString("30")}, qty),
	}}
}

func TestPersisterCoalescesToLatest(t *testing.T) {
	repo := newMemRepo()
	p := NewPersister(quietLogger(), repo, time.Hour)

	p.Enqueue("cart-1", snapWith(1))
	p.Enqueue("cart-1", snapWith(2))
	p.Enqueue("cart-1", snapWith(3))

	pending, ok := p.Pending("cart-1")
	require.True(t, ok)
	assert.Equal(t, 3, pending.Items[0].Quantity)

	p.Flush(context.Background())

	assert.Equal(t, 1, repo.saveCount())
	stored, ok := repo.stored("cart-1")
	require.True(t, ok)
	assert.Equal(t, 3, stored.Items[0].Quantity)
	_, ok = p.Pending("cart-1")
	assert.False(t, ok)
}

func TestPersisterSaveFailureIsSwallowed(t *testing.T) {
	repo := newMemRepo()
	repo.failAll = true
	p := NewPersister(quietLogger(), repo, time.Hour)

	p.Enqueue("cart-1", snapWith(1))
	p.Flush(context.Background())

	assert.Equal(t, 1, repo.saveCount())
	_, ok := repo.stored("cart-1")
	assert.False(t, ok)

	repo.mu.Lock()
	repo.failAll = false
	repo.mu.Unlock()
	p.Enqueue("cart-1", snapWith(2))
	p.Flush(context.Background())

	stored, ok := repo.stored("cart-1")
	require.True(t, ok)
	assert.Equal(t, 2, stored.Items[0].Quantity)
}

func TestPersisterRunWritesAndFlushesOnStop(t *testing.T) {
	repo := newMemRepo()
	p := NewPersister(quietLogger(), repo, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	p.Enqueue("cart-1", snapWith(1))
	require.Eventually(t, func() bool {
		_, ok := repo.stored("cart-1")
		return ok
	}, time.Second, 5*time.Millisecond)

	p.Enqueue("cart-2", snapWith(4))
	cancel()
	require.NoError(t, <-done)

	stored, ok := repo.stored("cart-2")
	require.True(t, ok)
	assert.Equal(t, 4, stored.Items[0].Quantity)
}

func TestPersisterWritesThroughAfterStop(t *testing.T) {
	repo := newMemRepo()
	p := NewPersister(quietLogger(), repo, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()
	require.NoError(t, <-done)

	// a request still draining after the loop has exited
	p.Enqueue("cart-1", snapWith(2))

	stored, ok := repo.stored("cart-1")
	require.True(t, ok)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	_, ok = p.Pending("cart-1")
	assert.False(t, ok)
}

type gatedRepo struct {
	*memRepo
	entered chan string
	release chan struct{}
}

func (r *gatedRepo) Save(ctx context.Context, cartID string, snap domain.Snapshot) error {
	r.entered <- cartID
	<-r.release
	return r.memRepo.Save(ctx, cartID, snap)
}

func TestPersisterConcurrentFlushKeepsInflightVisible(t *testing.T) {
	repo := &gatedRepo{memRepo: newMemRepo(), entered: make(chan string, 2), release: make(chan struct{})}
	p := NewPersister(quietLogger(), repo, time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	p.Enqueue("cart-1", snapWith(1))
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Flush(ctx)
	}()
	require.Equal(t, "cart-1", <-repo.entered)

	p.Enqueue("cart-2", snapWith(2))
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Flush(ctx)
	}()
	time.Sleep(20 * time.Millisecond)

	_, ok := p.Pending("cart-1")
	assert.True(t, ok, "snapshot being written stays visible")
	_, ok = p.Pending("cart-2")
	assert.True(t, ok)

	close(repo.release)
	wg.Wait()

	for _, id := range []string{"cart-1", "cart-2"} {
		_, ok := repo.stored(id)
		assert.True(t, ok, id)
		_, ok = p.Pending(id)
		assert.False(t, ok, id)
	}
}

func TestServiceWithPersister(t *testing.T) {
	repo := newMemRepo()
	p := NewPersister(quietLogger(), repo, time.Hour)
	svc, err := NewService(quietLogger(), repo, p, &fakeCatalog{entries: map[string]CatalogEntry{
		"asset-owl": {Product: domain.Product{ID: "asset-owl", Price: decimal.RequireFromString("30")}, Available: true},
	}}, &fakeInquiries{}, 8)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.AddProduct(ctx, "cart-1", "asset-owl", 2)
	require.NoError(t, err)

	svc.Forget("cart-1")
	sum, err := svc.View(ctx, "cart-1")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.ItemCount, "unsaved snapshot is visible to a fresh session")

	p.Flush(ctx)
	stored, ok := repo.stored("cart-1")
	require.True(t, ok)
	assert.Equal(t, 2, stored.Items[0].Quantity)
}
