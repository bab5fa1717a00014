package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/figurine-storefront/internal/inventory/domain"
	orderdomain "github.com/dmehra2102/figurine-storefront/internal/order/domain"
)

type memProducts struct {
	products map[string]domain.Product
	sales    map[string][]string
	err      error
}

func (m *memProducts) Get(ctx context.Context, id string) (domain.Product, bool, error) {
	p, ok := m.products[id]
	return p, ok, nil
}

func (m *memProducts) Unavailable(ctx context.Context, ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if p, ok := m.products[id]; !ok || !p.Available() {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memProducts) MarkSold(ctx context.Context, orderID string, ids []string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, id := range ids {
		p, ok := m.products[id]
		if !ok || !p.Available() {
			continue
		}
		p.Status = domain.StatusSold
		m.products[id] = p
		m.sales[orderID] = append(m.sales[orderID], id)
		n++
	}
	return n, nil
}

func newService() (*Service, *memProducts) {
	repo := &memProducts{
		products: map[string]domain.Product{
			"asset-owl": {ID: "asset-owl", Status: domain.StatusAvailable},
			"asset-fox": {ID: "asset-fox", Status: domain.StatusSold},
			"asset-elk": {ID: "asset-elk", Status: domain.StatusAvailable},
		},
		sales: map[string][]string{},
	}
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo), repo
}

func TestCheckAvailability(t *testing.T) {
	svc, _ := newService()

	missing, err := svc.CheckAvailability(context.Background(), []string{"asset-owl", "asset-fox", "asset-none", "asset-fox"})
	require.NoError(t, err)
	assert.Equal(t, []string{"asset-fox", "asset-none"}, missing)

	missing, err = svc.CheckAvailability(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestApplyPaidOrderSkipsCustomItems(t *testing.T) {
	svc, repo := newService()

	sold, err := svc.ApplyPaidOrder(context.Background(), orderdomain.OrderPaid{
		OrderID: "order-1",
		Items: []orderdomain.EventItem{
			{Kind: "standard", CatalogRef: "asset-owl", Quantity: 1},
			{Kind: "custom", ItemID: "c-1", Quantity: 1},
			{Kind: "standard", CatalogRef: "asset-elk", Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"asset-owl", "asset-elk"}, sold.ProductIDs)
	assert.Equal(t, domain.StatusSold, repo.products["asset-owl"].Status)
	assert.Equal(t, domain.StatusSold, repo.products["asset-elk"].Status)
}

func TestApplyPaidOrderWithoutStandardItems(t *testing.T) {
	svc, repo := newService()
	repo.err = errors.New("should not be called")

	sold, err := svc.ApplyPaidOrder(context.Background(), orderdomain.OrderPaid{
		OrderID: "order-2",
		Items:   []orderdomain.EventItem{{Kind: "custom", ItemID: "c-1"}},
	})
	require.NoError(t, err)
	assert.Empty(t, sold.ProductIDs)
}

func TestApplyPaidOrderError(t *testing.T) {
	svc, repo := newService()
	repo.err = errors.New("connection reset")

	_, err := svc.ApplyPaidOrder(context.Background(), orderdomain.OrderPaid{
		OrderID: "order-3",
		Items:   []orderdomain.EventItem{{Kind: "standard", CatalogRef: "asset-owl"}},
	})
	assert.ErrorContains(t, err, "order-3")
}
