package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmehra2102/figurine-storefront/internal/inventory/domain"
	orderdomain "github.com/dmehra2102/figurine-storefront/internal/order/domain"
)

type Service struct {
	log  *slog.Logger
	repo ProductRepository
}

func NewService(log *slog.Logger, repo ProductRepository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) Product(ctx context.Context, id string) (domain.Product, bool, error) {
	return s.repo.Get(ctx, id)
}

// CheckAvailability returns the catalog ids that can no longer be bought.
func (s *Service) CheckAvailability(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.repo.Unavailable(ctx, dedupe(ids))
}

// ApplyPaidOrder takes the standard pieces of a paid order off the shelf.
// Custom items have no catalog entry and are ignored.
func (s *Service) ApplyPaidOrder(ctx context.Context, ev orderdomain.OrderPaid) (domain.ProductsSold, error) {
	ids := dedupe(ev.StandardRefs())
	sold := domain.ProductsSold{OrderID: ev.OrderID, ProductIDs: ids}
	if len(ids) == 0 {
		return sold, nil
	}
	n, err := s.repo.MarkSold(ctx, ev.OrderID, ids)
	if err != nil {
		return sold, fmt.Errorf("mark sold for order %s: %w", ev.OrderID, err)
	}
	if n < len(ids) {
		// already sold through another order; needs a human
		s.log.Warn("some products were already sold", "order_id", ev.OrderID, "requested", len(ids), "updated", n)
	}
	return sold, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
