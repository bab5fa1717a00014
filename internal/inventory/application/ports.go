package application

import (
	"context"

	"github.com/dmehra2102/figurine-storefront/internal/inventory/domain"
)

type ProductRepository interface {
	// Get returns found=false for an unknown id.
	Get(ctx context.Context, id string) (p domain.Product, found bool, err error)
	// Unavailable returns the ids among ids that are unknown or already sold.
	Unavailable(ctx context.Context, ids []string) ([]string, error)
	MarkSold(ctx context.Context, orderID string, ids []string) (int, error)
}
