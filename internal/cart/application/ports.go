package application

import (
	"context"

	"github.com/dmehra2102/figurine-storefront/internal/cart/domain"
)

type SnapshotRepository interface {
	Save(ctx context.Context, cartID string, snap domain.Snapshot) error
	// Load returns found=false for a cart that was never saved.
	Load(ctx context.Context, cartID string) (snap domain.Snapshot, found bool, err error)
}

// SnapshotWriter takes snapshots off the request path.
type SnapshotWriter interface {
	Enqueue(cartID string, snap domain.Snapshot)
	Pending(cartID string) (domain.Snapshot, bool)
}

type Catalog interface {
	// Product returns found=false for an unknown id.
	Product(ctx context.Context, id string) (entry CatalogEntry, found bool, err error)
}

type InquiryRepository interface {
	SaveInquiry(ctx context.Context, inq ShippingInquiry) error
}
