package application

import (
	"context"

	cartapp "github.com/dmehra2102/figurine-storefront/internal/cart/application"
	"github.com/dmehra2102/figurine-storefront/internal/order/domain"
	paydomain "github.com/dmehra2102/figurine-storefront/internal/payment/domain"
	"github.com/dmehra2102/figurine-storefront/pkg/outbox"
)

type OrderRepository interface {
	SaveWithOutbox(ctx context.Context, o domain.Order, rec outbox.Record) error
	// Get returns domain.ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (domain.Order, error)
	AttachPayment(ctx context.Context, id, intentID string) error
	MarkPaidWithOutbox(ctx context.Context, o domain.Order, rec outbox.Record) error
}

type Carts interface {
	View(ctx context.Context, cartID string) (cartapp.Summary, error)
	Clear(ctx context.Context, cartID string) (cartapp.Summary, error)
	ChoosePickup(ctx context.Context, cartID string) (cartapp.Summary, error)
}

type Inventory interface {
	CheckAvailability(ctx context.Context, ids []string) ([]string, error)
}

type Payments interface {
	CreateIntent(ctx context.Context, req paydomain.IntentRequest) (paydomain.Intent, error)
	Confirm(ctx context.Context, orderID, intentID string) (paydomain.Intent, error)
}
