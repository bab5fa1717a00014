package application

import (
	"context"

	"github.com/dmehra2102/figurine-storefront/internal/payment/domain"
)

type Gateway interface {
	Create(ctx context.Context, req domain.IntentRequest) (domain.Intent, error)
	Get(ctx context.Context, intentID string) (domain.Intent, error)
}

type PaymentRepository interface {
	Save(ctx context.Context, in domain.Intent) error
}
