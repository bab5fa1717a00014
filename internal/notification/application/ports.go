package application

import (
	"context"

	"github.com/dmehra2102/figurine-storefront/internal/notification/domain"
)

type Mailer interface {
	Send(ctx context.Context, msg domain.Message) error
}
