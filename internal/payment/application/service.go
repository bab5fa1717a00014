package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmehra2102/figurine-storefront/internal/payment/domain"
)

type Service struct {
	log     *slog.Logger
	gateway Gateway
	repo    PaymentRepository
	now     func() time.Time
}

func NewService(log *slog.Logger, gateway Gateway, repo PaymentRepository) *Service {
	return &Service{log: log, gateway: gateway, repo: repo, now: time.Now}
}

func (s *Service) CreateIntent(ctx context.Context, req domain.IntentRequest) (domain.Intent, error) {
	if err := req.Validate(); err != nil {
		return domain.Intent{}, err
	}
	req.Currency = strings.ToLower(req.Currency)

	in, err := s.gateway.Create(ctx, req)
	if err != nil {
		return domain.Intent{}, fmt.Errorf("create payment intent for order %s: %w", req.OrderID, err)
	}
	in.OrderID = req.OrderID
	in.OrderNumber = req.OrderNumber
	now := s.now().UTC()
	in.CreatedAt, in.UpdatedAt = now, now

	if err := s.repo.Save(ctx, in); err != nil {
		// the intent exists at the provider; the row is rewritten on confirm
		s.log.Error("payment row save failed", "intent_id", in.ID, "order_id", in.OrderID, "err", err)
	}
	s.log.Info("payment intent created", "intent_id", in.ID, "order_id", in.OrderID, "amount", in.AmountMinor)
	return in, nil
}

// Confirm re-reads the intent from the provider. The client never tells us
// a payment went through.
func (s *Service) Confirm(ctx context.Context, orderID, intentID string) (domain.Intent, error) {
	in, err := s.gateway.Get(ctx, intentID)
	if err != nil {
		return domain.Intent{}, fmt.Errorf("get payment intent %s: %w", intentID, err)
	}
	if in.OrderID == "" {
		in.OrderID = orderID
	}
	in.UpdatedAt = s.now().UTC()
	if in.CreatedAt.IsZero() {
		in.CreatedAt = in.UpdatedAt
	}
	if err := s.repo.Save(ctx, in); err != nil {
		return domain.Intent{}, fmt.Errorf("save payment %s: %w", intentID, err)
	}
	return in, nil
}
