package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	cart "github.com/dmehra2102/figurine-storefront/internal/cart/domain"
	"github.com/dmehra2102/figurine-storefront/internal/order/domain"
	paydomain "github.com/dmehra2102/figurine-storefront/internal/payment/domain"
	"github.com/dmehra2102/figurine-storefront/pkg/outbox"
	"github.com/dmehra2102/figurine-storefront/pkg/tracing"
)

const source = "storefront-service"

type CheckoutRequest struct {
	CartID   string
	Customer domain.Customer
	Address  domain.Address
	Pickup   bool
}

type CheckoutResult struct {
	Order        domain.Order
	ClientSecret string
}

type Service struct {
	log       *slog.Logger
	repo      OrderRepository
	carts     Carts
	inventory Inventory
	payments  Payments
	now       func() time.Time
}

func NewService(log *slog.Logger, repo OrderRepository, carts Carts, inventory Inventory, payments Payments) *Service {
	return &Service{
		log:       log,
		repo:      repo,
		carts:     carts,
		inventory: inventory,
		payments:  payments,
		now:       time.Now,
	}
}

func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	if err := validateCustomer(req.Customer); err != nil {
		return CheckoutResult{}, err
	}

	sum, err := s.carts.View(ctx, req.CartID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(sum.Items) == 0 {
		return CheckoutResult{}, ErrCartEmpty
	}
	switch {
	case req.Pickup:
		if sum.Shipping != nil {
			// a delivery quote from earlier must not be charged
			if sum, err = s.carts.ChoosePickup(ctx, req.CartID); err != nil {
				return CheckoutResult{}, err
			}
		}
	case sum.Shipping == nil:
		return CheckoutResult{}, ErrShippingRequired
	case sum.Shipping.Zone == cart.ZoneRemote:
		return CheckoutResult{}, ErrManualQuotePending
	case strings.TrimSpace(req.Address.Line1) == "":
		return CheckoutResult{}, ErrAddressRequired
	}

	now := s.now().UTC()
	id := uuid.NewString()
	o := domain.NewOrder(id, domain.NewOrderNumber(now, id), req.CartID, req.Customer, req.Address, sum.Items, sum.Shipping, domain.Pricing{
		Subtotal:    sum.Subtotal,
		ShippingFee: sum.ShippingFee,
		Tax:         sum.Tax,
		Total:       sum.Total,
	})

	if refs := o.CatalogRefs(); len(refs) > 0 {
		gone, err := s.inventory.CheckAvailability(ctx, refs)
		if err != nil {
			return CheckoutResult{}, fmt.Errorf("check availability: %w", err)
		}
		if len(gone) > 0 {
			return CheckoutResult{}, &UnavailableError{IDs: gone}
		}
	}

	rec, err := record(ctx, o.ID, domain.EventOrderPlaced, o.Placed())
	if err != nil {
		return CheckoutResult{}, err
	}
	if err := s.repo.SaveWithOutbox(ctx, o, rec); err != nil {
		return CheckoutResult{}, fmt.Errorf("save order: %w", err)
	}

	intent, err := s.payments.CreateIntent(ctx, paydomain.IntentRequest{
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		ProductTitle:  o.Items[0].Title,
		AmountMinor:   o.AmountMinor(),
		Currency:      o.Currency,
	})
	if err != nil {
		return CheckoutResult{}, err
	}
	if err := s.repo.AttachPayment(ctx, o.ID, intent.ID); err != nil {
		return CheckoutResult{}, fmt.Errorf("attach payment to order %s: %w", o.ID, err)
	}
	o.PaymentIntentID = intent.ID

	s.log.Info("order placed", "order_id", o.ID, "number", o.Number, "cart_id", o.CartID, "total", o.Total.StringFixed(2))
	return CheckoutResult{Order: o, ClientSecret: intent.ClientSecret}, nil
}

// ConfirmPayment marks the order paid once the provider reports success and
// only then empties the cart.
func (s *Service) ConfirmPayment(ctx context.Context, orderID string) (domain.Order, error) {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if o.Status == domain.StatusPaid {
		return o, nil
	}
	if o.PaymentIntentID == "" {
		return domain.Order{}, ErrPaymentNotSucceeded
	}

	intent, err := s.payments.Confirm(ctx, o.ID, o.PaymentIntentID)
	if err != nil {
		return domain.Order{}, err
	}
	if !intent.Succeeded() {
		return domain.Order{}, fmt.Errorf("%w: status %s", ErrPaymentNotSucceeded, intent.Status)
	}

	o.MarkPaid(intent.ID, s.now().UTC())
	rec, err := record(ctx, o.ID, domain.EventOrderPaid, o.Paid())
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.MarkPaidWithOutbox(ctx, o, rec); err != nil {
		return domain.Order{}, fmt.Errorf("mark order %s paid: %w", o.ID, err)
	}

	if _, err := s.carts.Clear(ctx, o.CartID); err != nil {
		s.log.Error("cart clear after payment failed", "cart_id", o.CartID, "order_id", o.ID, "err", err)
	}
	s.log.Info("order paid", "order_id", o.ID, "intent_id", intent.ID)
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

func validateCustomer(c domain.Customer) error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Email) == "" {
		return ErrCustomerRequired
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return errors.Join(ErrCustomerRequired, err)
	}
	return nil
}

func record(ctx context.Context, orderID, eventType string, event any) (outbox.Record, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return outbox.Record{}, err
	}
	return outbox.Record{
		AggregateType: "order",
		AggregateID:   orderID,
		Type:          eventType,
		Payload:       payload,
		Headers:       map[string]string{"source": source},
		Traceparent:   tracing.Traceparent(ctx),
	}, nil
}
