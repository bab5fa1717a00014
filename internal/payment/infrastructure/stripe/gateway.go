package stripe

import (
	"context"
	"log/slog"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/dmehra2102/figurine-storefront/internal/payment/domain"
)

type Gateway struct {
	log    *slog.Logger
	client *paymentintent.Client
}

// NewGateway talks to the Stripe API. A nil backend uses the live API backend.
func NewGateway(log *slog.Logger, secretKey string, backend stripego.Backend) *Gateway {
	if backend == nil {
		backend = stripego.GetBackend(stripego.APIBackend)
	}
	return &Gateway{
		log:    log,
		client: &paymentintent.Client{B: backend, Key: secretKey},
	}
}

func (g *Gateway) Create(ctx context.Context, req domain.IntentRequest) (domain.Intent, error) {
	params := &stripego.PaymentIntentParams{
		Amount:      stripego.Int64(req.AmountMinor),
		Currency:    stripego.String(req.Currency),
		Description: stripego.String(req.Description()),
		AutomaticPaymentMethods: &stripego.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripego.Bool(true),
		},
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripego.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("orderId", req.OrderID)
	params.AddMetadata("orderNumber", req.OrderNumber)
	params.AddMetadata("customerName", req.CustomerName)
	params.AddMetadata("brand", domain.Brand)

	pi, err := g.client.New(params)
	if err != nil {
		return domain.Intent{}, err
	}
	return toIntent(pi), nil
}

func (g *Gateway) Get(ctx context.Context, intentID string) (domain.Intent, error) {
	params := &stripego.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.client.Get(intentID, params)
	if err != nil {
		return domain.Intent{}, err
	}
	return toIntent(pi), nil
}

func toIntent(pi *stripego.PaymentIntent) domain.Intent {
	in := domain.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
		Status:       domain.Status(pi.Status),
	}
	if pi.Metadata != nil {
		in.OrderID = pi.Metadata["orderId"]
		in.OrderNumber = pi.Metadata["orderNumber"]
	}
	return in
}
