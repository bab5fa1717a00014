package domain

import (
	"errors"
	"time"
)

type Status string

// Provider statuses we act on; anything else is treated as still pending.
const (
	StatusRequiresPaymentMethod Status = "requires_payment_method"
	StatusRequiresConfirmation  Status = "requires_confirmation"
	StatusRequiresAction        Status = "requires_action"
	StatusProcessing            Status = "processing"
	StatusSucceeded             Status = "succeeded"
	StatusCanceled              Status = "canceled"
)

const Brand = "Figurine Junction"

var ErrInvalidAmount = errors.New("amount must be positive")

type Intent struct {
	ID           string
	OrderID      string
	OrderNumber  string
	ClientSecret string
	AmountMinor  int64
	Currency     string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (i Intent) Succeeded() bool {
	return i.Status == StatusSucceeded
}

// IntentRequest carries what the provider shows on the receipt.
type IntentRequest struct {
	OrderID       string
	OrderNumber   string
	CustomerName  string
	CustomerEmail string
	ProductTitle  string
	AmountMinor   int64
	Currency      string
}

func (r IntentRequest) Validate() error {
	if r.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r IntentRequest) Description() string {
	product := r.ProductTitle
	if product == "" {
		product = "Custom figurine"
	}
	return "Order #" + r.OrderNumber + " for " + Brand + " - " + product
}
