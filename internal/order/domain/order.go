package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	cart "github.com/dmehra2102/figurine-storefront/internal/cart/domain"
)

type OrderStatus string

const (
	StatusPending  OrderStatus = "pending"
	StatusPaid     OrderStatus = "paid"
	StatusCanceled OrderStatus = "canceled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

const DefaultCurrency = "cad"

type Customer struct {
	Name  string
	Email string
	Phone string
}

// FirstName is how the confirmation email greets the customer.
func (c Customer) FirstName() string {
	if f := strings.Fields(c.Name); len(f) > 0 {
		return f[0]
	}
	return c.Name
}

type Address struct {
	Line1      string
	City       string
	PostalCode string
}

func (a Address) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Line1, a.City, a.PostalCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type OrderItem struct {
	ItemID      string
	Kind        cart.Kind
	CatalogRef  string
	Title       string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
	ImageURL    string
}

type Order struct {
	ID              string
	Number          string
	CartID          string
	Customer        Customer
	ShippingAddress Address
	Zone            cart.Zone
	Region          cart.Region
	Pickup          bool
	Items           []OrderItem
	Subtotal        decimal.Decimal
	ShippingFee     decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Currency        string
	PaymentIntentID string
	PaymentStatus   PaymentStatus
	Status          OrderStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Pricing is what the cart owed at checkout, before rounding.
type Pricing struct {
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

func NewOrder(id, number, cartID string, customer Customer, addr Address, items []cart.LineItem, shipping *cart.ShippingContext, pricing Pricing) Order {
	o := Order{
		ID:              id,
		Number:          number,
		CartID:          cartID,
		Customer:        customer,
		ShippingAddress: addr,
		Items:           make([]OrderItem, 0, len(items)),
		Subtotal:        cart.Cents(pricing.Subtotal),
		ShippingFee:     cart.Cents(pricing.ShippingFee),
		Tax:             cart.Cents(pricing.Tax),
		Total:           cart.Cents(pricing.Total),
		Currency:        DefaultCurrency,
		PaymentStatus:   PaymentPending,
		Status:          StatusPending,
		Pickup:          shipping == nil,
		Region:          cart.DefaultRegion,
	}
	if shipping != nil {
		o.Zone = shipping.Zone
		o.Region = shipping.Region
		o.Pickup = shipping.Fulfillment == cart.FulfillmentPickup
		if o.ShippingAddress.PostalCode == "" {
			o.ShippingAddress.PostalCode = shipping.PostalCode
		}
	}
	for _, it := range items {
		ref, _ := it.Ref()
		o.Items = append(o.Items, OrderItem{
			ItemID:      it.ID,
			Kind:        it.Kind,
			CatalogRef:  ref,
			Title:       it.Title,
			Description: it.Description,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			ImageURL:    it.ImageURL,
		})
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	return o
}

// AmountMinor is the charge in cents handed to the payment provider.
func (o Order) AmountMinor() int64 {
	return cart.MinorUnits(o.Total)
}

// CatalogRefs lists the catalog entries this order consumes.
func (o Order) CatalogRefs() []string {
	var refs []string
	for _, it := range o.Items {
		if it.Kind == cart.KindStandard && it.CatalogRef != "" {
			refs = append(refs, it.CatalogRef)
		}
	}
	return refs
}

func (o *Order) MarkPaid(intentID string, at time.Time) {
	o.PaymentIntentID = intentID
	o.PaymentStatus = PaymentSucceeded
	o.Status = StatusPaid
	o.UpdatedAt = at
}

// NewOrderNumber formats FJ-YYYYMMDD-XXXXXX from the order id's leading hex.
func NewOrderNumber(at time.Time, id string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return fmt.Sprintf("FJ-%s-%s", at.UTC().Format("20060102"), suffix)
}

var ErrNotFound = errors.New("order not found")
