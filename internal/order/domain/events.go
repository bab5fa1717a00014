package domain

import "github.com/shopspring/decimal"

const (
	EventOrderPlaced = "OrderPlaced"
	EventOrderPaid   = "OrderPaid"
)

type EventItem struct {
	ItemID     string
	Kind       string
	CatalogRef string
	Title      string
	Quantity   int
	UnitPrice  decimal.Decimal
	ImageURL   string
}

type OrderPlaced struct {
	OrderID    string
	Number     string
	CartID     string
	TotalCents int64
	Items      []EventItem
}

type OrderPaid struct {
	OrderID         string
	Number          string
	CartID          string
	CustomerName    string
	CustomerEmail   string
	PaymentIntentID string
	Subtotal        decimal.Decimal
	ShippingFee     decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Currency        string
	Pickup          bool
	Items           []EventItem
}

func eventItems(items []OrderItem) []EventItem {
	out := make([]EventItem, 0, len(items))
	for _, it := range items {
		out = append(out, EventItem{
			ItemID:     it.ItemID,
			Kind:       string(it.Kind),
			CatalogRef: it.CatalogRef,
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			ImageURL:   it.ImageURL,
		})
	}
	return out
}

func (o Order) Placed() OrderPlaced {
	return OrderPlaced{
		OrderID:    o.ID,
		Number:     o.Number,
		CartID:     o.CartID,
		TotalCents: o.AmountMinor(),
		Items:      eventItems(o.Items),
	}
}

func (o Order) Paid() OrderPaid {
	return OrderPaid{
		OrderID:         o.ID,
		Number:          o.Number,
		CartID:          o.CartID,
		CustomerName:    o.Customer.Name,
		CustomerEmail:   o.Customer.Email,
		PaymentIntentID: o.PaymentIntentID,
		Subtotal:        o.Subtotal,
		ShippingFee:     o.ShippingFee,
		Tax:             o.Tax,
		Total:           o.Total,
		Currency:        o.Currency,
		Pickup:          o.Pickup,
		Items:           eventItems(o.Items),
	}
}

// StandardRefs lists the catalog entries of a paid order that should be
// marked sold.
func (e OrderPaid) StandardRefs() []string {
	var refs []string
	for _, it := range e.Items {
		if it.Kind == "standard" && it.CatalogRef != "" {
			refs = append(refs, it.CatalogRef)
		}
	}
	return refs
}
