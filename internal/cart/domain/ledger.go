package domain

import "github.com/shopspring/decimal"

// Snapshot is the durable part of a ledger. Shipping and every derived
// amount are recomputed per session and never stored.
type Snapshot struct {
	Items []LineItem `json:"items"`
}

// Ledger holds the cart rows and the current shipping context. It is not safe
// for concurrent use; callers serialize access.
type Ledger struct {
	items    []LineItem
	shipping *ShippingContext
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func FromSnapshot(s Snapshot) *Ledger {
	l := NewLedger()
	l.Restore(s)
	return l
}

// AddItem merges standard rows by catalog reference (the first price wins) and
// appends everything else. Quantity must be positive.
func (l *Ledger) AddItem(item LineItem) {
	if ref, ok := item.Ref(); ok {
		for i := range l.items {
			if existing, ok := l.items[i].Ref(); ok && existing == ref {
				l.items[i].Quantity += item.Quantity
				return
			}
		}
	}
	l.items = append(l.items, item.clone())
}

func (l *Ledger) RemoveItem(id string) {
	kept := l.items[:0]
	for _, it := range l.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	clear(l.items[len(kept):])
	l.items = kept
}

func (l *Ledger) UpdateQuantity(id string, quantity int) {
	quantity = max(quantity, 1)
	for i := range l.items {
		if l.items[i].ID == id {
			l.items[i].Quantity = quantity
		}
	}
}

func (l *Ledger) Clear() {
	l.items = nil
	l.shipping = nil
}

func (l *Ledger) SetShippingContext(ctx ShippingContext) {
	l.shipping = &ctx
}

func (l *Ledger) ClearShippingContext() {
	l.shipping = nil
}

func (l *Ledger) ShippingContext() (ShippingContext, bool) {
	if l.shipping == nil {
		return ShippingContext{}, false
	}
	return *l.shipping, true
}

func (l *Ledger) Items() []LineItem {
	out := make([]LineItem, len(l.items))
	for i, it := range l.items {
		out[i] = it.clone()
	}
	return out
}

func (l *Ledger) Item(id string) (LineItem, bool) {
	for _, it := range l.items {
		if it.ID == id {
			return it.clone(), true
		}
	}
	return LineItem{}, false
}

func (l *Ledger) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range l.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// ShippingFee is the fee that actually applies: the flat fee of a local
// delivery, zero for pickup, remote zones or no quote at all.
func (l *Ledger) ShippingFee() decimal.Decimal {
	if l.shipping == nil || l.shipping.Zone != ZoneLocal || l.shipping.Fulfillment == FulfillmentPickup {
		return decimal.Zero
	}
	return l.shipping.FlatFee
}

func (l *Ledger) TaxRate() decimal.Decimal {
	if l.shipping == nil || l.shipping.TaxRate.IsZero() {
		return DefaultTaxRate()
	}
	return l.shipping.TaxRate
}

// Tax is charged on the subtotal plus shipping; shipping is a taxable supply.
func (l *Ledger) Tax() decimal.Decimal {
	return l.Subtotal().Add(l.ShippingFee()).Mul(l.TaxRate())
}

func (l *Ledger) Total() decimal.Decimal {
	return l.Subtotal().Add(l.ShippingFee()).Add(l.Tax())
}

func (l *Ledger) ItemCount() int {
	n := 0
	for _, it := range l.items {
		n += it.Quantity
	}
	return n
}

func (l *Ledger) IsEmpty() bool {
	return len(l.items) == 0
}

func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{Items: l.Items()}
}

// Restore replaces the rows with a stored snapshot and drops any shipping
// context, which must be quoted again.
func (l *Ledger) Restore(s Snapshot) {
	l.items = nil
	for _, it := range s.Items {
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		l.items = append(l.items, it.clone())
	}
	l.shipping = nil
}
