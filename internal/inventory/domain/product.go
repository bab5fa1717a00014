package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
)

// Product is one handcrafted piece in the catalog. Each piece exists once, so
// a sale takes it off the shelf.
type Product struct {
	ID          string
	Title       string
	Description string
	Category    string
	Price       decimal.Decimal
	ImageURL    string
	Status      Status
	UpdatedAt   time.Time
}

func (p Product) Available() bool {
	return p.Status == StatusAvailable
}

type ProductsSold struct {
	OrderID    string
	ProductIDs []string
}
