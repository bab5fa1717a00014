package domain

import "github.com/shopspring/decimal"

type Kind string

const (
	KindStandard Kind = "standard"
	KindCustom   Kind = "custom"
)

// CustomDetails travels with a custom-order line: the intake session, the
// reference photos the shopper uploaded and their notes.
type CustomDetails struct {
	SessionID           string   `json:"sessionId,omitempty"`
	PhotoURLs           []string `json:"photoUrls"`
	CustomerNotes       string   `json:"customerNotes,omitempty"`
	RequirementsSummary string   `json:"requirementsSummary,omitempty"`
}

// LineItem is one row of the cart. Build it with NewStandardItem or
// NewCustomItem: CatalogRef is only ever set on standard rows and Custom only
// on custom rows.
type LineItem struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	CatalogRef  string          `json:"assetId,omitempty"`
	Custom      *CustomDetails  `json:"customOrderData,omitempty"`
}

type Product struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	ImageURL    string
}

func NewStandardItem(p Product, quantity int) LineItem {
	return LineItem{
		ID:          p.ID,
		Kind:        KindStandard,
		Title:       p.Title,
		Description: p.Description,
		UnitPrice:   p.Price,
		Quantity:    quantity,
		ImageURL:    p.ImageURL,
		CatalogRef:  p.ID,
	}
}

func NewCustomItem(id, title, description string, price decimal.Decimal, imageURL string, details CustomDetails) LineItem {
	return LineItem{
		ID:          id,
		Kind:        KindCustom,
		Title:       title,
		Description: description,
		UnitPrice:   price,
		Quantity:    1,
		ImageURL:    imageURL,
		Custom:      &details,
	}
}

// Ref returns the catalog entry a standard row points at.
func (i LineItem) Ref() (string, bool) {
	if i.Kind != KindStandard || i.CatalogRef == "" {
		return "", false
	}
	return i.CatalogRef, true
}

func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i LineItem) clone() LineItem {
	if i.Custom != nil {
		c := *i.Custom
		c.PhotoURLs = append([]string(nil), i.Custom.PhotoURLs...)
		i.Custom = &c
	}
	return i
}
