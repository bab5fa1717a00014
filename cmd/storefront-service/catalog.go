package main

import (
	"context"

	cartapp "github.com/dmehra2102/figurine-storefront/internal/cart/application"
	cartdomain "github.com/dmehra2102/figurine-storefront/internal/cart/domain"
	invapp "github.com/dmehra2102/figurine-storefront/internal/inventory/application"
)

// catalog lets the cart price standard pieces from the inventory tables.
type catalog struct {
	inv *invapp.Service
}

func (c catalog) Product(ctx context.Context, id string) (cartapp.CatalogEntry, bool, error) {
	p, found, err := c.inv.Product(ctx, id)
	if err != nil || !found {
		return cartapp.CatalogEntry{}, found, err
	}
	return cartapp.CatalogEntry{
		Product: cartdomain.Product{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
		},
		Available: p.Available(),
	}, true, nil
}
