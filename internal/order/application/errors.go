package application

import (
	"errors"
	"strings"
)

var (
	ErrCartEmpty           = errors.New("cart is empty")
	ErrShippingRequired    = errors.New("choose delivery or pickup before checkout")
	ErrManualQuotePending  = errors.New("remote delivery needs a manual shipping quote")
	ErrItemsUnavailable    = errors.New("items no longer available")
	ErrCustomerRequired    = errors.New("customer name and email required")
	ErrAddressRequired     = errors.New("delivery address required")
	ErrPaymentNotSucceeded = errors.New("payment has not succeeded")
)

// UnavailableError names the catalog entries that sold out under the cart.
type UnavailableError struct {
	IDs []string
}

func (e *UnavailableError) Error() string {
	return ErrItemsUnavailable.Error() + ": " + strings.Join(e.IDs, ", ")
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrItemsUnavailable
}
