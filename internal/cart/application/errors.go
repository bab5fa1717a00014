package application

import "errors"

var (
	ErrCartIDRequired     = errors.New("cart id required")
	ErrQuantityInvalid    = errors.New("quantity must be at least 1")
	ErrPriceInvalid       = errors.New("price must not be negative")
	ErrPostalCodeRequired = errors.New("postal code required")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrNotRemoteZone      = errors.New("shipping inquiry only applies to remote postal codes")
	ErrContactRequired    = errors.New("name and email required")
)
