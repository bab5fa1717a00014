package domain

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

type Zone string

const (
	ZoneLocal  Zone = "local"
	ZoneRemote Zone = "remote"
)

type Fulfillment string

const (
	FulfillmentDelivery Fulfillment = "delivery"
	FulfillmentPickup   Fulfillment = "pickup"
)

type Region string

const DefaultRegion Region = "ON"

type ShippingContext struct {
	PostalCode  string          `json:"postalCode"`
	Zone        Zone            `json:"zone"`
	FlatFee     decimal.Decimal `json:"flatFee"`
	Region      Region          `json:"region"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Fulfillment Fulfillment     `json:"fulfillment,omitempty"`
}

// Greater Toronto Area prefixes. A single letter covers the whole forward
// sortation range it starts.
var localPrefixes = map[string]struct{}{
	"M": {}, "L4": {}, "L5": {}, "L6": {}, "L7": {}, "L9": {}, "N": {},
}

var regionByFirstChar = map[byte]Region{
	'A': "NL",
	'B': "NS",
	'C': "PE",
	'E': "NB",
	'G': "QC", 'H': "QC", 'J': "QC",
	'K': "ON", 'L': "ON", 'M': "ON", 'N': "ON", 'P': "ON",
	'R': "MB",
	'S': "SK",
	'T': "AB",
	'V': "BC",
	'X': "NT",
	'Y': "YT",
}

var taxRates = map[Region]decimal.Decimal{
	"ON": decimal.RequireFromString("0.13"),
	"QC": decimal.RequireFromString("0.14975"),
	"BC": decimal.RequireFromString("0.12"),
	"AB": decimal.RequireFromString("0.05"),
	"SK": decimal.RequireFromString("0.11"),
	"MB": decimal.RequireFromString("0.12"),
	"NS": decimal.RequireFromString("0.15"),
	"NB": decimal.RequireFromString("0.15"),
	"NL": decimal.RequireFromString("0.15"),
	"PE": decimal.RequireFromString("0.15"),
	"YT": decimal.RequireFromString("0.05"),
	"NT": decimal.RequireFromString("0.05"),
	"NU": decimal.RequireFromString("0.05"),
}

// DefaultLocalFee is the flat delivery fee inside the local zone.
var DefaultLocalFee = decimal.RequireFromString("20.00")

func NormalizePostalCode(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}

func ClassifyZone(postal string) Zone {
	code := NormalizePostalCode(postal)
	for n := 3; n >= 1; n-- {
		if len(code) < n {
			continue
		}
		if _, ok := localPrefixes[code[:n]]; ok {
			return ZoneLocal
		}
	}
	return ZoneRemote
}

func RegionFor(postal string) Region {
	code := NormalizePostalCode(postal)
	if code == "" {
		return DefaultRegion
	}
	if r, ok := regionByFirstChar[code[0]]; ok {
		return r
	}
	return DefaultRegion
}

func TaxRateFor(region Region) decimal.Decimal {
	if rate, ok := taxRates[region]; ok {
		return rate
	}
	return taxRates[DefaultRegion]
}

func DefaultTaxRate() decimal.Decimal {
	return taxRates[DefaultRegion]
}

// QuoteShipping builds the delivery context for a postal code. Remote codes
// get a zero placeholder fee pending a manual quote.
func QuoteShipping(postal string, localFee decimal.Decimal) ShippingContext {
	code := NormalizePostalCode(postal)
	region := RegionFor(code)
	ctx := ShippingContext{
		PostalCode:  code,
		Zone:        ClassifyZone(code),
		FlatFee:     decimal.Zero,
		Region:      region,
		TaxRate:     TaxRateFor(region),
		Fulfillment: FulfillmentDelivery,
	}
	if ctx.Zone == ZoneLocal {
		ctx.FlatFee = localFee
	}
	return ctx
}
