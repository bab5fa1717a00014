package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePostalCode(t *testing.T) {
	assert.Equal(t, "M5V3A8", NormalizePostalCode("m5v 3a8"))
	assert.Equal(t, "L4B1B3", NormalizePostalCode("  l4b\t1b3 \n"))
	assert.Equal(t, "", NormalizePostalCode("   "))
}

func TestClassifyZone(t *testing.T) {
	cases := map[string]Zone{
		"m5v 3a8": ZoneLocal,
		"L4B1B3":  ZoneLocal,
		"L9T 0A1": ZoneLocal,
		"N2L3G1":  ZoneLocal,
		"L3R 0B1": ZoneRemote,
		"K1A0B1":  ZoneRemote,
		"V6B 1A1": ZoneRemote,
		"":        ZoneRemote,
	}
	for code, want := range cases {
		assert.Equal(t, want, ClassifyZone(code), "postal %q", code)
	}
}

func TestRegionAndTaxRate(t *testing.T) {
	cases := []struct {
		postal string
		region Region
		rate   string
	}{
		{"M5V3A8", "ON", "0.13"},
		{"h2x 1y4", "QC", "0.14975"},
		{"V6B1A1", "BC", "0.12"},
		{"T2P1J9", "AB", "0.05"},
		{"B3H 4R2", "NS", "0.15"},
		{"X1A2P7", "NT", "0.05"},
		{"D1A2B3", DefaultRegion, "0.13"},
		{"9999", DefaultRegion, "0.13"},
		{"", DefaultRegion, "0.13"},
	}
	for _, tc := range cases {
		t.Run(tc.postal, func(t *testing.T) {
			region := RegionFor(tc.postal)
			assert.Equal(t, tc.region, region)
			assertMoney(t, tc.rate, TaxRateFor(region))
		})
	}
	assertMoney(t, "0.13", TaxRateFor("ZZ"))
}

func TestQuoteShipping(t *testing.T) {
	local := QuoteShipping("m5v 3a8", dec("20.00"))
	assert.Equal(t, "M5V3A8", local.PostalCode)
	assert.Equal(t, ZoneLocal, local.Zone)
	assertMoney(t, "20", local.FlatFee)
	assert.Equal(t, Region("ON"), local.Region)
	assert.Equal(t, FulfillmentDelivery, local.Fulfillment)

	remote := QuoteShipping("V6B 1A1", dec("20.00"))
	assert.Equal(t, ZoneRemote, remote.Zone)
	assertMoney(t, "0", remote.FlatFee)
	assertMoney(t, "0.12", remote.TaxRate)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(16950), MinorUnits(dec("169.50")))
	assert.Equal(t, int64(1130), MinorUnits(dec("11.295")))
	assert.Equal(t, int64(1129), MinorUnits(dec("11.2949")))
	assert.Equal(t, int64(0), MinorUnits(decimal.Zero))
	assertMoney(t, "11.30", Cents(dec("11.295")))
}
