package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func dragon(price string) Product {
	return Product{ID: "asset-dragon", Title: "Jade Dragon", Price: dec(price), ImageURL: "https://cdn.example/dragon.png"}
}

func customBust(id string) LineItem {
	return NewCustomItem(id, "Custom pet bust", "from photos", dec("100.00"), "", CustomDetails{
		PhotoURLs: []string{"https://cdn.example/p1.jpg"},
	})
}

func TestAddItemMergesStandardByCatalogRef(t *testing.T) {
	l := NewLedger()
	l.AddItem(NewStandardItem(dragon("30.00"), 1))
	l.AddItem(NewStandardItem(dragon("45.00"), 2))
	l.AddItem(NewStandardItem(dragon("12.00"), 4))

	items := l.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
	assertMoney(t, "30.00", items[0].UnitPrice)
}

func TestAddItemNeverMergesCustom(t *testing.T) {
	l := NewLedger()
	l.AddItem(customBust("c-1"))
	l.AddItem(customBust("c-2"))

	items := l.Items()
	require.Len(t, items, 2)
	assert.NotEqual(t, items[0].ID, items[1].ID)
	assert.Equal(t, 2, l.ItemCount())
}

func TestAddItemRepeatedQuantities(t *testing.T) {
	l := NewLedger()
	l.AddItem(NewStandardItem(dragon("30.00"), 1))
	l.AddItem(NewStandardItem(dragon("30.00"), 2))

	items := l.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	l := NewLedger()
	l.AddItem(NewStandardItem(dragon("30.00"), 1))
	l.AddItem(customBust("c-1"))

	l.RemoveItem("missing")
	assert.Len(t, l.Items(), 2)

	l.RemoveItem("asset-dragon")
	items := l.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "c-1", items[0].ID)
}

func TestUpdateQuantityFloor(t *testing.T) {
	for _, q := range []int{0, -1, -50} {
		l := NewLedger()
		l.AddItem(NewStandardItem(dragon("30.00"), 3))
		l.UpdateQuantity("asset-dragon", q)

		it, ok := l.Item("asset-dragon")
		require.True(t, ok)
		assert.Equal(t, 1, it.Quantity, "quantity %d", q)
	}

	l := NewLedger()
	l.AddItem(NewStandardItem(dragon("30.00"), 1))
	l.UpdateQuantity("asset-dragon", 5)
	l.UpdateQuantity("missing", 9)
	assert.Equal(t, 5, l.ItemCount())
}

func TestClearIsIdempotent(t *testing.T) {
	l := NewLedger()
	l.AddItem(NewStandardItem(dragon("30.00"), 1))
	l.SetShippingContext(QuoteShipping("M5V 3A8", DefaultLocalFee))

	for i := 0; i < 2; i++ {
		l.Clear()
		assert.Empty(t, l.Items())
		_, ok := l.ShippingContext()
		assert.False(t, ok)
		assertMoney(t, "0", l.Subtotal())
	}
}

func TestTotalsScenario(t *testing.T) {
	l := NewLedger()
	l.AddItem(NewStandardItem(dragon("30.00"), 1))
	l.AddItem(customBust("c-1"))
	l.SetShippingContext(ShippingContext{
		PostalCode: "M5V3A8",
		Zone:       ZoneLocal,
		FlatFee:    dec("20.00"),
		Region:     "ON",
		TaxRate:    dec("0.13"),
	})

	assertMoney(t, "130.00", l.Subtotal())
	assertMoney(t, "20.00", l.ShippingFee())
	assertMoney(t, "19.50", l.Tax())
	assertMoney(t, "169.50", l.Total())
	assert.Equal(t, int64(16950), MinorUnits(l.Total()))
}

func TestTaxBaseIncludesShipping(t *testing.T) {
	l := NewLedger()
	l.AddItem(NewStandardItem(dragon("30.00"), 2))
	ctx := QuoteShipping("M5V3A8", dec("20.00"))
	l.SetShippingContext(ctx)
	before := l.Tax()

	ctx.FlatFee = dec("35.00")
	l.SetShippingContext(ctx)

	assert.False(t, before.Equal(l.Tax()))
	assertMoney(t, "12.35", l.Tax())
}

func TestEffectiveShippingFee(t *testing.T) {
	cases := []struct {
		name string
		ctx  *ShippingContext
		want string
	}{
		{name: "no context", want: "0"},
		{name: "local delivery", ctx: &ShippingContext{Zone: ZoneLocal, FlatFee: dec("20"), TaxRate: dec("0.13"), Fulfillment: FulfillmentDelivery}, want: "20"},
		{name: "remote placeholder", ctx: &ShippingContext{Zone: ZoneRemote, FlatFee: dec("15"), TaxRate: dec("0.05")}, want: "0"},
		{name: "pickup", ctx: &ShippingContext{Zone: ZoneLocal, FlatFee: dec("20"), TaxRate: dec("0.13"), Fulfillment: FulfillmentPickup}, want: "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLedger()
			l.AddItem(NewStandardItem(dragon("10.00"), 1))
			if tc.ctx != nil {
				l.SetShippingContext(*tc.ctx)
			}
			assertMoney(t, tc.want, l.ShippingFee())
			assert.True(t, l.Total().Equal(l.Subtotal().Add(l.ShippingFee()).Add(l.Tax())))
		})
	}
}

func TestTotalDecompositionExact(t *testing.T) {
	l := NewLedger()
	l.AddItem(NewStandardItem(Product{ID: "a", Price: dec("19.99")}, 3))
	l.AddItem(NewStandardItem(Product{ID: "b", Price: dec("0.01")}, 7))
	l.AddItem(customBust("c"))
	l.SetShippingContext(QuoteShipping("H2X 1Y4", DefaultLocalFee))

	want := l.Subtotal().Add(l.ShippingFee()).Add(l.Tax())
	assert.True(t, want.Equal(l.Total()))
	assertMoney(t, "0.14975", l.TaxRate())
}

func TestDefaultTaxRateWithoutContext(t *testing.T) {
	l := NewLedger()
	l.AddItem(NewStandardItem(dragon("100.00"), 1))
	assertMoney(t, "13", l.Tax())
	assertMoney(t, "113", l.Total())
}

func TestEmptyLedger(t *testing.T) {
	l := NewLedger()
	assertMoney(t, "0", l.Subtotal())
	assertMoney(t, "0", l.Total())
	assert.Equal(t, 0, l.ItemCount())
	assert.True(t, l.IsEmpty())
}

func TestSnapshotExcludesShipping(t *testing.T) {
	l := NewLedger()
	l.AddItem(NewStandardItem(dragon("30.00"), 2))
	l.AddItem(customBust("c-1"))
	l.SetShippingContext(QuoteShipping("M5V3A8", DefaultLocalFee))

	raw, err := json.Marshal(l.Snapshot())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "postalCode")

	var snap Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	restored := FromSnapshot(snap)

	_, ok := restored.ShippingContext()
	assert.False(t, ok)
	assert.Equal(t, 3, restored.ItemCount())
	assertMoney(t, "160.00", restored.Subtotal())
	ref, ok := restored.Items()[0].Ref()
	assert.True(t, ok)
	assert.Equal(t, "asset-dragon", ref)
	_, ok = restored.Items()[1].Ref()
	assert.False(t, ok)
}

func TestItemsReturnsCopies(t *testing.T) {
	l := NewLedger()
	l.AddItem(customBust("c-1"))

	items := l.Items()
	items[0].Quantity = 99
	items[0].Custom.PhotoURLs[0] = "tampered"

	it, _ := l.Item("c-1")
	assert.Equal(t, 1, it.Quantity)
	assert.Equal(t, "https://cdn.example/p1.jpg", it.Custom.PhotoURLs[0])
}
