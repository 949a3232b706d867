package tracking

import (
	"testing"

	"github.com/Shopify/gocheckout/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCommittedOrder() *order.Order {
	return &order.Order{
		OrderNumber: "order-7",
		CartID:      "cart-7",
		TotalPrice:  35,
		State:       order.StateCommitted,
		Items: []order.Item{
			{ProductNumber: "SKU-1", ProductName: "Espresso Grinder", Category: "kitchen", Amount: 2, TotalPrice: 30},
		},
		PriceModifications: []order.PriceModification{
			{Name: "shipping", Amount: 5},
		},
	}
}

func TestBuildTransaction(t *testing.T) {
	tx := BuildTransaction(makeCommittedOrder())

	assert.Equal(t, "order-7", tx.OrderNumber)
	assert.Equal(t, 35.0, tx.Revenue)
	assert.Equal(t, 5.0, tx.Shipping)
	require.Len(t, tx.Items, 1)
	// 30 total over 2 units.
	assert.Equal(t, 15.0, tx.Items[0].UnitPrice)
	assert.Equal(t, 2, tx.Items[0].Quantity)
	assert.Equal(t, "order-7", tx.Items[0].OrderNumber)
}

func TestBuildTransaction_ZeroQuantityKeepsTotalAsUnitPrice(t *testing.T) {
	o := makeCommittedOrder()
	o.Items[0].Amount = 0

	tx := BuildTransaction(o)
	assert.Equal(t, 30.0, tx.Items[0].UnitPrice)
}

func TestBuildTransaction_NoShippingModification(t *testing.T) {
	o := makeCommittedOrder()
	o.PriceModifications = nil

	tx := BuildTransaction(o)
	assert.Equal(t, 0.0, tx.Shipping)
}

func TestBuildTransaction_SanitizesProductNames(t *testing.T) {
	o := makeCommittedOrder()
	o.Items[0].ProductName = "Espresso\nGrinder"

	tx := BuildTransaction(o)
	assert.Equal(t, "Espresso Grinder", tx.Items[0].ProductName)
}

func TestRenderClassic(t *testing.T) {
	rendered := RenderClassic(BuildTransaction(makeCommittedOrder()))

	assert.Contains(t, rendered, "_gaq.push(['_addTrans', 'order-7', '', '35.00', '', '5.00', '', '', '']);")
	assert.Contains(t, rendered, "_gaq.push(['_addItem', 'order-7', 'SKU-1', 'Espresso Grinder', 'kitchen', '15.00', '2']);")
	assert.Contains(t, rendered, "_gaq.push(['_trackTrans']);")
}

func TestRenderUniversal(t *testing.T) {
	rendered := RenderUniversal(BuildTransaction(makeCommittedOrder()))

	assert.Contains(t, rendered, "ga('require', 'ecommerce', 'ecommerce.js');")
	assert.Contains(t, rendered, "'id': 'order-7'")
	assert.Contains(t, rendered, "'revenue': '35.00'")
	assert.Contains(t, rendered, "'shipping': '5.00'")
	assert.Contains(t, rendered, "'price': '15.00'")
	assert.Contains(t, rendered, "'quantity': '2'")
	assert.Contains(t, rendered, "ga('ecommerce:send');")
}
