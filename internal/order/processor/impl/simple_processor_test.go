package impl

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Shopify/gocheckout/internal/cart"
	cartimpl "github.com/Shopify/gocheckout/internal/cart/impl"
	"github.com/Shopify/gocheckout/internal/order"
	"github.com/Shopify/gocheckout/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestCart() *cartimpl.MemoryCart {
	return cartimpl.MakeMemoryCart("cart-42", []cart.Item{
		{ProductNumber: "SKU-1", ProductName: "Grinder", Category: "kitchen", Amount: 2, TotalPrice: 30},
		{ProductNumber: "SKU-2", ProductName: "Press", Category: "kitchen", Amount: 1, TotalPrice: 45},
	})
}

func makeTestProcessor() *SimpleOrderProcessor {
	return MakeSimpleOrderProcessor(MakeMemoryOrderRepo(), 5, time.Hour)
}

func TestGetOrCreateOrder_BuildsFromCart(t *testing.T) {
	p := makeTestProcessor()
	c := makeTestCart()

	o, err := p.GetOrCreateOrder(c)
	require.NoError(t, err)
	assert.NotEmpty(t, o.OrderNumber)
	assert.Equal(t, c.ID(), o.CartID)
	assert.Equal(t, order.StatePaymentPending, o.State)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "SKU-1", o.Items[0].ProductNumber)
	// 30 + 45 line items plus the 5 shipping fee.
	assert.Equal(t, 80.0, o.TotalPrice)
	require.Len(t, o.PriceModifications, 1)
	assert.Equal(t, "shipping", o.PriceModifications[0].Name)
	assert.Equal(t, 5.0, o.PriceModifications[0].Amount)
}

func TestGetOrCreateOrder_Idempotent(t *testing.T) {
	p := makeTestProcessor()
	c := makeTestCart()

	first, err := p.GetOrCreateOrder(c)
	require.NoError(t, err)
	second, err := p.GetOrCreateOrder(c)
	require.NoError(t, err)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)
}

func TestGetOrCreateOrder_NoShippingModificationWithoutFee(t *testing.T) {
	p := MakeSimpleOrderProcessor(MakeMemoryOrderRepo(), 0, time.Hour)
	o, err := p.GetOrCreateOrder(makeTestCart())
	require.NoError(t, err)
	assert.Empty(t, o.PriceModifications)
	assert.Equal(t, 75.0, o.TotalPrice)
}

func TestFindOrder_DoesNotCreate(t *testing.T) {
	p := makeTestProcessor()
	c := makeTestCart()

	_, err := p.FindOrder(c)
	assert.True(t, errors.Is(err, order.ErrOrderNotFound))

	_, err = p.GetOrCreateOrder(c)
	require.NoError(t, err)
	found, err := p.FindOrder(c)
	require.NoError(t, err)
	assert.Equal(t, c.ID(), found.CartID)
}

func TestGetOrCreateActivePaymentInfo_ReusesActiveAttempt(t *testing.T) {
	p := makeTestProcessor()
	o, err := p.GetOrCreateOrder(makeTestCart())
	require.NoError(t, err)

	first, err := p.GetOrCreateActivePaymentInfo(o)
	require.NoError(t, err)
	assert.NotEmpty(t, first.PaymentReference)
	assert.Equal(t, o.TotalPrice, first.Amount)
	assert.Equal(t, order.StatePaymentPending, first.State)

	second, err := p.GetOrCreateActivePaymentInfo(o)
	require.NoError(t, err)
	assert.Equal(t, first.PaymentReference, second.PaymentReference)
	assert.Len(t, o.PaymentInfos, 1)
}

func TestGetOrCreateActivePaymentInfo_NewAttemptAfterFailure(t *testing.T) {
	p := makeTestProcessor()
	c := makeTestCart()
	o, err := p.GetOrCreateOrder(c)
	require.NoError(t, err)

	first, err := p.GetOrCreateActivePaymentInfo(o)
	require.NoError(t, err)
	o, err = p.UpdateOrderPayment(payment.Status{
		State:            order.StateCancelled,
		PaymentReference: first.PaymentReference,
	})
	require.NoError(t, err)

	second, err := p.GetOrCreateActivePaymentInfo(o)
	require.NoError(t, err)
	assert.NotEqual(t, first.PaymentReference, second.PaymentReference)
	assert.Len(t, o.PaymentInfos, 2)
}

func TestUpdateOrderPayment_AuthorizedPromotesOrderState(t *testing.T) {
	p := makeTestProcessor()
	o, err := p.GetOrCreateOrder(makeTestCart())
	require.NoError(t, err)
	paymentInfo, err := p.GetOrCreateActivePaymentInfo(o)
	require.NoError(t, err)

	updated, err := p.UpdateOrderPayment(payment.Status{
		State:            order.StatePaymentAuthorized,
		PaymentReference: paymentInfo.PaymentReference,
	})
	require.NoError(t, err)
	assert.Equal(t, order.StatePaymentAuthorized, updated.State)
	require.Len(t, updated.PaymentInfos, 1)
	assert.Equal(t, order.StatePaymentAuthorized, updated.PaymentInfos[0].State)
}

func TestUpdateOrderPayment_FailureLeavesOrderPending(t *testing.T) {
	p := makeTestProcessor()
	o, err := p.GetOrCreateOrder(makeTestCart())
	require.NoError(t, err)
	paymentInfo, err := p.GetOrCreateActivePaymentInfo(o)
	require.NoError(t, err)

	updated, err := p.UpdateOrderPayment(payment.Status{
		State:            order.StateCancelled,
		PaymentReference: paymentInfo.PaymentReference,
	})
	require.NoError(t, err)
	assert.Equal(t, order.StatePaymentPending, updated.State)
	assert.Equal(t, order.StateCancelled, updated.PaymentInfos[0].State)
}

func TestUpdateOrderPayment_UnknownReference(t *testing.T) {
	p := makeTestProcessor()
	_, err := p.UpdateOrderPayment(payment.Status{
		State:            order.StateCommitted,
		PaymentReference: "no-such-ref",
	})
	assert.True(t, errors.Is(err, order.ErrOrderNotFound))
}

func TestCommitOrder_SingleWinner(t *testing.T) {
	p := makeTestProcessor()
	c := makeTestCart()

	committed, err := p.CommitOrder(c)
	require.NoError(t, err)
	assert.Equal(t, order.StateCommitted, committed.State)

	_, err = p.CommitOrder(c)
	assert.True(t, errors.Is(err, order.ErrAlreadyCommitted))
}

func TestCommitOrder_ConcurrentCallersOneWinner(t *testing.T) {
	p := makeTestProcessor()
	c := makeTestCart()
	_, err := p.GetOrCreateOrder(c)
	require.NoError(t, err)

	const callers = 8
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.CommitOrder(c)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, order.ErrAlreadyCommitted):
			losses++
		default:
			t.Fatalf("unexpected commit error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, losses)
}

func TestCleanUpPendingOrders_AbortsStaleOrders(t *testing.T) {
	repo := MakeMemoryOrderRepo()
	p := MakeSimpleOrderProcessor(repo, 5, time.Hour)

	stale := &order.Order{
		OrderNumber: "order-stale",
		CartID:      "cart-stale",
		State:       order.StatePaymentPending,
		CreatedAt:   time.Now().Add(-2 * time.Hour),
		PaymentInfos: []order.PaymentInfo{
			{PaymentReference: "ref-stale", OrderNumber: "order-stale", State: order.StatePaymentPending},
		},
	}
	_, err := repo.Create(stale)
	require.NoError(t, err)

	fresh, err := p.GetOrCreateOrder(makeTestCart())
	require.NoError(t, err)

	require.NoError(t, p.CleanUpPendingOrders())

	aborted, err := repo.FindByCartID("cart-stale")
	require.NoError(t, err)
	assert.Equal(t, order.StateAborted, aborted.State)
	assert.Equal(t, order.StateAborted, aborted.PaymentInfos[0].State)

	untouched, err := repo.FindByCartID(fresh.CartID)
	require.NoError(t, err)
	assert.Equal(t, order.StatePaymentPending, untouched.State)
}
