package impl

import (
	"errors"
	"testing"
	"time"

	"github.com/Shopify/gocheckout/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestOrder(cartID, orderNumber string) *order.Order {
	now := time.Now()
	return &order.Order{
		OrderNumber: orderNumber,
		CartID:      cartID,
		TotalPrice:  35,
		State:       order.StatePaymentPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestMemoryRepo_CreateReturnsExistingOnSecondCall(t *testing.T) {
	repo := MakeMemoryOrderRepo()

	first, err := repo.Create(makeTestOrder("cart-1", "order-1"))
	require.NoError(t, err)
	second, err := repo.Create(makeTestOrder("cart-1", "order-2"))
	require.NoError(t, err)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)
}

func TestMemoryRepo_FindByIndexes(t *testing.T) {
	repo := MakeMemoryOrderRepo()
	o := makeTestOrder("cart-1", "order-1")
	o.PaymentInfos = []order.PaymentInfo{
		{PaymentReference: "ref-1", OrderNumber: "order-1", State: order.StatePaymentPending},
	}
	_, err := repo.Create(o)
	require.NoError(t, err)

	byNum, err := repo.FindByOrderNumber("order-1")
	require.NoError(t, err)
	assert.Equal(t, "cart-1", byNum.CartID)

	byRef, err := repo.FindByPaymentReference("ref-1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", byRef.OrderNumber)

	_, err = repo.FindByCartID("cart-404")
	assert.True(t, errors.Is(err, order.ErrOrderNotFound))
	_, err = repo.FindByOrderNumber("order-404")
	assert.True(t, errors.Is(err, order.ErrOrderNotFound))
	_, err = repo.FindByPaymentReference("ref-404")
	assert.True(t, errors.Is(err, order.ErrOrderNotFound))
}

func TestMemoryRepo_FindReturnsCopy(t *testing.T) {
	repo := MakeMemoryOrderRepo()
	_, err := repo.Create(makeTestOrder("cart-1", "order-1"))
	require.NoError(t, err)

	found, err := repo.FindByCartID("cart-1")
	require.NoError(t, err)
	found.State = order.StateAborted

	again, err := repo.FindByCartID("cart-1")
	require.NoError(t, err)
	assert.Equal(t, order.StatePaymentPending, again.State)
}

func TestMemoryRepo_CommitCartOrder(t *testing.T) {
	repo := MakeMemoryOrderRepo()
	_, err := repo.Create(makeTestOrder("cart-1", "order-1"))
	require.NoError(t, err)

	committed, err := repo.CommitCartOrder("cart-1")
	require.NoError(t, err)
	assert.Equal(t, order.StateCommitted, committed.State)

	_, err = repo.CommitCartOrder("cart-1")
	assert.True(t, errors.Is(err, order.ErrAlreadyCommitted))

	_, err = repo.CommitCartOrder("cart-404")
	assert.True(t, errors.Is(err, order.ErrOrderNotFound))
}

func TestMemoryRepo_SaveCannotUncommit(t *testing.T) {
	repo := MakeMemoryOrderRepo()
	_, err := repo.Create(makeTestOrder("cart-1", "order-1"))
	require.NoError(t, err)
	_, err = repo.CommitCartOrder("cart-1")
	require.NoError(t, err)

	// A stale writer still holding a pre-commit snapshot must not regress
	// the committed state.
	stale := makeTestOrder("cart-1", "order-1")
	stale.State = order.StatePaymentAuthorized
	require.NoError(t, repo.Save(stale))

	found, err := repo.FindByCartID("cart-1")
	require.NoError(t, err)
	assert.Equal(t, order.StateCommitted, found.State)
}

func TestMemoryRepo_PendingOrdersOlderThan(t *testing.T) {
	repo := MakeMemoryOrderRepo()

	stale := makeTestOrder("cart-old", "order-old")
	stale.CreatedAt = time.Now().Add(-3 * time.Hour)
	_, err := repo.Create(stale)
	require.NoError(t, err)

	fresh := makeTestOrder("cart-new", "order-new")
	_, err = repo.Create(fresh)
	require.NoError(t, err)

	committed := makeTestOrder("cart-done", "order-done")
	committed.CreatedAt = time.Now().Add(-3 * time.Hour)
	_, err = repo.Create(committed)
	require.NoError(t, err)
	_, err = repo.CommitCartOrder("cart-done")
	require.NoError(t, err)

	pending, err := repo.PendingOrdersOlderThan(time.Hour)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "order-old", pending[0].OrderNumber)
}
