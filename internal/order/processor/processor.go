package processor

import (
	"time"

	"github.com/Shopify/gocheckout/internal/cart"
	"github.com/Shopify/gocheckout/internal/order"
	"github.com/Shopify/gocheckout/internal/payment"
)

// CommitOrderProcessor owns order and payment-info persistence and the
// authoritative commit transition. The checkout session provides no
// inter-request mutual exclusion, so correctness under concurrent requests
// rests entirely on this contract: GetOrCreateOrder is idempotent per cart,
// and CommitOrder has exactly one winner (losers observe
// order.ErrAlreadyCommitted).
type CommitOrderProcessor interface {
	// FindOrder looks up the cart's order without creating one; returns
	// order.ErrOrderNotFound when the cart has never started payment/commit.
	FindOrder(c cart.Cart) (*order.Order, error)
	GetOrCreateOrder(c cart.Cart) (*order.Order, error)
	GetOrCreateActivePaymentInfo(o *order.Order) (*order.PaymentInfo, error)
	UpdateOrderPayment(status payment.Status) (*order.Order, error)
	CommitOrder(c cart.Cart) (*order.Order, error)
	CleanUpPendingOrders() error
}

// OrderRepo is the storage capability behind the processor. CommitCartOrder
// is the single-winner check-and-set: it transitions the cart's order to
// committed iff it is not committed yet.
type OrderRepo interface {
	// Create stores a fresh order unless the cart already has one; the
	// stored order (existing one on a lost race) is returned either way.
	Create(o *order.Order) (*order.Order, error)
	FindByCartID(cartID string) (*order.Order, error)
	FindByOrderNumber(orderNumber string) (*order.Order, error)
	FindByPaymentReference(paymentReference string) (*order.Order, error)
	Save(o *order.Order) error
	CommitCartOrder(cartID string) (*order.Order, error)
	PendingOrdersOlderThan(age time.Duration) ([]*order.Order, error)
}
