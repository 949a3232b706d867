package checkout

// Checkout session state machine.

// Status is the persisted progress tag for a cart's checkout. It replaces
// inferring progress from which store keys happen to exist.
//
// not_started ---> in_progress ---> awaiting_commit ---> committed
//
//	^                  |                  ^
//	|                  v                  |
//	------- payment_pending ---------------
//
// A failed payment rewinds payment_pending back to in_progress at the last
// step. committed is terminal and only ever held in memory: final commit
// deletes the cart-scoped keys and the order itself becomes the durable
// record (see CheckoutManager.IsCommitted).
type Status string

const (
	StatusNotStarted     Status = "not_started"
	StatusInProgress     Status = "in_progress"
	StatusAwaitingCommit Status = "awaiting_commit"
	StatusPaymentPending Status = "payment_pending"
	StatusCommitted      Status = "committed"
)

func (s Status) isKnown() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusAwaitingCommit, StatusPaymentPending, StatusCommitted:
		return true
	}
	return false
}

// finished reports whether every step has been committed in order. It does
// not imply the order is placed.
func (s Status) finished() bool {
	return s == StatusAwaitingCommit || s == StatusPaymentPending || s == StatusCommitted
}
