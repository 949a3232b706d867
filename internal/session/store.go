package session

// Store is the externally-durable key/value persistence port backing checkout
// progress. Set and Remove buffer; Save flushes every buffered write for the
// request in one shot. A transition is only durable once Save returned nil,
// so a crash mid-request leaves the previous flush as the source of truth.
type Store interface {
	Get(key string) (value string, found bool, err error)
	Set(key string, value string) error
	Remove(key string) error
	Save() error
}

// Cart-scoped keys: created on first step commit, removed on final order
// commit. Order-number-scoped tracking keys are created at that same moment
// and deliberately outlive the cart-scoped ones.

func StatusKey(cartID string) string {
	return "checkout:status:" + cartID
}

func CurrentStepKey(cartID string) string {
	return "checkout:current_step:" + cartID
}

func CartReadOnlyKey(cartID string) string {
	return "checkout:cart_readonly:" + cartID
}

func TrackingClassicKey(orderNumber string) string {
	return "checkout:trackecommerce:" + orderNumber
}

func TrackingUniversalKey(orderNumber string) string {
	return "checkout:trackecommerce_universal:" + orderNumber
}
