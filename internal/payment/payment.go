package payment

import (
	"github.com/Shopify/gocheckout/internal/order"
)

// Provider hands a payment attempt to an external gateway and translates the
// gateway's response back into a Status the checkout session can act on. The
// wire protocol with any concrete gateway is the provider's own business.
type Provider interface {
	Name() string

	// InitPayment returns an opaque handoff payload (redirect URL, form
	// markup, ...) the caller surfaces to the shopper.
	InitPayment(paymentInfo *order.PaymentInfo) (string, error)

	// HandleResponse parses a raw gateway callback into a Status.
	HandleResponse(params map[string]string) (Status, error)
}

// Status is the gateway's verdict on a payment attempt. State carries order
// state vocabulary: committed / payment_authorized finalize the order, any
// other value rewinds the checkout for retry.
type Status struct {
	State            order.State
	PaymentReference string
	Message          string
}
