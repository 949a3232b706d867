package impl

import (
	"fmt"

	"github.com/Shopify/gocheckout/internal/order"
	"github.com/Shopify/gocheckout/internal/payment"

	"github.com/pkg/errors"
)

// OfflineProvider settles every attempt with a fixed outcome and never talks
// to a real gateway. Useful for invoice-style shops, demos and tests.
type OfflineProvider struct {
	Outcome order.State
}

func MakeOfflineProvider(outcome order.State) *OfflineProvider {
	return &OfflineProvider{Outcome: outcome}
}

func (p *OfflineProvider) Name() string {
	return "offline"
}

func (p *OfflineProvider) InitPayment(paymentInfo *order.PaymentInfo) (string, error) {
	if paymentInfo == nil {
		return "", errors.New("offline provider requires a payment info to init")
	}
	return fmt.Sprintf("offline://pay/%s", paymentInfo.PaymentReference), nil
}

func (p *OfflineProvider) HandleResponse(params map[string]string) (payment.Status, error) {
	ref, ok := params["payment_reference"]
	if !ok || ref == "" {
		return payment.Status{}, errors.New("gateway response missing payment_reference")
	}
	return payment.Status{
		State:            p.Outcome,
		PaymentReference: ref,
		Message:          params["message"],
	}, nil
}
