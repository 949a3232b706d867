package impl

import (
	"github.com/Shopify/gocheckout/internal/cart"

	"github.com/pkg/errors"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

type ConfirmationData struct {
	AgreedToTerms bool
}

// ConfirmationStep is the terminal review step: the shopper must accept the
// terms, and by default an empty cart cannot be confirmed at all.
type ConfirmationStep struct {
	StepName        string
	Cart            cart.Cart
	RejectEmptyCart bool
}

func (s *ConfirmationStep) Name() string {
	return s.StepName
}

func (s *ConfirmationStep) Commit(data interface{}) (bool, error) {
	confirmation, ok := data.(ConfirmationData)
	if !ok {
		return false, errors.Errorf("step %q expects ConfirmationData, got %T", s.StepName, data)
	}
	if s.RejectEmptyCart && len(s.Cart.Items()) == 0 {
		return false, ErrEmptyCart
	}
	if !confirmation.AgreedToTerms {
		return false, nil
	}
	s.Cart.SetCheckoutData("terms_accepted", "true")
	return true, nil
}
