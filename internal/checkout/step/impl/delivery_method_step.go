package impl

import (
	"github.com/Shopify/gocheckout/internal/cart"

	"github.com/pkg/errors"
)

type DeliveryMethodData struct {
	Carrier string
}

// DeliveryMethodStep picks the shipping carrier from a configured allow-list.
type DeliveryMethodStep struct {
	StepName        string
	Cart            cart.Cart
	AllowedCarriers map[string]bool
}

func (s *DeliveryMethodStep) Name() string {
	return s.StepName
}

func (s *DeliveryMethodStep) Commit(data interface{}) (bool, error) {
	method, ok := data.(DeliveryMethodData)
	if !ok {
		return false, errors.Errorf("step %q expects DeliveryMethodData, got %T", s.StepName, data)
	}
	if !s.AllowedCarriers[method.Carrier] {
		return false, nil
	}
	s.Cart.SetCheckoutData("delivery_carrier", method.Carrier)
	return true, nil
}
