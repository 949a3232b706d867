package impl

import (
	"github.com/Shopify/gocheckout/internal/cart"

	"github.com/pkg/errors"
)

type AddressData struct {
	FirstName string
	LastName  string
	Street    string
	City      string
	ZipCode   string
	Country   string
}

// DeliveryAddressStep records where the order ships to. Incomplete addresses
// are rejected without error so the shopper can resubmit.
type DeliveryAddressStep struct {
	StepName string
	Cart     cart.Cart
}

func (s *DeliveryAddressStep) Name() string {
	return s.StepName
}

func (s *DeliveryAddressStep) Commit(data interface{}) (bool, error) {
	address, ok := data.(AddressData)
	if !ok {
		return false, errors.Errorf("step %q expects AddressData, got %T", s.StepName, data)
	}
	if address.Street == "" || address.City == "" || address.ZipCode == "" || address.Country == "" {
		return false, nil
	}
	s.Cart.SetCheckoutData("delivery_street", address.Street)
	s.Cart.SetCheckoutData("delivery_city", address.City)
	s.Cart.SetCheckoutData("delivery_zip", address.ZipCode)
	s.Cart.SetCheckoutData("delivery_country", address.Country)
	return true, nil
}
