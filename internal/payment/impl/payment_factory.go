package impl

import (
	"fmt"

	"github.com/Shopify/gocheckout/internal/order"
	"github.com/Shopify/gocheckout/internal/payment"
)

func MakeProviderFromType(providerType string) payment.Provider {
	switch providerType {
	case "offline":
		return MakeOfflineProvider(order.StatePaymentAuthorized)
	case "offline_rejecting":
		return MakeOfflineProvider(order.StateCancelled)
	default:
		panic(fmt.Errorf("payment provider type must be one of: {offline, offline_rejecting}"))
	}
}
