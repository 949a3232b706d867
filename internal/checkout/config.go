package checkout

import (
	"github.com/Shopify/gocheckout/internal/checkout/step"
)

// Config is the JSON-loadable checkout definition: the ordered step list plus
// type tags resolved into implementations by the factories in cmd.
type Config struct {
	Steps []step.StepConfig `json:"steps"`

	SessionStoreType string `json:"session_store_type"`
	OrderRepoType    string `json:"order_repo_type"`

	// Empty means payment stays disabled for the session.
	PaymentProviderType string `json:"payment_provider_type"`

	ShippingFee             float64 `json:"shipping_fee"`
	PendingOrderMaxAgeHours int     `json:"pending_order_max_age_hours"`
}
