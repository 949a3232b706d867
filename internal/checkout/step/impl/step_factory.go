package impl

import (
	"fmt"
	"strings"

	"github.com/Shopify/gocheckout/internal/cart"
	"github.com/Shopify/gocheckout/internal/checkout/step"
)

const defaultAllowedCarriers = "standard,express"

func MakeStepFromConfig(config step.StepConfig, c cart.Cart) step.Step {
	switch config.StepType {
	case "delivery_address":
		return MakeDeliveryAddressStep(config, c)
	case "delivery_method":
		return MakeDeliveryMethodStep(config, c)
	case "confirmation":
		return MakeConfirmationStep(config, c)
	default:
		panic(fmt.Errorf("step type must be one of: {delivery_address, delivery_method, confirmation}"))
	}
}

func MakeDeliveryAddressStep(config step.StepConfig, c cart.Cart) *DeliveryAddressStep {
	return &DeliveryAddressStep{StepName: stepNameOrDefault(config, "delivery_address"), Cart: c}
}

func MakeDeliveryMethodStep(config step.StepConfig, c cart.Cart) *DeliveryMethodStep {
	allowedCarriersCsv, found := config.CustomStringProperties["allowed_carriers"]
	if !found || allowedCarriersCsv == "" {
		allowedCarriersCsv = defaultAllowedCarriers
	}
	allowedCarriers := make(map[string]bool)
	for _, carrier := range strings.Split(allowedCarriersCsv, ",") {
		allowedCarriers[strings.TrimSpace(carrier)] = true
	}
	return &DeliveryMethodStep{
		StepName:        stepNameOrDefault(config, "delivery_method"),
		Cart:            c,
		AllowedCarriers: allowedCarriers,
	}
}

func MakeConfirmationStep(config step.StepConfig, c cart.Cart) *ConfirmationStep {
	rejectEmptyCart, found := config.CustomBoolProperties["reject_empty_cart"]
	if !found {
		rejectEmptyCart = true
	}
	return &ConfirmationStep{
		StepName:        stepNameOrDefault(config, "confirmation"),
		Cart:            c,
		RejectEmptyCart: rejectEmptyCart,
	}
}

func stepNameOrDefault(config step.StepConfig, fallback string) string {
	if config.Name != "" {
		return config.Name
	}
	return fallback
}
