package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/Shopify/gocheckout/internal/cart"
	cartimpl "github.com/Shopify/gocheckout/internal/cart/impl"
	"github.com/Shopify/gocheckout/internal/checkout"
	stepimpl "github.com/Shopify/gocheckout/internal/checkout/step/impl"
	"github.com/Shopify/gocheckout/internal/order"
	"github.com/Shopify/gocheckout/internal/session"

	"github.com/rs/zerolog/log"
)

// Drives one full checkout against the configured collaborators: walk the
// steps in order, start a payment, apply the gateway verdict and observe the
// committed order plus its tracking payloads.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() { <-sig; log.Info().Msg("shutting down checkout demo"); cancel() }()

	setLogging(logLevel)
	checkoutConfig := loadCheckoutConfig(checkoutConfigJsonPath)
	configureMetrics(checkoutConfig)

	redisClient, redisErr := makeRedisClient(redisAddr)
	if redisErr != nil {
		redisClient = nil
		log.Info().Msg("redis unreachable => redis-backed collaborators unavailable")
	}

	demoCart := cartimpl.MakeMemoryCart("demo-cart-1", []cart.Item{
		{ProductNumber: "SKU-1001", ProductName: "Espresso Grinder", Category: "kitchen", Amount: 2, TotalPrice: 30},
		{ProductNumber: "SKU-2040", ProductName: "Hand Press", Category: "kitchen", Amount: 1, TotalPrice: 45},
	})

	store := makeSessionStore(checkoutConfig, redisClient)
	commitProcessor := makeOrderProcessor(checkoutConfig, redisClient)
	provider := makePaymentProvider(checkoutConfig)

	manager, err := checkout.NewCheckoutManager(
		demoCart,
		makeSteps(checkoutConfig, demoCart),
		commitProcessor,
		provider,
		store,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed building checkout manager")
	}

	go runPendingOrderJanitor(ctx, manager)

	if err := walkSteps(manager); err != nil {
		log.Fatal().Err(err).Msg("step walk failed")
	}

	committedOrder, err := settle(manager)
	if err != nil {
		log.Fatal().Err(err).Msg("order settlement failed")
	}

	log.Info().
		Str("order_number", committedOrder.OrderNumber).
		Float64("total_price", committedOrder.TotalPrice).
		Str("state", string(committedOrder.State)).
		Msg("checkout complete")

	if payload, found, err := store.Get(session.TrackingUniversalKey(committedOrder.OrderNumber)); err == nil && found {
		log.Info().Msg("tracking payload:\n" + payload)
	}
}

// walkSteps commits every configured step in order with demo data.
func walkSteps(manager *checkout.CheckoutManager) error {
	for _, s := range manager.Steps() {
		committed, err := manager.CommitStep(s, demoDataFor(s.Name()))
		if err != nil {
			return err
		}
		if !committed {
			log.Fatal().Str("step", s.Name()).Msg("demo data rejected by step")
		}
		log.Info().
			Str("step", s.Name()).
			Bool("finished", manager.IsFinished()).
			Msg("step committed")
	}
	return nil
}

func demoDataFor(stepName string) interface{} {
	switch stepName {
	case "delivery_address":
		return stepimpl.AddressData{
			FirstName: "Jamie",
			LastName:  "Doe",
			Street:    "43 Water St",
			City:      "Ottawa",
			ZipCode:   "K1N 5K7",
			Country:   "CA",
		}
	case "delivery_method":
		return stepimpl.DeliveryMethodData{Carrier: "standard"}
	case "confirmation":
		return stepimpl.ConfirmationData{AgreedToTerms: true}
	default:
		return nil
	}
}

// settle runs the payment round-trip when a provider is configured, else
// commits the order directly.
func settle(manager *checkout.CheckoutManager) (*order.Order, error) {
	provider := manager.Payment()
	if provider == nil {
		return manager.CommitOrder()
	}

	paymentInfo, err := manager.StartOrderPayment()
	if err != nil {
		return nil, err
	}
	handoff, err := provider.InitPayment(paymentInfo)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("payment_reference", paymentInfo.PaymentReference).
		Str("handoff", handoff).
		Msg("payment started")

	// The demo plays the gateway callback itself.
	status, err := provider.HandleResponse(map[string]string{
		"payment_reference": paymentInfo.PaymentReference,
		"message":           "demo gateway callback",
	})
	if err != nil {
		return nil, err
	}
	return manager.CommitOrderPayment(status)
}

func runPendingOrderJanitor(ctx context.Context, manager *checkout.CheckoutManager) {
	ticker := time.NewTicker(janitorSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := manager.CleanUpPendingOrders(); err != nil {
				log.Warn().Err(err).Msg("pending order sweep failed")
			}
		}
	}
}
