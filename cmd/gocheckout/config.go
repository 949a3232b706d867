package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Shopify/gocheckout/internal/cart"
	"github.com/Shopify/gocheckout/internal/checkout"
	"github.com/Shopify/gocheckout/internal/checkout/step"
	stepfactory "github.com/Shopify/gocheckout/internal/checkout/step/impl"
	"github.com/Shopify/gocheckout/internal/metrics"
	"github.com/Shopify/gocheckout/internal/order/processor"
	processorfactory "github.com/Shopify/gocheckout/internal/order/processor/impl"
	"github.com/Shopify/gocheckout/internal/payment"
	paymentfactory "github.com/Shopify/gocheckout/internal/payment/impl"
	"github.com/Shopify/gocheckout/internal/session"
	storefactory "github.com/Shopify/gocheckout/internal/session/impl"

	"github.com/go-redis/redis/v7"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	logLevel = "info"

	// Json file configuring the checkout step sequence and collaborators.
	checkoutConfigJsonPath = "config/checkout/default_checkout.json"

	// Redis called to back the session store / order repo when configured.
	redisAddr = "localhost:6379"

	// How often the demo janitor sweeps stale pending orders.
	janitorSweepInterval = 30 * time.Second

	// Fallback when the config leaves pending_order_max_age_hours unset.
	defaultPendingOrderMaxAge = 2 * time.Hour
)

func setLogging(logLevel string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	switch logLevel {
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		panic(fmt.Errorf("log level must be one of: {disabled, info, debug}"))
	}
}

func loadCheckoutConfig(filepath string) checkout.Config {
	var checkoutConfig checkout.Config
	checkoutConfigJson, err := os.Open(filepath)
	if err != nil {
		panic(fmt.Errorf("failed opening checkout config json at path '%s'", filepath))
	}
	defer checkoutConfigJson.Close()

	jsonParser := json.NewDecoder(checkoutConfigJson)
	if err = jsonParser.Decode(&checkoutConfig); err != nil {
		panic(fmt.Errorf("failed parsing checkout config json with error '%s'", err.Error()))
	}
	if len(checkoutConfig.Steps) == 0 {
		panic(fmt.Errorf("checkout config must declare at least one step"))
	}
	log.Debug().Msg(fmt.Sprintf("CheckoutConfig: %+v", checkoutConfig))
	return checkoutConfig
}

func configureMetrics(checkoutConfig checkout.Config) {
	storeTag := fmt.Sprintf("session_store_type:%s", checkoutConfig.SessionStoreType)
	repoTag := fmt.Sprintf("order_repo_type:%s", checkoutConfig.OrderRepoType)
	providerTag := fmt.Sprintf("payment_provider_type:%s", checkoutConfig.PaymentProviderType)
	numStepsTag := fmt.Sprintf("num_steps:%d", len(checkoutConfig.Steps))
	metrics.AddGlobalTags([]string{storeTag, repoTag, providerTag, numStepsTag})
	metrics.Gauge("num_steps", float64(len(checkoutConfig.Steps)), nil)
}

func makeRedisClient(redisAddr string) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	_, pingErr := redisClient.Ping().Result()
	return redisClient, pingErr
}

func makeSteps(checkoutConfig checkout.Config, c cart.Cart) []step.Step {
	steps := make([]step.Step, 0, len(checkoutConfig.Steps))
	for _, stepConfig := range checkoutConfig.Steps {
		steps = append(steps, stepfactory.MakeStepFromConfig(stepConfig, c))
	}
	return steps
}

func makeSessionStore(checkoutConfig checkout.Config, redisClient *redis.Client) session.Store {
	return storefactory.MakeStoreFromType(checkoutConfig.SessionStoreType, redisClient)
}

func makeOrderProcessor(checkoutConfig checkout.Config, redisClient *redis.Client) processor.CommitOrderProcessor {
	repo := processorfactory.MakeOrderRepoFromType(checkoutConfig.OrderRepoType, redisClient)
	pendingMaxAge := defaultPendingOrderMaxAge
	if checkoutConfig.PendingOrderMaxAgeHours > 0 {
		pendingMaxAge = time.Duration(checkoutConfig.PendingOrderMaxAgeHours) * time.Hour
	}
	return processorfactory.MakeSimpleOrderProcessor(repo, checkoutConfig.ShippingFee, pendingMaxAge)
}

func makePaymentProvider(checkoutConfig checkout.Config) payment.Provider {
	if checkoutConfig.PaymentProviderType == "" {
		return nil
	}
	return paymentfactory.MakeProviderFromType(checkoutConfig.PaymentProviderType)
}
