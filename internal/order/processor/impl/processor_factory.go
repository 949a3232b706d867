package impl

import (
	"fmt"
	"time"

	"github.com/Shopify/gocheckout/internal/order/processor"

	"github.com/go-redis/redis/v7"
	"golang.org/x/time/rate"
)

const defaultJanitorOpsPerSecond = 50

func MakeOrderRepoFromType(repoType string, redisClient *redis.Client) processor.OrderRepo {
	switch repoType {
	case "memory_order_repo":
		return MakeMemoryOrderRepo()
	case "redis_order_repo":
		if redisClient == nil {
			panic(fmt.Errorf("redis is required for redis_order_repo but no client was configured"))
		}
		return MakeRedisOrderRepo(redisClient)
	default:
		panic(fmt.Errorf("order repo type must be one of: {memory_order_repo, redis_order_repo}"))
	}
}

func MakeSimpleOrderProcessor(
	repo processor.OrderRepo,
	shippingFee float64,
	pendingMaxAge time.Duration,
) *SimpleOrderProcessor {
	return &SimpleOrderProcessor{
		Repo:           repo,
		ShippingFee:    shippingFee,
		PendingMaxAge:  pendingMaxAge,
		CleanupLimiter: rate.NewLimiter(rate.Limit(defaultJanitorOpsPerSecond), defaultJanitorOpsPerSecond),
	}
}
