package impl

import (
	"fmt"

	"github.com/Shopify/gocheckout/internal/session"

	"github.com/go-redis/redis/v7"
)

func MakeStoreFromType(storeType string, redisClient *redis.Client) session.Store {
	switch storeType {
	case "memory_store":
		return MakeMemoryStore()
	case "redis_store":
		if redisClient == nil {
			panic(fmt.Errorf("redis is required for redis_store but no client was configured"))
		}
		return MakeRedisStore(redisClient)
	default:
		panic(fmt.Errorf("session store type must be one of: {memory_store, redis_store}"))
	}
}
