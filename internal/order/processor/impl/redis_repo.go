package impl

import (
	"time"

	"github.com/Shopify/gocheckout/internal/order"

	"github.com/go-redis/redis/v7"
	"github.com/pkg/errors"
)

// commitCasScript flips the cart's commit marker iff nobody has before.
// Returns 1 for the winner, 0 for everyone else.
const commitCasScript = `
local state = redis.call("GET", KEYS[1])
if state == ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[1])
return 1
`

// RedisOrderRepo stores orders as JSON documents with cart-id, order-number
// and payment-reference keys. The commit marker lives in a dedicated key
// mutated only by the Lua check-and-set, so the marker stays authoritative
// even if a stale writer later rewrites the document.
type RedisOrderRepo struct {
	RedisClient *redis.Client
}

func MakeRedisOrderRepo(redisClient *redis.Client) *RedisOrderRepo {
	return &RedisOrderRepo{RedisClient: redisClient}
}

func (r *RedisOrderRepo) Create(o *order.Order) (*order.Order, error) {
	doc, err := marshalOrder(o)
	if err != nil {
		return nil, err
	}
	created, err := r.RedisClient.SetNX(buildOrderCartKey(o.CartID), doc, 0).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "creating order for cart %s", o.CartID)
	}
	if !created {
		return r.FindByCartID(o.CartID)
	}
	if err := r.writeIndexes(o); err != nil {
		return nil, err
	}
	return cloneOrder(o), nil
}

func (r *RedisOrderRepo) FindByCartID(cartID string) (*order.Order, error) {
	raw, err := r.RedisClient.Get(buildOrderCartKey(cartID)).Result()
	if err == redis.Nil {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading order for cart %s", cartID)
	}
	o, err := unmarshalOrder(raw)
	if err != nil {
		return nil, err
	}
	return r.overlayCommitMarker(o)
}

func (r *RedisOrderRepo) FindByOrderNumber(orderNumber string) (*order.Order, error) {
	return r.findViaIndex(buildOrderNumKey(orderNumber))
}

func (r *RedisOrderRepo) FindByPaymentReference(paymentReference string) (*order.Order, error) {
	return r.findViaIndex(buildOrderRefKey(paymentReference))
}

func (r *RedisOrderRepo) Save(o *order.Order) error {
	doc, err := marshalOrder(o)
	if err != nil {
		return err
	}
	if err := r.RedisClient.Set(buildOrderCartKey(o.CartID), doc, 0).Err(); err != nil {
		return errors.Wrapf(err, "saving order for cart %s", o.CartID)
	}
	return r.writeIndexes(o)
}

func (r *RedisOrderRepo) CommitCartOrder(cartID string) (*order.Order, error) {
	o, err := r.FindByCartID(cartID)
	if err != nil {
		return nil, err
	}
	if o.State == order.StateCommitted {
		return nil, order.ErrAlreadyCommitted
	}
	result, err := r.RedisClient.Eval(
		commitCasScript,
		[]string{buildOrderStateKey(cartID)},
		string(order.StateCommitted),
	).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "commit CAS for cart %s", cartID)
	}
	if won, ok := result.(int64); !ok || won != 1 {
		return nil, order.ErrAlreadyCommitted
	}
	o.State = order.StateCommitted
	o.UpdatedAt = time.Now()
	if err := r.Save(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *RedisOrderRepo) PendingOrdersOlderThan(age time.Duration) ([]*order.Order, error) {
	cutoff := time.Now().Add(-age)
	pending := make([]*order.Order, 0)
	var cursor uint64
	for {
		keys, nextCursor, err := r.RedisClient.Scan(cursor, buildOrderCartKey("*"), 100).Result()
		if err != nil {
			return nil, errors.Wrap(err, "scanning pending orders")
		}
		for _, key := range keys {
			raw, err := r.RedisClient.Get(key).Result()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return nil, errors.Wrapf(err, "loading order document %q", key)
			}
			o, err := unmarshalOrder(raw)
			if err != nil {
				return nil, err
			}
			if o, err = r.overlayCommitMarker(o); err != nil {
				return nil, err
			}
			if o.State == order.StatePaymentPending && o.CreatedAt.Before(cutoff) {
				pending = append(pending, o)
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			return pending, nil
		}
	}
}

func (r *RedisOrderRepo) findViaIndex(indexKey string) (*order.Order, error) {
	cartID, err := r.RedisClient.Get(indexKey).Result()
	if err == redis.Nil {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "resolving order index %q", indexKey)
	}
	return r.FindByCartID(cartID)
}

func (r *RedisOrderRepo) writeIndexes(o *order.Order) error {
	pipe := r.RedisClient.TxPipeline()
	pipe.Set(buildOrderNumKey(o.OrderNumber), o.CartID, 0)
	for _, pi := range o.PaymentInfos {
		pipe.Set(buildOrderRefKey(pi.PaymentReference), o.CartID, 0)
	}
	if _, err := pipe.Exec(); err != nil {
		return errors.Wrapf(err, "indexing order %s", o.OrderNumber)
	}
	return nil
}

func (r *RedisOrderRepo) overlayCommitMarker(o *order.Order) (*order.Order, error) {
	marker, err := r.RedisClient.Get(buildOrderStateKey(o.CartID)).Result()
	if err == redis.Nil {
		return o, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading commit marker for cart %s", o.CartID)
	}
	if marker == string(order.StateCommitted) {
		o.State = order.StateCommitted
	}
	return o, nil
}

func buildOrderCartKey(cartID string) string {
	return "checkout:order:cart:" + cartID
}

func buildOrderNumKey(orderNumber string) string {
	return "checkout:order:num:" + orderNumber
}

func buildOrderRefKey(paymentReference string) string {
	return "checkout:order:payref:" + paymentReference
}

func buildOrderStateKey(cartID string) string {
	return "checkout:order:state:" + cartID
}
