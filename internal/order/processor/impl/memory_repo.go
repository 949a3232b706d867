package impl

import (
	"sync"
	"time"

	"github.com/Shopify/gocheckout/internal/order"
)

// MemoryOrderRepo is a mutex-guarded map store for tests and single-process
// deployments. The mutex doubles as the commit check-and-set.
type MemoryOrderRepo struct {
	sync.Mutex

	byCartID  map[string]*order.Order
	cartByNum map[string]string
	cartByRef map[string]string
}

func MakeMemoryOrderRepo() *MemoryOrderRepo {
	return &MemoryOrderRepo{
		byCartID:  make(map[string]*order.Order),
		cartByNum: make(map[string]string),
		cartByRef: make(map[string]string),
	}
}

func (r *MemoryOrderRepo) Create(o *order.Order) (*order.Order, error) {
	r.Lock()
	defer r.Unlock()
	if existing, ok := r.byCartID[o.CartID]; ok {
		return cloneOrder(existing), nil
	}
	r.storeLocked(o)
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepo) FindByCartID(cartID string) (*order.Order, error) {
	r.Lock()
	defer r.Unlock()
	o, ok := r.byCartID[cartID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepo) FindByOrderNumber(orderNumber string) (*order.Order, error) {
	r.Lock()
	cartID, ok := r.cartByNum[orderNumber]
	r.Unlock()
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return r.FindByCartID(cartID)
}

func (r *MemoryOrderRepo) FindByPaymentReference(paymentReference string) (*order.Order, error) {
	r.Lock()
	cartID, ok := r.cartByRef[paymentReference]
	r.Unlock()
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return r.FindByCartID(cartID)
}

func (r *MemoryOrderRepo) Save(o *order.Order) error {
	r.Lock()
	defer r.Unlock()
	if existing, ok := r.byCartID[o.CartID]; ok && existing.State == order.StateCommitted {
		// The commit CAS is the only writer allowed to leave committed state.
		o.State = order.StateCommitted
	}
	r.storeLocked(o)
	return nil
}

func (r *MemoryOrderRepo) CommitCartOrder(cartID string) (*order.Order, error) {
	r.Lock()
	defer r.Unlock()
	o, ok := r.byCartID[cartID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	if o.State == order.StateCommitted {
		return nil, order.ErrAlreadyCommitted
	}
	o.State = order.StateCommitted
	o.UpdatedAt = time.Now()
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepo) PendingOrdersOlderThan(age time.Duration) ([]*order.Order, error) {
	r.Lock()
	defer r.Unlock()
	cutoff := time.Now().Add(-age)
	pending := make([]*order.Order, 0)
	for _, o := range r.byCartID {
		if o.State == order.StatePaymentPending && o.CreatedAt.Before(cutoff) {
			pending = append(pending, cloneOrder(o))
		}
	}
	return pending, nil
}

func (r *MemoryOrderRepo) storeLocked(o *order.Order) {
	stored := cloneOrder(o)
	stored.UpdatedAt = time.Now()
	r.byCartID[stored.CartID] = stored
	r.cartByNum[stored.OrderNumber] = stored.CartID
	for _, pi := range stored.PaymentInfos {
		r.cartByRef[pi.PaymentReference] = stored.CartID
	}
}
