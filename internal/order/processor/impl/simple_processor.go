package impl

import (
	"context"
	"time"

	"github.com/Shopify/gocheckout/internal/cart"
	"github.com/Shopify/gocheckout/internal/metrics"
	"github.com/Shopify/gocheckout/internal/order"
	"github.com/Shopify/gocheckout/internal/order/processor"
	"github.com/Shopify/gocheckout/internal/payment"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// SimpleOrderProcessor implements the commit-order contract on top of an
// OrderRepo. Idempotency of order creation and the single-winner commit come
// from the repo; this layer owns order construction, payment-info lifecycle
// and the pending-order janitor.
type SimpleOrderProcessor struct {
	Repo          processor.OrderRepo
	ShippingFee   float64
	PendingMaxAge time.Duration

	// Caps how fast the janitor rewrites aged-out orders per sweep.
	CleanupLimiter *rate.Limiter
}

func (p *SimpleOrderProcessor) FindOrder(c cart.Cart) (*order.Order, error) {
	return p.Repo.FindByCartID(c.ID())
}

func (p *SimpleOrderProcessor) GetOrCreateOrder(c cart.Cart) (*order.Order, error) {
	existing, err := p.Repo.FindByCartID(c.ID())
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, order.ErrOrderNotFound) {
		return nil, err
	}
	o := p.buildOrder(c)
	created, err := p.Repo.Create(o)
	if err != nil {
		return nil, err
	}
	metrics.Incr("orders_created", nil)
	return created, nil
}

func (p *SimpleOrderProcessor) GetOrCreateActivePaymentInfo(o *order.Order) (*order.PaymentInfo, error) {
	if active, ok := o.ActivePaymentInfo(); ok {
		return &active, nil
	}
	paymentInfo := order.PaymentInfo{
		PaymentReference: uuid.New().String(),
		OrderNumber:      o.OrderNumber,
		Amount:           o.TotalPrice,
		State:            order.StatePaymentPending,
		StartedAt:        time.Now(),
	}
	o.PaymentInfos = append(o.PaymentInfos, paymentInfo)
	if err := p.Repo.Save(o); err != nil {
		return nil, err
	}
	metrics.Incr("payment_infos_created", nil)
	return &paymentInfo, nil
}

func (p *SimpleOrderProcessor) UpdateOrderPayment(status payment.Status) (*order.Order, error) {
	o, err := p.Repo.FindByPaymentReference(status.PaymentReference)
	if err != nil {
		return nil, err
	}
	resolved := false
	for i := range o.PaymentInfos {
		if o.PaymentInfos[i].PaymentReference == status.PaymentReference {
			o.PaymentInfos[i].State = status.State
			resolved = true
			break
		}
	}
	if !resolved {
		return nil, errors.Errorf("order %s has no payment attempt %q", o.OrderNumber, status.PaymentReference)
	}
	if status.State == order.StateCommitted || status.State == order.StatePaymentAuthorized {
		if o.State != order.StateCommitted {
			o.State = order.StatePaymentAuthorized
		}
	}
	if err := p.Repo.Save(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (p *SimpleOrderProcessor) CommitOrder(c cart.Cart) (*order.Order, error) {
	defer metrics.BenchmarkMethod(time.Now(), "commit_order", nil)
	if _, err := p.GetOrCreateOrder(c); err != nil {
		return nil, err
	}
	committed, err := p.Repo.CommitCartOrder(c.ID())
	if err != nil {
		return nil, err
	}
	metrics.Incr("orders_committed", nil)
	return committed, nil
}

func (p *SimpleOrderProcessor) CleanUpPendingOrders() error {
	pending, err := p.Repo.PendingOrdersOlderThan(p.PendingMaxAge)
	if err != nil {
		return err
	}
	for _, o := range pending {
		if p.CleanupLimiter != nil {
			if err := p.CleanupLimiter.Wait(context.Background()); err != nil {
				return errors.Wrap(err, "janitor rate limiter")
			}
		}
		o.State = order.StateAborted
		for i := range o.PaymentInfos {
			if o.PaymentInfos[i].IsActive() {
				o.PaymentInfos[i].State = order.StateAborted
			}
		}
		if err := p.Repo.Save(o); err != nil {
			return err
		}
		metrics.Incr("pending_orders_aborted", nil)
		log.Debug().Str("order_number", o.OrderNumber).Msg("aborted stale pending order")
	}
	return nil
}

func (p *SimpleOrderProcessor) buildOrder(c cart.Cart) *order.Order {
	items := make([]order.Item, 0, len(c.Items()))
	itemTotal := 0.0
	for _, cartItem := range c.Items() {
		items = append(items, order.Item{
			ProductNumber: cartItem.ProductNumber,
			ProductName:   cartItem.ProductName,
			Category:      cartItem.Category,
			TotalPrice:    cartItem.TotalPrice,
			Amount:        cartItem.Amount,
		})
		itemTotal += cartItem.TotalPrice
	}
	modifications := []order.PriceModification{}
	if p.ShippingFee > 0 {
		modifications = append(modifications, order.PriceModification{Name: "shipping", Amount: p.ShippingFee})
	}
	now := time.Now()
	return &order.Order{
		OrderNumber:        uuid.New().String(),
		CartID:             c.ID(),
		TotalPrice:         itemTotal + p.ShippingFee,
		Items:              items,
		PriceModifications: modifications,
		State:              order.StatePaymentPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
