package checkout

import (
	"time"

	"github.com/Shopify/gocheckout/internal/cart"
	"github.com/Shopify/gocheckout/internal/checkout/step"
	"github.com/Shopify/gocheckout/internal/metrics"
	"github.com/Shopify/gocheckout/internal/order"
	"github.com/Shopify/gocheckout/internal/order/processor"
	"github.com/Shopify/gocheckout/internal/payment"
	"github.com/Shopify/gocheckout/internal/session"
	"github.com/Shopify/gocheckout/internal/tracking"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const cartReadOnlySentinel = "READONLY"

// CheckoutManager sequences a cart through its ordered checkout steps and
// orchestrates the handoff from finished checkout to committed order. One
// instance is built per request and discarded afterwards; everything that
// must survive the request goes through the session store, everything that
// must survive concurrent requests is delegated to the commit processor.
type CheckoutManager struct {
	cart        cart.Cart
	steps       []step.Step
	stepsByName map[string]step.Step

	currentStepIndex int
	status           Status

	processor processor.CommitOrderProcessor
	payment   payment.Provider
	store     session.Store
}

// NewCheckoutManager rehydrates the session's progress from the store. A nil
// provider leaves payment disabled. A persisted step name that no longer
// exists in the configured step list resets the pointer to the first step.
func NewCheckoutManager(
	c cart.Cart,
	steps []step.Step,
	commitProcessor processor.CommitOrderProcessor,
	paymentProvider payment.Provider,
	store session.Store,
) (*CheckoutManager, error) {
	if len(steps) == 0 {
		return nil, errors.New("checkout requires at least one step")
	}
	stepsByName := make(map[string]step.Step, len(steps))
	for _, s := range steps {
		if _, dup := stepsByName[s.Name()]; dup {
			return nil, errors.Errorf("duplicate checkout step name %q", s.Name())
		}
		stepsByName[s.Name()] = s
	}

	m := &CheckoutManager{
		cart:        c,
		steps:       steps,
		stepsByName: stepsByName,
		status:      StatusNotStarted,
		processor:   commitProcessor,
		payment:     paymentProvider,
		store:       store,
	}
	if err := m.rehydrate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *CheckoutManager) rehydrate() error {
	rawStatus, found, err := m.store.Get(session.StatusKey(m.cart.ID()))
	if err != nil {
		return errors.Wrap(err, "loading checkout status")
	}
	if found {
		status := Status(rawStatus)
		if !status.isKnown() {
			log.Warn().
				Str("cart_id", m.cart.ID()).
				Str("status", rawStatus).
				Msg("unknown persisted checkout status => restarting checkout")
			status = StatusNotStarted
		}
		m.status = status
	}

	stepName, found, err := m.store.Get(session.CurrentStepKey(m.cart.ID()))
	if err != nil {
		return errors.Wrap(err, "loading current checkout step")
	}
	if found {
		if idx, ok := m.indexOfStepName(stepName); ok {
			m.currentStepIndex = idx
		} else {
			log.Warn().
				Str("cart_id", m.cart.ID()).
				Str("step", stepName).
				Msg("persisted checkout step no longer configured => resetting to first step")
			m.currentStepIndex = 0
			if m.status.finished() {
				m.status = StatusInProgress
			}
		}
	}
	return nil
}

// CommitStep validates ordering, delegates to the step and advances the
// session on success. Steps at or before the current pointer are eligible;
// recommitting an earlier step deliberately rewinds progress to just after
// it ("go back and edit" semantics), so later steps must be recommitted.
// A false result with nil error means the step rejected the data and nothing
// changed.
func (m *CheckoutManager) CommitStep(s step.Step, data interface{}) (bool, error) {
	committed, err := m.isCommitted()
	if err != nil {
		return false, err
	}
	if committed {
		return false, errors.Wrap(ErrUnsupported, "cart already committed")
	}

	idx, ok := m.indexOfStepName(s.Name())
	if !ok {
		return false, errors.Wrapf(ErrStepNotFound, "step %q", s.Name())
	}
	if idx > m.currentStepIndex {
		return false, errors.Wrapf(ErrOutOfSequence, "step %q is ahead of current step %q", s.Name(), m.CurrentStep().Name())
	}

	ok, err = s.Commit(data)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if idx+1 < len(m.steps) {
		m.currentStepIndex = idx + 1
		m.status = StatusInProgress
		if err := m.store.Set(session.CurrentStepKey(m.cart.ID()), m.steps[m.currentStepIndex].Name()); err != nil {
			return false, err
		}
	} else {
		// No step after the last one: the pointer stays put and the
		// checkout is finished.
		m.status = StatusAwaitingCommit
	}
	if err := m.store.Set(session.StatusKey(m.cart.ID()), string(m.status)); err != nil {
		return false, err
	}

	// Line-item state must be durable at the same moment as the progress.
	if err := m.cart.Save(); err != nil {
		return false, errors.Wrap(err, "saving cart after step commit")
	}
	if err := m.store.Save(); err != nil {
		return false, errors.Wrap(err, "persisting checkout progress")
	}
	metrics.Incr("steps_committed", []string{"step:" + s.Name()})
	return true, nil
}

// StartOrderPayment idempotently obtains the cart's order and its active
// payment attempt, and flags the cart read-only while the payment is in
// flight. The returned payment info is handed to a payment gateway by the
// caller.
func (m *CheckoutManager) StartOrderPayment() (*order.PaymentInfo, error) {
	committed, err := m.isCommitted()
	if err != nil {
		return nil, err
	}
	if committed {
		return nil, errors.Wrap(ErrUnsupported, "cart already committed")
	}
	if !m.IsFinished() {
		return nil, errors.Wrap(ErrUnsupported, "checkout not finished yet")
	}
	if m.payment == nil {
		return nil, errors.Wrap(ErrUnsupported, "payment is not activated")
	}

	o, err := m.processor.GetOrCreateOrder(m.cart)
	if err != nil {
		return nil, err
	}
	if o.State == order.StateCommitted {
		return nil, order.ErrAlreadyCommitted
	}
	paymentInfo, err := m.processor.GetOrCreateActivePaymentInfo(o)
	if err != nil {
		return nil, err
	}

	if err := m.store.Set(session.CartReadOnlyKey(m.cart.ID()), cartReadOnlySentinel); err != nil {
		return nil, err
	}
	m.status = StatusPaymentPending
	if err := m.store.Set(session.StatusKey(m.cart.ID()), string(m.status)); err != nil {
		return nil, err
	}
	if err := m.store.Save(); err != nil {
		return nil, errors.Wrap(err, "persisting payment start")
	}
	metrics.Incr("payments_started", []string{"provider:" + m.payment.Name()})
	return paymentInfo, nil
}

// CommitOrderPayment applies the gateway's verdict. A committed or
// authorized status finalizes the order via CommitOrder; anything else
// rewinds the session to the last step so the shopper can redo the checkout
// and retry. The read-only flag is cleared either way.
func (m *CheckoutManager) CommitOrderPayment(status payment.Status) (*order.Order, error) {
	if m.payment == nil {
		return nil, errors.Wrap(ErrUnsupported, "payment is not activated")
	}

	o, err := m.processor.UpdateOrderPayment(status)
	if err != nil {
		return nil, err
	}

	if err := m.store.Remove(session.CartReadOnlyKey(m.cart.ID())); err != nil {
		return nil, err
	}
	if err := m.store.Save(); err != nil {
		return nil, errors.Wrap(err, "clearing cart read-only flag")
	}

	if status.State == order.StateCommitted || status.State == order.StatePaymentAuthorized {
		return m.CommitOrder()
	}

	// Failed / cancelled / pending charge: rewind to the terminal step so
	// the shopper can recommit it and retry payment.
	m.currentStepIndex = len(m.steps) - 1
	m.status = StatusInProgress
	if err := m.store.Set(session.CurrentStepKey(m.cart.ID()), m.CurrentStep().Name()); err != nil {
		return nil, err
	}
	if err := m.store.Set(session.StatusKey(m.cart.ID()), string(m.status)); err != nil {
		return nil, err
	}
	if err := m.store.Save(); err != nil {
		return nil, errors.Wrap(err, "persisting payment rewind")
	}
	metrics.Incr("payments_rewound", []string{"state:" + string(status.State)})
	return o, nil
}

// CommitOrder finalizes the order through the processor's single-winner
// commit, drops the cart-scoped progress keys and stores the analytics
// payloads under the order number, where they outlive the cart keys.
func (m *CheckoutManager) CommitOrder() (*order.Order, error) {
	committed, err := m.isCommitted()
	if err != nil {
		return nil, err
	}
	if committed {
		return nil, order.ErrAlreadyCommitted
	}
	if !m.IsFinished() {
		return nil, errors.Wrap(ErrUnsupported, "checkout not finished yet")
	}

	result, err := m.processor.CommitOrder(m.cart)
	if err != nil {
		return nil, err
	}
	m.status = StatusCommitted

	if err := m.store.Remove(session.StatusKey(m.cart.ID())); err != nil {
		return nil, err
	}
	if err := m.store.Remove(session.CurrentStepKey(m.cart.ID())); err != nil {
		return nil, err
	}

	transaction := tracking.BuildTransaction(result)
	if err := m.store.Set(session.TrackingClassicKey(result.OrderNumber), tracking.RenderClassic(transaction)); err != nil {
		return nil, err
	}
	if err := m.store.Set(session.TrackingUniversalKey(result.OrderNumber), tracking.RenderUniversal(transaction)); err != nil {
		return nil, err
	}

	if err := m.store.Save(); err != nil {
		return nil, errors.Wrap(err, "persisting order commit")
	}
	metrics.Incr("checkouts_committed", nil)
	log.Info().
		Str("cart_id", m.cart.ID()).
		Str("order_number", result.OrderNumber).
		Msg("order committed")
	return result, nil
}

func (m *CheckoutManager) Cart() cart.Cart {
	return m.cart
}

func (m *CheckoutManager) Steps() []step.Step {
	steps := make([]step.Step, len(m.steps))
	copy(steps, m.steps)
	return steps
}

// Step looks a step up by name.
func (m *CheckoutManager) Step(name string) (step.Step, error) {
	s, ok := m.stepsByName[name]
	if !ok {
		return nil, errors.Wrapf(ErrStepNotFound, "step %q", name)
	}
	return s, nil
}

func (m *CheckoutManager) CurrentStep() step.Step {
	return m.steps[m.currentStepIndex]
}

func (m *CheckoutManager) IsFinished() bool {
	return m.status.finished()
}

// IsCommitted reports whether the order behind this cart has been
// irrevocably committed. The in-memory status is only a fast path: final
// commit deletes the cart-scoped keys, so a rehydrated session asks the
// processor and treats the order's own state as authoritative.
func (m *CheckoutManager) IsCommitted() bool {
	committed, err := m.isCommitted()
	if err != nil {
		log.Warn().Err(err).Str("cart_id", m.cart.ID()).Msg("failed resolving committed state")
		return false
	}
	return committed
}

func (m *CheckoutManager) isCommitted() (bool, error) {
	if m.status == StatusCommitted {
		return true, nil
	}
	o, err := m.processor.FindOrder(m.cart)
	if errors.Is(err, order.ErrOrderNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if o.State == order.StateCommitted {
		m.status = StatusCommitted
		return true, nil
	}
	return false, nil
}

// Payment returns the configured payment provider, or nil when payment is
// disabled for this session.
func (m *CheckoutManager) Payment() payment.Provider {
	return m.payment
}

// Order is a get-or-create passthrough to the commit processor.
func (m *CheckoutManager) Order() (*order.Order, error) {
	return m.processor.GetOrCreateOrder(m.cart)
}

// IsCartReadOnly reports the advisory in-flight-payment flag. It is a hint
// for cart-editing surfaces, not a lock.
func (m *CheckoutManager) IsCartReadOnly() (bool, error) {
	_, found, err := m.store.Get(session.CartReadOnlyKey(m.cart.ID()))
	if err != nil {
		return false, err
	}
	return found, nil
}

func (m *CheckoutManager) CleanUpPendingOrders() error {
	defer metrics.BenchmarkMethod(time.Now(), "clean_up_pending_orders", nil)
	return m.processor.CleanUpPendingOrders()
}

func (m *CheckoutManager) indexOfStepName(name string) (int, bool) {
	for i, s := range m.steps {
		if s.Name() == name {
			return i, true
		}
	}
	return 0, false
}
