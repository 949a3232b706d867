package order

import (
	"errors"
	"time"
)

// State tracks an order through its payment lifecycle.
//
// payment_pending -----> payment_authorized -----> committed
//
//	|                        |
//	|                        |
//	-----> cancelled         -----> aborted
//
// committed is terminal: the commit processor enforces at most one
// transition into it per cart.
type State string

const (
	StatePaymentPending    State = "payment_pending"
	StatePaymentAuthorized State = "payment_authorized"
	StateCommitted         State = "committed"
	StateCancelled         State = "cancelled"
	StateAborted           State = "aborted"
)

var (
	ErrAlreadyCommitted = errors.New("order already committed")
	ErrOrderNotFound    = errors.New("order not found")
)

type Order struct {
	OrderNumber        string              `json:"order_number"`
	CartID             string              `json:"cart_id"`
	TotalPrice         float64             `json:"total_price"`
	Items              []Item              `json:"items"`
	PriceModifications []PriceModification `json:"price_modifications"`
	PaymentInfos       []PaymentInfo       `json:"payment_infos"`
	State              State               `json:"state"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

type Item struct {
	ProductNumber string  `json:"product_number"`
	ProductName   string  `json:"product_name"`
	Category      string  `json:"category"`
	TotalPrice    float64 `json:"total_price"`
	Amount        int     `json:"amount"`
}

// PriceModification is a named adjustment applied on top of the item total,
// e.g. {"shipping", 5.00}.
type PriceModification struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// PaymentInfo is one payment attempt against an order. An attempt stays
// active until a gateway response resolves it; startOrderPayment reuses the
// active attempt rather than opening a second one.
type PaymentInfo struct {
	PaymentReference string    `json:"payment_reference"`
	OrderNumber      string    `json:"order_number"`
	Amount           float64   `json:"amount"`
	State            State     `json:"state"`
	StartedAt        time.Time `json:"started_at"`
}

func (pi PaymentInfo) IsActive() bool {
	return pi.State == StatePaymentPending
}

// ActivePaymentInfo returns the unresolved payment attempt, if any.
func (o *Order) ActivePaymentInfo() (PaymentInfo, bool) {
	for _, pi := range o.PaymentInfos {
		if pi.IsActive() {
			return pi, true
		}
	}
	return PaymentInfo{}, false
}
