package impl

import (
	"encoding/json"

	"github.com/Shopify/gocheckout/internal/order"

	"github.com/pkg/errors"
)

func cloneOrder(o *order.Order) *order.Order {
	clone := *o
	clone.Items = make([]order.Item, len(o.Items))
	copy(clone.Items, o.Items)
	clone.PriceModifications = make([]order.PriceModification, len(o.PriceModifications))
	copy(clone.PriceModifications, o.PriceModifications)
	clone.PaymentInfos = make([]order.PaymentInfo, len(o.PaymentInfos))
	copy(clone.PaymentInfos, o.PaymentInfos)
	return &clone
}

func marshalOrder(o *order.Order) (string, error) {
	raw, err := json.Marshal(o)
	if err != nil {
		return "", errors.Wrapf(err, "marshaling order %s", o.OrderNumber)
	}
	return string(raw), nil
}

func unmarshalOrder(raw string) (*order.Order, error) {
	var o order.Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return nil, errors.Wrap(err, "unmarshaling order document")
	}
	return &o, nil
}
