package impl

import (
	"sync"

	"github.com/Shopify/gocheckout/internal/cart"
)

// MemoryCart backs demos and tests. Saves are counted rather than flushed
// anywhere so callers can assert the session triggered cart durability.
type MemoryCart struct {
	sync.Mutex

	id           string
	items        []cart.Item
	checkoutData map[string]string
	saveCount    int
}

func MakeMemoryCart(id string, items []cart.Item) *MemoryCart {
	return &MemoryCart{
		id:           id,
		items:        items,
		checkoutData: make(map[string]string),
	}
}

func (c *MemoryCart) ID() string {
	return c.id
}

func (c *MemoryCart) Items() []cart.Item {
	c.Lock()
	defer c.Unlock()
	items := make([]cart.Item, len(c.items))
	copy(items, c.items)
	return items
}

func (c *MemoryCart) Save() error {
	c.Lock()
	c.saveCount++
	c.Unlock()
	return nil
}

func (c *MemoryCart) SetCheckoutData(key string, value string) {
	c.Lock()
	c.checkoutData[key] = value
	c.Unlock()
}

func (c *MemoryCart) CheckoutData(key string) string {
	c.Lock()
	defer c.Unlock()
	return c.checkoutData[key]
}

func (c *MemoryCart) SaveCount() int {
	c.Lock()
	defer c.Unlock()
	return c.saveCount
}
