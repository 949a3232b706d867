package cart

// Cart is the owning container a checkout session runs against. Line-item
// storage and pricing live elsewhere; the session only needs identity,
// durability and a small scratch space for per-step checkout data.
type Cart interface {
	ID() string
	Items() []Item
	Save() error

	SetCheckoutData(key string, value string)
	CheckoutData(key string) string
}

type Item struct {
	ProductNumber string
	ProductName   string
	Category      string
	Amount        int
	TotalPrice    float64
}
