package tracking

import (
	"fmt"
	"strings"

	"github.com/Shopify/gocheckout/internal/order"
)

// Transaction is the analytics view of a committed order: pure derived data,
// computed once at commit time and stored keyed by order number.
type Transaction struct {
	OrderNumber string
	Revenue     float64
	Shipping    float64
	Items       []TransactionItem
}

type TransactionItem struct {
	OrderNumber   string
	ProductNumber string
	ProductName   string
	Category      string
	UnitPrice     float64
	Quantity      int
}

// BuildTransaction derives the analytics payload from a committed order.
// Unit price is the item total divided by quantity; shipping comes from the
// price modification named "shipping", else zero.
func BuildTransaction(o *order.Order) Transaction {
	shipping := 0.0
	for _, modification := range o.PriceModifications {
		if modification.Name == "shipping" {
			shipping = modification.Amount
			break
		}
	}

	items := make([]TransactionItem, 0, len(o.Items))
	for _, item := range o.Items {
		unitPrice := item.TotalPrice
		if item.Amount > 0 {
			unitPrice = item.TotalPrice / float64(item.Amount)
		}
		items = append(items, TransactionItem{
			OrderNumber:   o.OrderNumber,
			ProductNumber: item.ProductNumber,
			ProductName:   sanitizeName(item.ProductName),
			Category:      item.Category,
			UnitPrice:     unitPrice,
			Quantity:      item.Amount,
		})
	}

	return Transaction{
		OrderNumber: o.OrderNumber,
		Revenue:     o.TotalPrice,
		Shipping:    shipping,
		Items:       items,
	}
}

// RenderClassic renders the transaction as a classic (_gaq) e-commerce
// tracking snippet.
func RenderClassic(t Transaction) string {
	var b strings.Builder
	fmt.Fprintf(
		&b,
		"_gaq.push(['_addTrans', '%s', '', '%s', '', '%s', '', '', '']);\n",
		t.OrderNumber, formatAmount(t.Revenue), formatAmount(t.Shipping),
	)
	for _, item := range t.Items {
		fmt.Fprintf(
			&b,
			"_gaq.push(['_addItem', '%s', '%s', '%s', '%s', '%s', '%d']);\n",
			item.OrderNumber, item.ProductNumber, item.ProductName,
			item.Category, formatAmount(item.UnitPrice), item.Quantity,
		)
	}
	b.WriteString("_gaq.push(['_trackTrans']);")
	return b.String()
}

// RenderUniversal renders the transaction as a universal (analytics.js)
// e-commerce tracking snippet.
func RenderUniversal(t Transaction) string {
	var b strings.Builder
	b.WriteString("ga('require', 'ecommerce', 'ecommerce.js');\n")
	fmt.Fprintf(
		&b,
		"ga('ecommerce:addTransaction', {'id': '%s', 'affiliation': '', 'revenue': '%s', 'shipping': '%s', 'tax': ''});\n",
		t.OrderNumber, formatAmount(t.Revenue), formatAmount(t.Shipping),
	)
	for _, item := range t.Items {
		fmt.Fprintf(
			&b,
			"ga('ecommerce:addItem', {'id': '%s', 'name': '%s', 'sku': '%s', 'category': '%s', 'price': '%s', 'quantity': '%d'});\n",
			item.OrderNumber, item.ProductName, item.ProductNumber,
			item.Category, formatAmount(item.UnitPrice), item.Quantity,
		)
	}
	b.WriteString("ga('ecommerce:send');")
	return b.String()
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func sanitizeName(name string) string {
	return strings.ReplaceAll(name, "\n", " ")
}
