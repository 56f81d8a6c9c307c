package domain

const (
	EventOrderConfirmed = "OrderConfirmed"
	EventOrderFailed    = "OrderFailed"
)

type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type OrderConfirmed struct {
	OrderID      string      `json:"order_id"`
	CustomerName string      `json:"customer_name"`
	TotalAmount  string      `json:"total_amount"`
	Items        []OrderLine `json:"items"`
}

type OrderFailed struct {
	OrderID      string `json:"order_id"`
	CustomerName string `json:"customer_name"`
}

// TerminalEvent returns the integration event for a CONFIRMED or FAILED
// order. ok is false for orders still in CREATED.
func TerminalEvent(o Order) (eventType string, payload any, ok bool) {
	switch o.Status {
	case StatusConfirmed:
		lines := make([]OrderLine, 0, len(o.LineItems))
		for _, li := range o.LineItems {
			lines = append(lines, OrderLine{ProductID: li.ProductID, Quantity: li.Quantity, UnitPrice: li.UnitPrice.String()})
		}
		return EventOrderConfirmed, OrderConfirmed{
			OrderID:      o.ID,
			CustomerName: o.CustomerName,
			TotalAmount:  o.TotalAmount.StringFixed(2),
			Items:        lines,
		}, true
	case StatusFailed:
		return EventOrderFailed, OrderFailed{OrderID: o.ID, CustomerName: o.CustomerName}, true
	default:
		return "", nil, false
	}
}
