package event

const (
	OrderPlacedEventName    EventName = "order.placed"
	OrderCancelledEventName EventName = "order.cancelled"
)

// StockChange reports the stock level of one product after an order mutated
// it.
type StockChange struct {
	ProductID      string
	Title          string
	Quantity       int
	RemainingStock int
}

type OrderPlacedEvent struct {
	OrderID      string
	UserID       string
	StockChanges []StockChange
}

func (e *OrderPlacedEvent) GetEventName() EventName {
	return OrderPlacedEventName
}

type OrderCancelledEvent struct {
	OrderID      string
	StockChanges []StockChange
}

func (e *OrderCancelledEvent) GetEventName() EventName {
	return OrderCancelledEventName
}
