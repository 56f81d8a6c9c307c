package domain

const (
	EventStockReserved        = "StockReserved"
	EventReservationCancelled = "ReservationCancelled"
	EventStockAdded           = "StockAdded"
)

type StockReserved struct {
	ReservationID string `json:"reservation_id"`
	OrderID       string `json:"order_id"`
	ProductID     string `json:"product_id"`
	Quantity      int    `json:"quantity"`
	Available     int    `json:"available"`
}

// ReservationReleased is the payload of EventReservationCancelled.
type ReservationReleased struct {
	ReservationID string `json:"reservation_id"`
	OrderID       string `json:"order_id"`
	ProductID     string `json:"product_id"`
	Quantity      int    `json:"quantity"`
	Available     int    `json:"available"`
}

// StockAdded carries the counters after the addition.
type StockAdded struct {
	StockItemID string `json:"stock_item_id"`
	ProductID   string `json:"product_id"`
	Available   int    `json:"available"`
	Reserved    int    `json:"reserved"`
}
