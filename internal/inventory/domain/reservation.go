package domain

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation is a hold of Quantity units against one stock item for one
// order. At most one exists per (StockItemID, OrderID).
type Reservation struct {
	ID          string
	StockItemID string
	OrderID     string
	ProductID   string
	Quantity    int
	Status      ReservationStatus
	CreatedAt   time.Time
}

func NewReservation(id string, item StockItem, orderID string, quantity int, now time.Time) Reservation {
	return Reservation{
		ID:          id,
		StockItemID: item.ID,
		OrderID:     orderID,
		ProductID:   item.ProductID,
		Quantity:    quantity,
		Status:      ReservationPending,
		CreatedAt:   now,
	}
}

// Active reports whether the reservation still counts towards QuantityReserved.
func (r Reservation) Active() bool {
	return r.Status == ReservationPending || r.Status == ReservationConfirmed
}

// Cancel moves the reservation to CANCELLED. It returns false when it was
// already cancelled.
func (r *Reservation) Cancel() bool {
	if r.Status == ReservationCancelled {
		return false
	}
	r.Status = ReservationCancelled
	return true
}

// Released describes the reservation after it was cancelled, with available
// being the stock item's counter once the units were returned.
func (r Reservation) Released(available int) ReservationReleased {
	return ReservationReleased{
		ReservationID: r.ID,
		OrderID:       r.OrderID,
		ProductID:     r.ProductID,
		Quantity:      r.Quantity,
		Available:     available,
	}
}
