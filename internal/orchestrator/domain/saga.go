package domain

import (
	"fmt"
	"slices"
)

type SagaState string

const (
	StateStarted      SagaState = "started"
	StatePriced       SagaState = "priced"
	StateReserving    SagaState = "reserving"
	StateConfirmed    SagaState = "confirmed"
	StateCompensating SagaState = "compensating"
	StateFailed       SagaState = "failed"
)

var transitions = map[SagaState][]SagaState{
	StateStarted:      {StatePriced, StateFailed},
	StatePriced:       {StateReserving, StateFailed},
	StateReserving:    {StateConfirmed, StateCompensating},
	StateCompensating: {StateFailed},
}

// ReservationRef identifies one reservation the saga holds.
type ReservationRef struct {
	ID        string
	ProductID string
	Quantity  int
}

type CompensationFailure struct {
	Reservation ReservationRef
	Err         error
}

// Saga is the in-memory record of one order creation. It lives only for the
// duration of the call and is never persisted.
type Saga struct {
	OrderID  string
	State    SagaState
	Reserved []ReservationRef
	Failures []CompensationFailure
}

func NewSaga(orderID string) *Saga {
	return &Saga{OrderID: orderID, State: StateStarted}
}

func (s *Saga) Advance(to SagaState) error {
	if !slices.Contains(transitions[s.State], to) {
		return fmt.Errorf("saga %s: illegal transition %s -> %s", s.OrderID, s.State, to)
	}
	s.State = to
	return nil
}

func (s *Saga) RecordReservation(ref ReservationRef) {
	s.Reserved = append(s.Reserved, ref)
}

// Compensations lists held reservations newest first.
func (s *Saga) Compensations() []ReservationRef {
	out := slices.Clone(s.Reserved)
	slices.Reverse(out)
	return out
}

func (s *Saga) RecordCompensationFailure(ref ReservationRef, err error) {
	s.Failures = append(s.Failures, CompensationFailure{Reservation: ref, Err: err})
}
