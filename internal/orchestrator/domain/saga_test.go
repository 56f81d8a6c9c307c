package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSagaHappyPath(t *testing.T) {
	s := NewSaga("o1")
	require.NoError(t, s.Advance(StatePriced))
	require.NoError(t, s.Advance(StateReserving))
	require.NoError(t, s.Advance(StateConfirmed))
	assert.Error(t, s.Advance(StateFailed))
}

func TestSagaPricingFailureSkipsCompensation(t *testing.T) {
	s := NewSaga("o1")
	require.NoError(t, s.Advance(StateFailed))
	assert.Error(t, s.Advance(StateCompensating))
}

func TestSagaCompensationsNewestFirst(t *testing.T) {
	s := NewSaga("o1")
	s.RecordReservation(ReservationRef{ID: "r1"})
	s.RecordReservation(ReservationRef{ID: "r2"})
	s.RecordReservation(ReservationRef{ID: "r3"})

	comp := s.Compensations()
	assert.Equal(t, []string{"r3", "r2", "r1"}, []string{comp[0].ID, comp[1].ID, comp[2].ID})
	assert.Equal(t, "r1", s.Reserved[0].ID, "reserved list must not be reordered")

	s.RecordCompensationFailure(comp[0], errors.New("timeout"))
	require.Len(t, s.Failures, 1)
	assert.Equal(t, "r3", s.Failures[0].Reservation.ID)
}
