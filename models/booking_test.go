package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingIsActive(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingPending}).IsActive())
	assert.True(t, (&Booking{Status: BookingConfirmed}).IsActive())
	assert.False(t, (&Booking{Status: BookingCompleted}).IsActive())
	assert.False(t, (&Booking{Status: BookingCancelled}).IsActive())
}

func TestBookingIsTerminal(t *testing.T) {
	assert.False(t, (&Booking{Status: BookingPending}).IsTerminal())
	assert.False(t, (&Booking{Status: BookingConfirmed}).IsTerminal())
	assert.True(t, (&Booking{Status: BookingCompleted}).IsTerminal())
	assert.True(t, (&Booking{Status: BookingCancelled}).IsTerminal())
}
