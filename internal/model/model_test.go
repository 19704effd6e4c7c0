package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusSets(t *testing.T) {
	terminal := []BookingStatus{StatusRejected, StatusEnded, StatusCancelled, StatusExpired}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), s)
		assert.False(t, s.IsOccupying(), s)
	}
	for _, s := range OccupyingStatuses {
		assert.False(t, s.IsTerminal(), s)
		assert.True(t, s.IsOccupying(), s)
	}
}

func TestBookingTypeValid(t *testing.T) {
	assert.True(t, BookingHourly.Valid())
	assert.True(t, BookingMonthly.Valid())
	assert.True(t, BookingYearly.Valid())
	assert.False(t, BookingType("weekly").Valid())
	assert.False(t, BookingType("").Valid())
}

func TestPropertySupports(t *testing.T) {
	p := Property{RentTypes: []BookingType{BookingHourly, BookingYearly}}
	assert.True(t, p.Supports(BookingHourly))
	assert.False(t, p.Supports(BookingMonthly))
}

func TestUserProfileComplete(t *testing.T) {
	u := User{Name: "Asha", Phone: "0712345678", Address: "12 Hill Rd"}
	assert.True(t, u.ProfileComplete())

	u.Phone = "   "
	assert.False(t, u.ProfileComplete())
}
