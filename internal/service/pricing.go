package service

import (
	"math"
	"time"

	"github.com/iliyamo/spacelink/internal/model"
)

const msPerHour = 3_600_000

// ComputeTotalPrice prices a booking.  Monthly and yearly bookings count
// calendar boundaries crossed (Jan 31 to Feb 1 is one month), not elapsed
// time.  Every unit count is at least one.  Unknown types pay price once.
func ComputeTotalPrice(from, to time.Time, t model.BookingType, price float64) float64 {
	from, to = from.UTC(), to.UTC()
	var units int64
	switch t {
	case model.BookingHourly:
		units = int64(math.Ceil(float64(to.Sub(from).Milliseconds()) / msPerHour))
	case model.BookingMonthly:
		units = int64((to.Year()*12 + int(to.Month())) - (from.Year()*12 + int(from.Month())))
	case model.BookingYearly:
		units = int64(to.Year() - from.Year())
	default:
		return price
	}
	if units < 1 {
		units = 1
	}
	return float64(units) * price
}
