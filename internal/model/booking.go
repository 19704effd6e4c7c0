package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusApproved  BookingStatus = "approved"
	StatusRejected  BookingStatus = "rejected"
	StatusActive    BookingStatus = "active"
	StatusEnded     BookingStatus = "ended"
	StatusCancelled BookingStatus = "cancelled"
	StatusExpired   BookingStatus = "expired"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusEnded, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// IsOccupying reports whether a booking in state s blocks overlapping
// requests on the same property.
func (s BookingStatus) IsOccupying() bool {
	switch s {
	case StatusPending, StatusApproved, StatusActive:
		return true
	}
	return false
}

// OccupyingStatuses lists the states that hold a property's calendar.
var OccupyingStatuses = []BookingStatus{StatusPending, StatusApproved, StatusActive}

// BookingType is the rent unit a booking is priced in.
type BookingType string

const (
	BookingHourly  BookingType = "hourly"
	BookingMonthly BookingType = "monthly"
	BookingYearly  BookingType = "yearly"
)

// Valid reports whether t is one of the known rent units.
func (t BookingType) Valid() bool {
	switch t {
	case BookingHourly, BookingMonthly, BookingYearly:
		return true
	}
	return false
}

// Booking is a reservation of a property for the interval [FromDate, ToDate].
//
// Fields:
//
//	ID            – opaque identifier (UUID).
//	UserID        – user who requested the booking.
//	PropertyID    – booked property.
//	FromDate      – start of the reserved interval (UTC).
//	ToDate        – end of the reserved interval; always after FromDate.
//	BookingType   – hourly, monthly or yearly.
//	TotalPrice    – computed once at creation.
//	Status        – lifecycle state.
//	Notes         – free text supplied by the requester.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – last status change.
//	PropertyTitle – denormalized from properties on read, never stored.
//	OwnerID       – denormalized from properties on read, never stored.
type Booking struct {
	ID            string        `db:"id" json:"id"`
	UserID        string        `db:"user_id" json:"userId"`
	PropertyID    string        `db:"property_id" json:"propertyId"`
	FromDate      time.Time     `db:"from_date" json:"fromDate"`
	ToDate        time.Time     `db:"to_date" json:"toDate"`
	BookingType   BookingType   `db:"booking_type" json:"bookingType"`
	TotalPrice    float64       `db:"total_price" json:"totalPrice"`
	Status        BookingStatus `db:"status" json:"status"`
	Notes         string        `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`
	PropertyTitle string        `db:"property_title" json:"propertyTitle,omitempty"`
	OwnerID       string        `db:"owner_id" json:"ownerId,omitempty"`
}
