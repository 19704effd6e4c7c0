package model

import (
	"slices"
	"time"
)

// Property is a rentable listing.  Only the fields the booking flow needs
// are modelled; images and verification documents live elsewhere.
type Property struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"ownerId"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	Price       float64       `json:"price"`
	RentTypes   []BookingType `json:"rentTypes"`
	IsDisabled  bool          `json:"isDisabled"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Supports reports whether the property can be rented by unit t.
func (p *Property) Supports(t BookingType) bool {
	return slices.Contains(p.RentTypes, t)
}
