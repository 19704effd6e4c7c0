package service

import (
	"time"

	"github.com/iliyamo/spacelink/internal/model"
)

// Overlaps is the inclusive interval test: touching endpoints conflict.
func Overlaps(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !aFrom.After(bTo) && !aTo.Before(bFrom)
}

// HasConflict reports whether [from, to] overlaps any occupying booking in
// existing.  Callers pass bookings of a single property.  Rows that have
// lapsed by now are skipped even when their stored status was never
// rewritten to expired.
func HasConflict(existing []model.Booking, from, to, now time.Time) bool {
	for i := range existing {
		b := &existing[i]
		if !b.Status.IsOccupying() || DeriveStatus(b, now) != b.Status {
			continue
		}
		if Overlaps(from, to, b.FromDate, b.ToDate) {
			return true
		}
	}
	return false
}

// StoredPrecision is the resolution of the DATETIME columns holding
// booking dates.
const StoredPrecision = time.Second

// normalizeRange converts a requested range to UTC at stored precision so
// conflict checks, pricing and the persisted row all see the same bounds.
func normalizeRange(from, to time.Time) (time.Time, time.Time) {
	return from.UTC().Truncate(StoredPrecision), to.UTC().Truncate(StoredPrecision)
}
