package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/spacelink/internal/model"
	"github.com/iliyamo/spacelink/internal/service"
)

// Bookings is the booking service as seen by the HTTP layer.
type Bookings interface {
	CreateBooking(ctx context.Context, requesterID string, in service.CreateBookingInput) (*model.Booking, error)
	ApproveBooking(ctx context.Context, actorID, bookingID string) (*model.Booking, error)
	RejectBooking(ctx context.Context, actorID, bookingID string) (*model.Booking, error)
	ActivateBooking(ctx context.Context, actorID, bookingID string) (*model.Booking, error)
	EndBooking(ctx context.Context, actorID, bookingID string) (*model.Booking, error)
	CancelBooking(ctx context.Context, actorID, bookingID string) (*model.Booking, error)
	GetBooking(ctx context.Context, actorID, bookingID string) (*model.Booking, error)
	GetBookingAsAdmin(ctx context.Context, bookingID string) (*model.Booking, error)
	CheckAvailability(ctx context.Context, propertyID string, from, to time.Time) (bool, error)
	ListMyBookings(ctx context.Context, userID string) ([]model.Booking, error)
	ListOwnerBookings(ctx context.Context, ownerID string) ([]model.Booking, error)
}

type BookingHandler struct {
	svc Bookings
	log *zap.Logger
}

func NewBookingHandler(svc Bookings, log *zap.Logger) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{svc: svc, log: log}
}

type createBookingReq struct {
	PropertyID  string `json:"propertyId" validate:"required"`
	FromDate    string `json:"fromDate" validate:"required"`
	ToDate      string `json:"toDate" validate:"required"`
	BookingType string `json:"bookingType" validate:"required"`
	Notes       string `json:"notes" validate:"max=2000"`
}

type availabilityReq struct {
	PropertyID string `json:"propertyId" validate:"required"`
	FromDate   string `json:"fromDate" validate:"required"`
	ToDate     string `json:"toDate" validate:"required"`
}

func parseRange(from, to string) (time.Time, time.Time, string, bool) {
	f, ok := parseTime(from)
	if !ok {
		return time.Time{}, time.Time{}, "fromDate is not a valid date", false
	}
	t, ok := parseTime(to)
	if !ok {
		return time.Time{}, time.Time{}, "toDate is not a valid date", false
	}
	return f, t, "", true
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req createBookingReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	from, to, msg, ok := parseRange(req.FromDate, req.ToDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	b, err := h.svc.CreateBooking(ctx, uid, service.CreateBookingInput{
		PropertyID:  strings.TrimSpace(req.PropertyID),
		FromDate:    from,
		ToDate:      to,
		BookingType: model.BookingType(strings.ToLower(strings.TrimSpace(req.BookingType))),
		Notes:       req.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, b)
}

type bookingAction func(ctx context.Context, actorID, bookingID string) (*model.Booking, error)

func (h *BookingHandler) act(c echo.Context, fn bookingAction) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	b, err := fn(ctx, uid, c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Approve handles PATCH /v1/bookings/:id/approve.
func (h *BookingHandler) Approve(c echo.Context) error { return h.act(c, h.svc.ApproveBooking) }

// Reject handles PATCH /v1/bookings/:id/reject.
func (h *BookingHandler) Reject(c echo.Context) error { return h.act(c, h.svc.RejectBooking) }

// Activate handles PATCH /v1/bookings/:id/activate.
func (h *BookingHandler) Activate(c echo.Context) error { return h.act(c, h.svc.ActivateBooking) }

// End handles PATCH /v1/bookings/:id/end.
func (h *BookingHandler) End(c echo.Context) error { return h.act(c, h.svc.EndBooking) }

// Cancel handles PATCH /v1/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error { return h.act(c, h.svc.CancelBooking) }

// Get handles GET /v1/bookings/:id.  Admins may read any booking.
func (h *BookingHandler) Get(c echo.Context) error {
	if isAdmin(c) {
		return h.act(c, func(ctx context.Context, _, id string) (*model.Booking, error) {
			return h.svc.GetBookingAsAdmin(ctx, id)
		})
	}
	return h.act(c, h.svc.GetBooking)
}

// MyBookings handles GET /v1/bookings/my-bookings.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	return h.list(c, h.svc.ListMyBookings)
}

// OwnerBookings handles GET /v1/bookings/owner.
func (h *BookingHandler) OwnerBookings(c echo.Context) error {
	return h.list(c, h.svc.ListOwnerBookings)
}

func (h *BookingHandler) list(c echo.Context, fn func(context.Context, string) ([]model.Booking, error)) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := fn(ctx, uid)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// CheckAvailability handles POST /v1/bookings/check-availability.  No
// authentication is required.
func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	var req availabilityReq
	if msg, ok := bindAndValidate(c, &req); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	from, to, msg, ok := parseRange(req.FromDate, req.ToDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	free, err := h.svc.CheckAvailability(ctx, strings.TrimSpace(req.PropertyID), from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	msg = "Property is available for the selected dates"
	if !free {
		msg = "Property is already booked for the selected dates"
	}
	return c.JSON(http.StatusOK, echo.Map{"available": free, "message": msg})
}
