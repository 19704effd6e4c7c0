// Package handler implements the HTTP endpoints.  Handlers bind and
// validate input, call into repositories or the booking service, and map
// failures onto JSON error bodies of the form {"error": "..."}.
package handler

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/spacelink/internal/middleware"
	"github.com/iliyamo/spacelink/internal/model"
	"github.com/iliyamo/spacelink/internal/service"
)

const requestTimeout = 5 * time.Second

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// bindAndValidate decodes the body into req and runs its validate tags.
// The returned message is safe to show to the client.
func bindAndValidate(c echo.Context, req interface{}) (string, bool) {
	if err := c.Bind(req); err != nil {
		return "invalid body", false
	}
	if err := c.Validate(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return validationMessage(ve[0]), false
		}
		return "invalid body", false
	}
	return "", true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "email":
		return fe.Field() + " must be a valid email"
	case "gt", "gte", "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max", "lte":
		return fe.Field() + " must be at most " + fe.Param()
	}
	return fe.Field() + " is invalid"
}

// getUserID returns the authenticated user's id set by JWTAuth.
func getUserID(c echo.Context) (string, error) {
	if id, ok := c.Get(middleware.CtxUserID).(string); ok && id != "" {
		return id, nil
	}
	return "", errors.New("invalid user_id in context")
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get(middleware.CtxRole).(string)
	return role == model.RoleAdmin
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// statusFor maps a booking error kind onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrUnsupportedBookingType),
		errors.Is(err, service.ErrDateConflict),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrTooLateToCancel):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrProfileIncomplete),
		errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrPropertyUnavailable),
		errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError renders err.  Booking rule violations carry their own message;
// anything else is logged and hidden behind a generic 500.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	var se *service.Error
	if errors.As(err, &se) {
		body := echo.Map{"error": se.Message}
		if se.Redirect != "" {
			body["redirect"] = se.Redirect
		}
		if len(se.Allowed) > 0 {
			body["allowed"] = se.Allowed
		}
		return c.JSON(statusFor(se), body)
	}
	log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

// parseTime accepts RFC 3339 timestamps as well as bare dates, which are
// taken as midnight UTC.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
