package handler

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/spacelink/internal/middleware"
	"github.com/iliyamo/spacelink/internal/model"
	"github.com/iliyamo/spacelink/internal/service"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// as stands in for JWTAuth in handler tests.
func as(userID, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.CtxUserID, userID)
			c.Set(middleware.CtxRole, role)
			return next(c)
		}
	}
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	return serveReq(e, httptestRequest(method, path, body))
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		service.ErrValidation:             http.StatusBadRequest,
		service.ErrUnsupportedBookingType: http.StatusBadRequest,
		service.ErrDateConflict:           http.StatusBadRequest,
		service.ErrInvalidTransition:      http.StatusBadRequest,
		service.ErrTooLateToCancel:        http.StatusBadRequest,
		service.ErrProfileIncomplete:      http.StatusForbidden,
		service.ErrForbidden:              http.StatusForbidden,
		service.ErrPropertyUnavailable:    http.StatusNotFound,
		service.ErrNotFound:               http.StatusNotFound,
		errors.New("db down"):             http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusFor(&service.Error{Kind: kind, Message: "x"}), kind.Error())
	}
}

func TestWriteErrorHidesInternalErrors(t *testing.T) {
	e := newEcho()
	e.GET("/boom", func(c echo.Context) error {
		return writeError(c, zap.NewNop(), errors.New("dial tcp 10.0.0.1:3306: refused"))
	})
	rec := do(e, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestWriteErrorExtras(t *testing.T) {
	e := newEcho()
	e.GET("/profile", func(c echo.Context) error {
		return writeError(c, zap.NewNop(), &service.Error{
			Kind: service.ErrProfileIncomplete, Message: "complete your profile", Redirect: service.ProfileRedirect,
		})
	})
	e.GET("/transition", func(c echo.Context) error {
		return writeError(c, zap.NewNop(), &service.Error{
			Kind: service.ErrInvalidTransition, Message: "cannot approve", Allowed: []model.BookingStatus{model.StatusPending},
		})
	})

	rec := do(e, http.MethodGet, "/profile", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"complete your profile","redirect":"/profile"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/transition", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"cannot approve","allowed":["pending"]}`, rec.Body.String())
}

func TestParseTime(t *testing.T) {
	want := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-06-10", "2025-06-10T00:00", "2025-06-10T00:00:00", "2025-06-10T00:00:00Z", "2025-06-10T03:30:00+03:30"} {
		got, ok := parseTime(in)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), in)
		assert.Equal(t, time.UTC, got.Location(), in)
	}
	_, ok := parseTime("10/06/2025")
	assert.False(t, ok)
	_, ok = parseTime("")
	assert.False(t, ok)
}

func httptestRequest(method, path, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req
}

func serveReq(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
