package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	e := newEcho()
	e.GET("/up", Health(pingFunc(func(context.Context) error { return nil })))
	e.GET("/down", Health(pingFunc(func(context.Context) error { return errors.New("refused") })))

	rec := do(e, http.MethodGet, "/up", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, http.StatusServiceUnavailable, do(e, http.MethodGet, "/down", "").Code)
}
