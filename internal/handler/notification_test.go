package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/spacelink/internal/model"
	"github.com/iliyamo/spacelink/internal/repository"
)

type mockInbox struct{ mock.Mock }

func (m *mockInbox) ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, userID, limit)
	items, _ := args.Get(0).([]model.Notification)
	return items, args.Error(1)
}

func (m *mockInbox) MarkRead(ctx context.Context, id, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func TestNotificationEndpoints(t *testing.T) {
	store := new(mockInbox)
	store.On("ListByUser", mock.Anything, "u1", 10).
		Return([]model.Notification{{ID: "n1", UserID: "u1", Type: "booking_approved", Message: "approved"}}, nil)
	store.On("MarkRead", mock.Anything, "n1", "u1").Return(nil)
	store.On("MarkRead", mock.Anything, "n2", "u1").Return(repository.ErrNotFound)

	h := NewNotificationHandler(store, nil)
	e := newEcho()
	g := e.Group("/v1/notifications", as("u1", model.RoleUser))
	g.GET("", h.List)
	g.PATCH("/:id/read", h.MarkRead)

	rec := do(e, http.MethodGet, "/v1/notifications?limit=10", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"booking_approved"`)
	assert.Contains(t, rec.Body.String(), `"isRead":false`)

	assert.Equal(t, http.StatusNoContent, do(e, http.MethodPatch, "/v1/notifications/n1/read", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPatch, "/v1/notifications/n2/read", "").Code)
	store.AssertExpectations(t)
}
