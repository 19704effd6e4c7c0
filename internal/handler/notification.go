package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/spacelink/internal/model"
	"github.com/iliyamo/spacelink/internal/repository"
)

type NotificationStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type NotificationHandler struct {
	store NotificationStore
	log   *zap.Logger
}

func NewNotificationHandler(store NotificationStore, log *zap.Logger) *NotificationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationHandler{store: store, log: log}
}

// List handles GET /v1/notifications?limit=.
func (h *NotificationHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.store.ListByUser(ctx, uid, queryInt(c, "limit", 50))
	if err != nil {
		h.log.Error("list notifications failed", zap.String("user_id", uid), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list notifications failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// MarkRead handles PATCH /v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.store.MarkRead(ctx, c.Param("id"), uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		h.log.Error("mark notification failed", zap.String("user_id", uid), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update notification failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
