package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/spacelink/internal/model"
)

// NotificationRepo stores user inbox entries.
type NotificationRepo struct {
	db *sqlx.DB
}

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts n, assigning an id when it has none.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, message, is_read, created_at)
		 VALUES (:id, :user_id, :type, :message, :is_read, :created_at)`, n)
	return err
}

// ListByUser returns the newest notifications first, at most limit of them.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	out := []model.Notification{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT id, user_id, type, message, is_read, created_at FROM notifications
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	return out, err
}

// MarkRead flags one of the user's notifications as read.  Notifications
// owned by someone else are reported as missing.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists,
		`SELECT COUNT(*) FROM notifications WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return nil
}
