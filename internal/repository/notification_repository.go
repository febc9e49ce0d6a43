package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/natourcam/tourism-api/internal/model"
)

// NotificationRepo persists user-facing notifications written by the
// background event consumer and read back over the API.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo wires the repo to an open database handle.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Insert stores a new notification and fills in the generated ID.
func (r *NotificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	const q = `INSERT INTO notifications (recipient_id, title, message, notification_type, booking_id)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, n.RecipientID, n.Title, n.Message, n.Type, n.BookingID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListByRecipient returns a user's notifications, newest first.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, userID uint64) ([]model.Notification, error) {
	const q = `SELECT id, recipient_id, title, message, notification_type, booking_id, is_read, read_at, created_at
		FROM notifications WHERE recipient_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Message, &n.Type, &n.BookingID, &n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as read.  The recipient check keeps a
// user from acknowledging someone else's notification; it reports false
// when nothing matched (wrong owner, unknown ID, or already read).
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1, read_at = ? WHERE id = ? AND recipient_id = ? AND is_read = 0`,
		at, id, userID,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
