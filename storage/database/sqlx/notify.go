package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/irshadhq/irshad/core/notify"
)

type notificationRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}

func (r notificationRow) toCore() notify.Notification {
	return notify.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Body:      r.Body,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt,
	}
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notify.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notify.Notification) (notify.Notification, error) {
	const q = `INSERT INTO notifications (user_id, title, body, created_at)
	VALUES ($1, $2, $3, $4) RETURNING id`

	var id string
	err := repo.db.QueryRowxContext(ctx, q, n.UserID, n.Title, n.Body, n.CreatedAt).Scan(&id)
	if err != nil {
		return notify.Notification{}, errors.Wrap(err, "inserting notification")
	}
	n.ID = id
	return n, nil
}

func (repo *notificationRepository) QueryLatestByUser(ctx context.Context, userID string, limit int) ([]notify.Notification, error) {
	const q = `SELECT id, user_id, title, body, is_read, created_at
	FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	var rows []notificationRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID, limit); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	ns := make([]notify.Notification, 0, len(rows))
	for _, r := range rows {
		ns = append(ns, r.toCore())
	}
	return ns, nil
}

func (repo *notificationRepository) MarkRead(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notify.ErrNotFound
	}
	return nil
}

func (repo *notificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	return errors.Wrap(err, "marking notifications read")
}
