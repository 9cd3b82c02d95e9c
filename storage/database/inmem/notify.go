package inmemdb

import (
	"context"
	"sort"

	"github.com/irshadhq/irshad/core/notify"
)

type notificationRepository struct {
	db *DB
}

var _ notify.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notify.Notification) (notify.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n.ID = newPK()
	repo.db.notifications[n.ID] = &n
	return n, nil
}

func (repo *notificationRepository) QueryLatestByUser(ctx context.Context, userID string, limit int) ([]notify.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ns := make([]notify.Notification, 0)
	for _, n := range repo.db.notifications {
		if n.UserID == userID {
			ns = append(ns, *n)
		}
	}
	sort.Slice(ns, func(i, j int) bool { return ns[i].CreatedAt.After(ns[j].CreatedAt) })
	if len(ns) > limit {
		ns = ns[:limit]
	}
	return ns, nil
}

func (repo *notificationRepository) MarkRead(ctx context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n, ok := repo.db.notifications[id]
	if !ok {
		return notify.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (repo *notificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, n := range repo.db.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}
