package store

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

// CreateNotifications inserts a fan-out batch.
func (s *Store) CreateNotifications(ctx context.Context, ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return translate(s.conn(ctx).CreateInBatches(ns, createBatchSize).Error, nil, "notification already exists")
}

func (s *Store) ListNotifications(ctx context.Context, tenantID, userID string, unread *bool, params query.Params) ([]model.Notification, int64, error) {
	db := s.conn(ctx).Scopes(tenant(tenantID)).Where("user_id = ?", userID)
	if unread != nil {
		db = db.Where("read = ?", !*unread)
	}
	rows, total, err := page[model.Notification](db, params)
	return rows, total, translate(err, nil, "")
}

func (s *Store) UnreadCount(ctx context.Context, tenantID, userID string) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&model.Notification{}).
		Scopes(tenant(tenantID)).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&n).Error
	return n, translate(err, nil, "")
}

// MarkRead flags one notification of userID as read and returns it.
func (s *Store) MarkRead(ctx context.Context, tenantID, userID, id string, at time.Time) (*model.Notification, error) {
	var n model.Notification
	err := s.conn(ctx).Scopes(tenant(tenantID)).Where("id = ? AND user_id = ?", id, userID).Take(&n).Error
	if err != nil {
		return nil, translate(err, exception.ErrNotificationNotFound, "")
	}
	if n.Read {
		return &n, nil
	}
	err = s.conn(ctx).Model(&n).Updates(map[string]any{"read": true, "read_at": at}).Error
	if err != nil {
		return nil, translate(err, nil, "")
	}
	n.Read, n.ReadAt = true, &at
	return &n, nil
}

// MarkAllRead flags every unread notification of userID and returns how many changed.
func (s *Store) MarkAllRead(ctx context.Context, tenantID, userID string, at time.Time) (int64, error) {
	res := s.conn(ctx).Model(&model.Notification{}).
		Scopes(tenant(tenantID)).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]any{"read": true, "read_at": at})
	return res.RowsAffected, translate(res.Error, nil, "")
}

func (s *Store) DeleteNotification(ctx context.Context, tenantID, userID, id string) error {
	res := s.conn(ctx).Scopes(tenant(tenantID)).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Notification{})
	if res.Error != nil {
		return translate(res.Error, nil, "")
	}
	if res.RowsAffected == 0 {
		return exception.ErrNotificationNotFound
	}
	return nil
}

// CreateActivities inserts a batch of activity records. Rows whose id is
// already stored are skipped so a redelivered event is recorded once.
func (s *Store) CreateActivities(ctx context.Context, as []model.Activity) error {
	if len(as) == 0 {
		return nil
	}
	err := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(as, createBatchSize).Error
	return translate(err, nil, "activity already recorded")
}

func (s *Store) ListActivities(ctx context.Context, tenantID string, f query.ActivityFilter, params query.Params) ([]model.Activity, int64, error) {
	db := s.conn(ctx).Scopes(tenant(tenantID))
	if f.UserID != "" {
		db = db.Where("user_id = ?", f.UserID)
	}
	if f.EntityType != "" {
		db = db.Where("entity_type = ?", f.EntityType)
	}
	if f.Action != "" {
		db = db.Where("action = ?", f.Action)
	}
	rows, total, err := page[model.Activity](db, params)
	return rows, total, translate(err, nil, "")
}
