// Package notification serves a user's inbox.
package notification

import (
	"context"
	"time"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/events"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/schema"
)

type Repository interface {
	ListNotifications(ctx context.Context, tenantID, userID string, unread *bool, params query.Params) ([]model.Notification, int64, error)
	UnreadCount(ctx context.Context, tenantID, userID string) (int64, error)
	MarkRead(ctx context.Context, tenantID, userID, id string, at time.Time) (*model.Notification, error)
	MarkAllRead(ctx context.Context, tenantID, userID string, at time.Time) (int64, error)
	DeleteNotification(ctx context.Context, tenantID, userID, id string) error
}

type Usecase struct {
	repo   Repository
	events *events.Emitter
	now    func() time.Time
}

func NewUsecase(repo Repository, emitter *events.Emitter) *Usecase {
	return &Usecase{repo: repo, events: emitter, now: time.Now}
}

func (use *Usecase) List(ctx context.Context, id identity.Identity, unread *bool, params query.Params) (query.Result[model.Notification], error) {
	rows, total, err := use.repo.ListNotifications(ctx, id.TenantID, id.UserID, unread, params)
	if err != nil {
		return query.Result[model.Notification]{}, err
	}
	return query.NewResult(rows, params.Page, total), nil
}

func (use *Usecase) UnreadCount(ctx context.Context, id identity.Identity) (int64, error) {
	return use.repo.UnreadCount(ctx, id.TenantID, id.UserID)
}

// MarkRead is idempotent; an already read notification keeps its read_at.
func (use *Usecase) MarkRead(ctx context.Context, id identity.Identity, notificationID string) (*model.Notification, error) {
	n, err := use.repo.MarkRead(ctx, id.TenantID, id.UserID, notificationID, use.now().UTC())
	if err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "notification.read", schema.EntityNotice, n.ID, nil)
	return n, nil
}

func (use *Usecase) MarkAllRead(ctx context.Context, id identity.Identity) (int64, error) {
	n, err := use.repo.MarkAllRead(ctx, id.TenantID, id.UserID, use.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		use.events.Activity(ctx, id, "notification.read_all", schema.EntityNotice, "", map[string]any{"count": n})
	}
	return n, nil
}

func (use *Usecase) Delete(ctx context.Context, id identity.Identity, notificationID string) error {
	if err := use.repo.DeleteNotification(ctx, id.TenantID, id.UserID, notificationID); err != nil {
		return err
	}
	use.events.Activity(ctx, id, "notification.deleted", schema.EntityNotice, notificationID, nil)
	return nil
}
