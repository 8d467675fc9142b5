// Package worker consumes bus events: it records activity in batches and
// fans notifications out to user inboxes and live sockets.
package worker

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/batch"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/bus"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/codec"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/obs"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/schema"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/websocket"
)

const DefaultGroup = "shop-worker"

type Repository interface {
	CreateActivities(ctx context.Context, as []model.Activity) error
	CreateNotifications(ctx context.Context, ns []model.Notification) error
	CartHolders(ctx context.Context, tenantID, productID string) ([]string, error)
}

type Subscriber interface {
	Subscribe(ctx context.Context, subject, group string, handler bus.Handler) error
}

// Pusher delivers a frame to the live sockets of one user.
type Pusher interface {
	Send(key websocket.Key, payload []byte) int
}

type Option struct {
	// Group is the queue group shared by worker replicas.
	Group    string       `mapstructure:"group"`
	Activity batch.Config `mapstructure:"activity"`
}

// Push is the frame written to sockets for a new notification.
type Push struct {
	Type string              `json:"type"`
	Data *model.Notification `json:"data"`
}

type Worker struct {
	sub        Subscriber
	repo       Repository
	hub        Pusher
	group      string
	activities *batch.Writer[model.Activity]
}

// New wires a worker. hub may be nil when no sockets are served.
func New(sub Subscriber, repo Repository, hub Pusher, opt Option) (*Worker, error) {
	if opt.Group == "" {
		opt.Group = DefaultGroup
	}
	if opt.Activity.Name == "" {
		opt.Activity.Name = "activity"
	}
	w := &Worker{sub: sub, repo: repo, hub: hub, group: opt.Group}
	writer, err := batch.NewWriter(opt.Activity, func(ctx context.Context, items []model.Activity) error {
		return repo.CreateActivities(ctx, items)
	})
	if err != nil {
		return nil, errors.Wrap(err, "new activity writer")
	}
	w.activities = writer
	return w, nil
}

// Run consumes until ctx is done or the process shuts down, then flushes
// queued activity records.
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := w.activities.Start(ctx); err != nil {
		return errors.Wrap(err, "start activity writer")
	}
	if err := w.sub.Subscribe(ctx, schema.SubjectActivity, w.group, w.handleActivity); err != nil {
		cancel()
		_ = w.activities.Close()
		return errors.Wrapf(err, "subscribe %s", schema.SubjectActivity)
	}
	if err := w.sub.Subscribe(ctx, schema.SubjectNotification, w.group, w.handleNotification); err != nil {
		cancel()
		_ = w.activities.Close()
		return errors.Wrapf(err, "subscribe %s", schema.SubjectNotification)
	}
	logs.Infof("worker consuming %s and %s in group %s", schema.SubjectActivity, schema.SubjectNotification, w.group)

	select {
	case <-ctx.Done():
	case <-sys.Shutdown():
	}
	cancel()

	if err := w.activities.Close(); err != nil {
		return errors.Wrap(err, "flush activity")
	}
	return nil
}

func (w *Worker) handleActivity(_ context.Context, m bus.Message) {
	env, err := codec.Decode(m.Data)
	if err != nil {
		w.fail("activity", err)
		return
	}
	a, err := codec.DecodeActivity(env)
	if err != nil {
		w.fail("activity", err)
		return
	}

	record := model.Activity{
		Base:       model.Base{ID: env.Header.ID, CreatedAt: eventTime(env.Header)},
		TenantID:   env.Header.TenantID,
		UserID:     a.UserID,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Metadata:   model.JSONMap(a.Metadata),
		IP:         a.IP,
		UserAgent:  a.UserAgent,
	}
	if err := w.activities.TryAppend(record); err != nil {
		w.fail("activity", errors.Wrapf(err, "queue activity %s", record.Action))
	}
}

func (w *Worker) handleNotification(ctx context.Context, m bus.Message) {
	env, err := codec.Decode(m.Data)
	if err != nil {
		w.fail("notification", err)
		return
	}
	n, err := codec.DecodeNotification(env)
	if err != nil {
		w.fail("notification", err)
		return
	}

	tenantID := env.Header.TenantID
	users, err := w.resolve(ctx, tenantID, n.Audience)
	if err != nil {
		w.fail("notification", err)
		return
	}
	if len(users) == 0 {
		return
	}

	at := eventTime(env.Header)
	rows := make([]model.Notification, 0, len(users))
	for _, user := range users {
		rows = append(rows, model.Notification{
			Base:     model.Base{ID: model.NewID(), CreatedAt: at, UpdatedAt: at},
			TenantID: tenantID,
			UserID:   user,
			Kind:     n.Kind,
			Title:    n.Title,
			Message:  n.Message,
			Data:     model.JSONMap(n.Data),
		})
	}
	if err := w.repo.CreateNotifications(ctx, rows); err != nil {
		w.fail("notification", errors.Wrapf(err, "store %d notifications", len(rows)))
		return
	}
	w.push(tenantID, rows)
}

// resolve merges explicit users with cart holders, drops the excluded user,
// and keeps first-seen order.
func (w *Worker) resolve(ctx context.Context, tenantID string, a schema.Audience) ([]string, error) {
	users := append([]string(nil), a.UserIDs...)
	if a.CartHoldersOf != "" {
		holders, err := w.repo.CartHolders(ctx, tenantID, a.CartHoldersOf)
		if err != nil {
			return nil, errors.Wrapf(err, "cart holders of %s", a.CartHoldersOf)
		}
		users = append(users, holders...)
	}

	seen := make(map[string]struct{}, len(users))
	out := users[:0]
	for _, u := range users {
		if u == "" || u == a.Exclude {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out, nil
}

func (w *Worker) push(tenantID string, rows []model.Notification) {
	if w.hub == nil {
		return
	}
	for i := range rows {
		payload, err := sonic.Marshal(Push{Type: "notification", Data: &rows[i]})
		if err != nil {
			logs.Warnf("marshal push for %s, err: %+v", rows[i].UserID, err)
			continue
		}
		w.hub.Send(websocket.Key{TenantID: tenantID, UserID: rows[i].UserID}, payload)
	}
}

func (w *Worker) fail(eventType string, err error) {
	obs.EventHandleFailed(eventType)
	logs.Errorf("handle %s event, err: %+v", eventType, err)
}

func eventTime(h schema.EventHeader) time.Time {
	if h.TsEvent <= 0 {
		return time.Now().UTC()
	}
	return time.Unix(0, h.TsEvent).UTC()
}
