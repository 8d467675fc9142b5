// Package events publishes activity and notification events. Publishing is
// fire-and-forget: failures are logged and counted, never returned.
package events

import (
	"context"
	"time"

	"github.com/yanun0323/logs"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/bus"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/codec"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/obs"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/schema"
)

// Emitter encodes events and hands them to a publisher.
// A nil *Emitter drops everything.
type Emitter struct {
	pub bus.Publisher
	seq *obs.Sequence
	now func() time.Time
}

func NewEmitter(pub bus.Publisher) *Emitter {
	return &Emitter{
		pub: pub,
		seq: obs.NewSequence(0),
		now: time.Now,
	}
}

// Activity records that id performed action on an entity.
func (e *Emitter) Activity(ctx context.Context, id identity.Identity, action, entityType, entityID string, metadata map[string]any) {
	if e == nil {
		return
	}
	e.emit(ctx, schema.EventActivity, id, schema.Activity{
		UserID:     id.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		IP:         id.IP,
		UserAgent:  id.UserAgent,
	})
}

// Notify asks the worker to fan a notification out to an audience.
func (e *Emitter) Notify(ctx context.Context, id identity.Identity, n schema.Notification) {
	if e == nil {
		return
	}
	if n.Audience.Empty() {
		return
	}
	e.emit(ctx, schema.EventNotification, id, n)
}

func (e *Emitter) emit(ctx context.Context, eventType schema.EventType, id identity.Identity, payload any) {
	header := schema.NewHeader(eventType, model.NewID(), id.TenantID, e.seq.Next(), e.now().UnixNano())
	header.TraceID = id.RequestID

	data, err := codec.Encode(header, payload)
	if err != nil {
		obs.EventEmitFailed(eventType.Subject())
		logs.Errorf("encode %s event, err: %+v", eventType.Subject(), err)
		return
	}
	if err := e.pub.Publish(ctx, eventType.Subject(), data); err != nil {
		obs.EventEmitFailed(eventType.Subject())
		logs.Warnf("publish %s event %s, err: %+v", eventType.Subject(), header.ID, err)
	}
}
