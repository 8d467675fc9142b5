// Package delivery manages the shipping options a tenant offers.
package delivery

import (
	"context"
	"strings"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/events"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/schema"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

type Repository interface {
	CreateDelivery(ctx context.Context, d *model.DeliverySetting) error
	UpdateDelivery(ctx context.Context, d *model.DeliverySetting) error
	GetDelivery(ctx context.Context, tenantID, id string) (*model.DeliverySetting, error)
	DefaultDelivery(ctx context.Context, tenantID string) (*model.DeliverySetting, error)
	ListDelivery(ctx context.Context, tenantID string, activeOnly bool, params query.Params) ([]model.DeliverySetting, int64, error)
	DeleteDelivery(ctx context.Context, tenantID, id string) error
}

type Input struct {
	Name          *string              `json:"name"`
	Method        *enum.DeliveryMethod `json:"method"`
	BaseFee       *model.Money         `json:"base_fee"`
	FreeThreshold *model.Money         `json:"free_threshold"`
	EstimatedDays *int                 `json:"estimated_days"`
	Active        *bool                `json:"active"`
	IsDefault     *bool                `json:"is_default"`
}

func (in Input) apply(d *model.DeliverySetting) error {
	if in.Name != nil {
		d.Name = strings.TrimSpace(*in.Name)
	}
	if in.Method != nil {
		d.Method = *in.Method
	}
	if in.BaseFee != nil {
		d.BaseFee = *in.BaseFee
	}
	if in.FreeThreshold != nil {
		d.FreeThreshold = *in.FreeThreshold
	}
	if in.EstimatedDays != nil {
		d.EstimatedDays = *in.EstimatedDays
	}
	if in.Active != nil {
		d.Active = *in.Active
	}
	if in.IsDefault != nil {
		d.IsDefault = *in.IsDefault
	}

	switch {
	case d.Name == "" || len(d.Name) > 120:
		return exception.Invalid("name", "name is required and at most 120 characters")
	case !d.Method.IsAvailable():
		return exception.Invalid("method", "method must be standard, express or pickup")
	case d.BaseFee < 0:
		return exception.Invalid("base_fee", "base_fee must not be negative")
	case d.FreeThreshold < 0:
		return exception.Invalid("free_threshold", "free_threshold must not be negative")
	case d.EstimatedDays < 0:
		return exception.Invalid("estimated_days", "estimated_days must not be negative")
	case d.IsDefault && !d.Active:
		return exception.Invalid("is_default", "the default delivery setting must be active")
	}
	return nil
}

type Usecase struct {
	repo   Repository
	events *events.Emitter
}

func NewUsecase(repo Repository, emitter *events.Emitter) *Usecase {
	return &Usecase{repo: repo, events: emitter}
}

func (use *Usecase) Create(ctx context.Context, id identity.Identity, in Input) (*model.DeliverySetting, error) {
	d := &model.DeliverySetting{TenantID: id.TenantID, Method: enum.DeliveryMethodStandard, Active: true}
	if err := in.apply(d); err != nil {
		return nil, err
	}
	if err := use.repo.CreateDelivery(ctx, d); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "delivery.created", schema.EntityDelivery, d.ID, map[string]any{"name": d.Name})
	return d, nil
}

// Get hides inactive settings from non-admin callers.
func (use *Usecase) Get(ctx context.Context, id identity.Identity, settingID string) (*model.DeliverySetting, error) {
	d, err := use.repo.GetDelivery(ctx, id.TenantID, settingID)
	if err != nil {
		return nil, err
	}
	if !d.Active && !id.IsAdmin() {
		return nil, exception.ErrDeliveryNotFound
	}
	return d, nil
}

func (use *Usecase) Default(ctx context.Context, id identity.Identity) (*model.DeliverySetting, error) {
	return use.repo.DefaultDelivery(ctx, id.TenantID)
}

// List returns every setting to admins and active ones to everybody else.
func (use *Usecase) List(ctx context.Context, id identity.Identity, params query.Params) (query.Result[model.DeliverySetting], error) {
	rows, total, err := use.repo.ListDelivery(ctx, id.TenantID, !id.IsAdmin(), params)
	if err != nil {
		return query.Result[model.DeliverySetting]{}, err
	}
	return query.NewResult(rows, params.Page, total), nil
}

func (use *Usecase) Update(ctx context.Context, id identity.Identity, settingID string, in Input) (*model.DeliverySetting, error) {
	d, err := use.repo.GetDelivery(ctx, id.TenantID, settingID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(d); err != nil {
		return nil, err
	}
	if err := use.repo.UpdateDelivery(ctx, d); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "delivery.updated", schema.EntityDelivery, d.ID, nil)
	return d, nil
}

func (use *Usecase) Delete(ctx context.Context, id identity.Identity, settingID string) error {
	if err := use.repo.DeleteDelivery(ctx, id.TenantID, settingID); err != nil {
		return err
	}
	use.events.Activity(ctx, id, "delivery.deleted", schema.EntityDelivery, settingID, nil)
	return nil
}
