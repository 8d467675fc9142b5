// Package promo administers promo codes.
package promo

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/events"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/schema"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,40}$`)

type Repository interface {
	CreatePromo(ctx context.Context, p *model.PromoCode) error
	GetPromo(ctx context.Context, tenantID, id string) (*model.PromoCode, error)
	ListPromos(ctx context.Context, tenantID string, active *bool, params query.Params) ([]model.PromoCode, int64, error)
	UpdatePromo(ctx context.Context, p *model.PromoCode) error
	DeletePromo(ctx context.Context, tenantID, id string) error
}

// Input creates or partially updates a promo code.
type Input struct {
	Code         *string         `json:"code"`
	Description  *string         `json:"description"`
	Kind         *enum.PromoKind `json:"kind"`
	Percent      *int            `json:"percent"`
	Amount       *model.Money    `json:"amount"`
	MinSubtotal  *model.Money    `json:"min_subtotal"`
	MaxDiscount  *model.Money    `json:"max_discount"`
	UsageLimit   *int            `json:"usage_limit"`
	PerUserLimit *int            `json:"per_user_limit"`
	StartsAt     *time.Time      `json:"starts_at"`
	ExpiresAt    *time.Time      `json:"expires_at"`
	Active       *bool           `json:"active"`
	// Announce lists users told about the code once it is saved.
	Announce []string `json:"announce_to"`
}

func (in Input) apply(p *model.PromoCode) error {
	if in.Code != nil {
		p.Code = strings.ToUpper(strings.TrimSpace(*in.Code))
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Kind != nil {
		p.Kind = *in.Kind
	}
	if in.Percent != nil {
		p.Percent = *in.Percent
	}
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	if in.MinSubtotal != nil {
		p.MinSubtotal = *in.MinSubtotal
	}
	if in.MaxDiscount != nil {
		p.MaxDiscount = *in.MaxDiscount
	}
	if in.UsageLimit != nil {
		p.UsageLimit = *in.UsageLimit
	}
	if in.PerUserLimit != nil {
		p.PerUserLimit = *in.PerUserLimit
	}
	if in.StartsAt != nil {
		p.StartsAt = in.StartsAt
	}
	if in.ExpiresAt != nil {
		p.ExpiresAt = in.ExpiresAt
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	return validate(p)
}

func validate(p *model.PromoCode) error {
	switch {
	case !codePattern.MatchString(p.Code):
		return exception.Invalid("code", "code must be 3-40 characters of A-Z, 0-9, _ or -")
	case !p.Kind.IsAvailable():
		return exception.Invalid("kind", "kind must be percent or fixed")
	case p.Kind == enum.PromoKindPercent && (p.Percent < 1 || p.Percent > 100):
		return exception.ErrPromoInvalidValue
	case p.Kind == enum.PromoKindFixed && p.Amount <= 0:
		return exception.Invalid("amount", "fixed promo amount must be positive")
	case p.MinSubtotal < 0:
		return exception.Invalid("min_subtotal", "min_subtotal must not be negative")
	case p.MaxDiscount < 0:
		return exception.Invalid("max_discount", "max_discount must not be negative")
	case p.UsageLimit < 0:
		return exception.Invalid("usage_limit", "usage_limit must not be negative")
	case p.PerUserLimit < 0:
		return exception.Invalid("per_user_limit", "per_user_limit must not be negative")
	case p.StartsAt != nil && p.ExpiresAt != nil && !p.ExpiresAt.After(*p.StartsAt):
		return exception.ErrPromoInvalidWindow
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

func (use *Usecase) Create(ctx context.Context, id identity.Identity, in Input) (*model.PromoCode, error) {
	p := &model.PromoCode{TenantID: id.TenantID, Active: true}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := use.repo.CreatePromo(ctx, p); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "promo.created", schema.EntityPromo, p.ID, map[string]any{"code": p.Code})
	use.announce(ctx, id, p, in.Announce)
	return p, nil
}

func (use *Usecase) Get(ctx context.Context, id identity.Identity, promoID string) (*model.PromoCode, error) {
	return use.repo.GetPromo(ctx, id.TenantID, promoID)
}

func (use *Usecase) List(ctx context.Context, id identity.Identity, active *bool, params query.Params) (query.Result[model.PromoCode], error) {
	rows, total, err := use.repo.ListPromos(ctx, id.TenantID, active, params)
	if err != nil {
		return query.Result[model.PromoCode]{}, err
	}
	return query.NewResult(rows, params.Page, total), nil
}

func (use *Usecase) Update(ctx context.Context, id identity.Identity, promoID string, in Input) (*model.PromoCode, error) {
	p, err := use.repo.GetPromo(ctx, id.TenantID, promoID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := use.repo.UpdatePromo(ctx, p); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "promo.updated", schema.EntityPromo, p.ID, map[string]any{"code": p.Code})
	use.announce(ctx, id, p, in.Announce)
	return p, nil
}

func (use *Usecase) Delete(ctx context.Context, id identity.Identity, promoID string) error {
	if err := use.repo.DeletePromo(ctx, id.TenantID, promoID); err != nil {
		return err
	}
	use.events.Activity(ctx, id, "promo.deleted", schema.EntityPromo, promoID, nil)
	return nil
}

func (use *Usecase) announce(ctx context.Context, id identity.Identity, p *model.PromoCode, users []string) {
	if len(users) == 0 || !p.Active {
		return
	}
	use.events.Notify(ctx, id, schema.Notification{
		Audience: schema.Audience{UserIDs: users},
		Kind:     enum.NotificationPromo,
		Title:    "New promo code",
		Message:  "Use " + p.Code + " at checkout",
		Data:     map[string]any{"code": p.Code, "promo_id": p.ID},
	})
}
