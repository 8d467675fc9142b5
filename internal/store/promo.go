package store

import (
	"context"
	"strings"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

const promoConflict = "a promo code with this code already exists"

func (s *Store) CreatePromo(ctx context.Context, p *model.PromoCode) error {
	return translate(s.conn(ctx).Create(p).Error, nil, promoConflict)
}

func (s *Store) GetPromo(ctx context.Context, tenantID, id string) (*model.PromoCode, error) {
	var p model.PromoCode
	if err := s.conn(ctx).Scopes(tenant(tenantID)).Where("id = ?", id).Take(&p).Error; err != nil {
		return nil, translate(err, exception.ErrPromoNotFound, "")
	}
	return &p, nil
}

// PromoByCode looks a code up case-insensitively; codes are stored upper-cased.
func (s *Store) PromoByCode(ctx context.Context, tenantID, code string) (*model.PromoCode, error) {
	var p model.PromoCode
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := s.conn(ctx).Scopes(tenant(tenantID)).Where("code = ?", code).Take(&p).Error; err != nil {
		return nil, translate(err, exception.ErrPromoNotFound, "")
	}
	return &p, nil
}

func (s *Store) ListPromos(ctx context.Context, tenantID string, active *bool, params query.Params) ([]model.PromoCode, int64, error) {
	db := s.conn(ctx).Scopes(tenant(tenantID))
	if active != nil {
		db = db.Where("active = ?", *active)
	}
	rows, total, err := page[model.PromoCode](db, params)
	return rows, total, translate(err, nil, "")
}

// UpdatePromo writes the editable columns. used_count is only touched by redemptions.
func (s *Store) UpdatePromo(ctx context.Context, p *model.PromoCode) error {
	res := s.conn(ctx).Model(p).Scopes(tenant(p.TenantID)).
		Select("*").
		Omit("id", "tenant_id", "created_at", "used_count").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error, nil, promoConflict)
	}
	if res.RowsAffected == 0 {
		return exception.ErrPromoNotFound
	}
	return nil
}

// DeletePromo removes the code, its usages, and detaches it from carts.
func (s *Store) DeletePromo(ctx context.Context, tenantID, id string) error {
	return s.InTx(ctx, func(tx *Store) error {
		res := tx.db.Scopes(tenant(tenantID)).Where("id = ?", id).Delete(&model.PromoCode{})
		if res.Error != nil {
			return translate(res.Error, nil, "")
		}
		if res.RowsAffected == 0 {
			return exception.ErrPromoNotFound
		}
		if err := tx.db.Scopes(tenant(tenantID)).Where("promo_code_id = ?", id).Delete(&model.PromoUsage{}).Error; err != nil {
			return translate(err, nil, "")
		}
		err := tx.db.Model(&model.Cart{}).Scopes(tenant(tenantID)).
			Where("promo_code_id = ?", id).
			Update("promo_code_id", nil).Error
		return translate(err, nil, "")
	})
}

// PromoUses counts redemptions of promoID by userID, skipping excludeCartID.
func (s *Store) PromoUses(ctx context.Context, promoID, userID, excludeCartID string) (int, error) {
	var n int64
	db := s.conn(ctx).Model(&model.PromoUsage{}).Where("promo_code_id = ? AND user_id = ?", promoID, userID)
	if excludeCartID != "" {
		db = db.Where("cart_id <> ?", excludeCartID)
	}
	if err := db.Count(&n).Error; err != nil {
		return 0, translate(err, nil, "")
	}
	return int(n), nil
}
