package store

import (
	"context"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

// CreateDelivery inserts d; when d is the default the previous default is cleared
// in the same transaction.
func (s *Store) CreateDelivery(ctx context.Context, d *model.DeliverySetting) error {
	return s.InTx(ctx, func(tx *Store) error {
		if d.IsDefault {
			if err := tx.clearDefault(d.TenantID, ""); err != nil {
				return err
			}
		}
		return translate(tx.db.Create(d).Error, nil, "delivery setting already exists")
	})
}

func (s *Store) UpdateDelivery(ctx context.Context, d *model.DeliverySetting) error {
	return s.InTx(ctx, func(tx *Store) error {
		if d.IsDefault {
			if err := tx.clearDefault(d.TenantID, d.ID); err != nil {
				return err
			}
		}
		res := tx.db.Model(d).Scopes(tenant(d.TenantID)).
			Select("name", "method", "base_fee", "free_threshold", "estimated_days", "active", "is_default", "updated_at").
			Updates(d)
		if res.Error != nil {
			return translate(res.Error, nil, "")
		}
		if res.RowsAffected == 0 {
			return exception.ErrDeliveryNotFound
		}
		return nil
	})
}

func (s *Store) clearDefault(tenantID, keepID string) error {
	db := s.db.Model(&model.DeliverySetting{}).Scopes(tenant(tenantID)).Where("is_default = ?", true)
	if keepID != "" {
		db = db.Where("id <> ?", keepID)
	}
	return translate(db.Update("is_default", false).Error, nil, "")
}

func (s *Store) GetDelivery(ctx context.Context, tenantID, id string) (*model.DeliverySetting, error) {
	var d model.DeliverySetting
	if err := s.conn(ctx).Scopes(tenant(tenantID)).Where("id = ?", id).Take(&d).Error; err != nil {
		return nil, translate(err, exception.ErrDeliveryNotFound, "")
	}
	return &d, nil
}

// DefaultDelivery returns the active default setting of the tenant.
func (s *Store) DefaultDelivery(ctx context.Context, tenantID string) (*model.DeliverySetting, error) {
	var d model.DeliverySetting
	err := s.conn(ctx).Scopes(tenant(tenantID)).
		Where("is_default = ? AND active = ?", true, true).
		Take(&d).Error
	if err != nil {
		return nil, translate(err, exception.ErrDeliveryNotFound, "")
	}
	return &d, nil
}

func (s *Store) ListDelivery(ctx context.Context, tenantID string, activeOnly bool, params query.Params) ([]model.DeliverySetting, int64, error) {
	db := s.conn(ctx).Scopes(tenant(tenantID))
	if activeOnly {
		db = db.Where("active = ?", true)
	}
	rows, total, err := page[model.DeliverySetting](db, params)
	return rows, total, translate(err, nil, "")
}

// DeleteDelivery removes the setting and clears it from carts that selected it.
func (s *Store) DeleteDelivery(ctx context.Context, tenantID, id string) error {
	return s.InTx(ctx, func(tx *Store) error {
		res := tx.db.Scopes(tenant(tenantID)).Where("id = ?", id).Delete(&model.DeliverySetting{})
		if res.Error != nil {
			return translate(res.Error, nil, "")
		}
		if res.RowsAffected == 0 {
			return exception.ErrDeliveryNotFound
		}
		err := tx.db.Model(&model.Cart{}).Scopes(tenant(tenantID)).
			Where("delivery_setting_id = ?", id).
			Update("delivery_setting_id", nil).Error
		return translate(err, nil, "")
	})
}
