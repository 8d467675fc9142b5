package store

import (
	"context"
	"strings"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

const (
	categoryConflict = "a category with this slug already exists"
	brandConflict    = "a brand with this slug already exists"
)

func (s *Store) CreateCategory(ctx context.Context, c *model.Category) error {
	return translate(s.conn(ctx).Create(c).Error, nil, categoryConflict)
}

func (s *Store) GetCategory(ctx context.Context, tenantID, id string) (*model.Category, error) {
	var c model.Category
	if err := s.conn(ctx).Scopes(tenant(tenantID)).Where("id = ?", id).Take(&c).Error; err != nil {
		return nil, translate(err, exception.ErrCategoryNotFound, "")
	}
	return &c, nil
}

func (s *Store) ListCategories(ctx context.Context, tenantID, search string, params query.Params) ([]model.Category, int64, error) {
	db := s.conn(ctx).Scopes(tenant(tenantID))
	if search = strings.TrimSpace(search); search != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	rows, total, err := page[model.Category](db, params)
	return rows, total, translate(err, nil, "")
}

func (s *Store) UpdateCategory(ctx context.Context, c *model.Category) error {
	res := s.conn(ctx).Model(c).Scopes(tenant(c.TenantID)).
		Select("name", "slug", "description", "parent_id", "updated_at").
		Updates(c)
	if res.Error != nil {
		return translate(res.Error, nil, categoryConflict)
	}
	if res.RowsAffected == 0 {
		return exception.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory refuses while products or child categories still point at it.
func (s *Store) DeleteCategory(ctx context.Context, tenantID, id string) error {
	return s.InTx(ctx, func(tx *Store) error {
		n, err := tx.countProducts(ctx, tenantID, "category_id", id)
		if err != nil {
			return err
		}
		if n > 0 {
			return exception.ErrCategoryInUse
		}
		var children int64
		if err := tx.db.Model(&model.Category{}).Scopes(tenant(tenantID)).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return translate(err, nil, "")
		}
		if children > 0 {
			return exception.ErrCategoryInUse
		}
		res := tx.db.Scopes(tenant(tenantID)).Where("id = ?", id).Delete(&model.Category{})
		if res.Error != nil {
			return translate(res.Error, nil, "")
		}
		if res.RowsAffected == 0 {
			return exception.ErrCategoryNotFound
		}
		return nil
	})
}

func (s *Store) CreateBrand(ctx context.Context, b *model.Brand) error {
	return translate(s.conn(ctx).Create(b).Error, nil, brandConflict)
}

func (s *Store) GetBrand(ctx context.Context, tenantID, id string) (*model.Brand, error) {
	var b model.Brand
	if err := s.conn(ctx).Scopes(tenant(tenantID)).Where("id = ?", id).Take(&b).Error; err != nil {
		return nil, translate(err, exception.ErrBrandNotFound, "")
	}
	return &b, nil
}

func (s *Store) ListBrands(ctx context.Context, tenantID, search string, params query.Params) ([]model.Brand, int64, error) {
	db := s.conn(ctx).Scopes(tenant(tenantID))
	if search = strings.TrimSpace(search); search != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	rows, total, err := page[model.Brand](db, params)
	return rows, total, translate(err, nil, "")
}

func (s *Store) UpdateBrand(ctx context.Context, b *model.Brand) error {
	res := s.conn(ctx).Model(b).Scopes(tenant(b.TenantID)).
		Select("name", "slug", "description", "logo_url", "updated_at").
		Updates(b)
	if res.Error != nil {
		return translate(res.Error, nil, brandConflict)
	}
	if res.RowsAffected == 0 {
		return exception.ErrBrandNotFound
	}
	return nil
}

func (s *Store) DeleteBrand(ctx context.Context, tenantID, id string) error {
	return s.InTx(ctx, func(tx *Store) error {
		n, err := tx.countProducts(ctx, tenantID, "brand_id", id)
		if err != nil {
			return err
		}
		if n > 0 {
			return exception.ErrBrandInUse
		}
		res := tx.db.Scopes(tenant(tenantID)).Where("id = ?", id).Delete(&model.Brand{})
		if res.Error != nil {
			return translate(res.Error, nil, "")
		}
		if res.RowsAffected == 0 {
			return exception.ErrBrandNotFound
		}
		return nil
	})
}
