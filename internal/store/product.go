package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

const productConflict = "a product with this sku or slug already exists"

func (s *Store) CreateProduct(ctx context.Context, p *model.Product) error {
	return translate(s.conn(ctx).Create(p).Error, nil, productConflict)
}

// CreateProducts inserts products in chunks. Rows may belong to different tenants.
func (s *Store) CreateProducts(ctx context.Context, ps []model.Product) error {
	if len(ps) == 0 {
		return nil
	}
	return translate(s.conn(ctx).CreateInBatches(ps, createBatchSize).Error, nil, productConflict)
}

func (s *Store) GetProduct(ctx context.Context, tenantID, id string) (*model.Product, error) {
	var p model.Product
	err := s.conn(ctx).Scopes(tenant(tenantID)).Where("id = ?", id).Take(&p).Error
	if err != nil {
		return nil, translate(err, exception.ErrProductNotFound, "")
	}
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, tenantID string, f query.ProductFilter, params query.Params) ([]model.Product, int64, error) {
	db := s.conn(ctx).Scopes(tenant(tenantID), productFilter(f))
	rows, total, err := page[model.Product](db, params)
	if err != nil {
		return nil, 0, translate(err, nil, "")
	}
	return rows, total, nil
}

func productFilter(f query.ProductFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Search != "" {
			db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
		}
		if f.CategoryID != "" {
			db = db.Where("category_id = ?", f.CategoryID)
		}
		if f.BrandID != "" {
			db = db.Where("brand_id = ?", f.BrandID)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.MinPrice != nil {
			db = db.Where("price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			db = db.Where("price <= ?", *f.MaxPrice)
		}
		if f.InStock != nil {
			if *f.InStock {
				db = db.Where("stock > 0")
			} else {
				db = db.Where("stock <= 0")
			}
		}
		return db
	}
}

// UpdateProduct writes every editable column of p. Rating aggregates are
// owned by the review flow and are never overwritten here.
func (s *Store) UpdateProduct(ctx context.Context, p *model.Product) error {
	res := s.conn(ctx).Model(p).
		Scopes(tenant(p.TenantID)).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by", "rating_avg", "rating_count").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error, nil, productConflict)
	}
	if res.RowsAffected == 0 {
		return exception.ErrProductNotFound
	}
	return nil
}

// DeleteProduct removes the product together with its reviews and cart lines.
func (s *Store) DeleteProduct(ctx context.Context, tenantID, id string) error {
	return s.InTx(ctx, func(tx *Store) error {
		res := tx.db.Scopes(tenant(tenantID)).Where("id = ?", id).Delete(&model.Product{})
		if res.Error != nil {
			return translate(res.Error, nil, "")
		}
		if res.RowsAffected == 0 {
			return exception.ErrProductNotFound
		}
		if err := tx.db.Scopes(tenant(tenantID)).Where("product_id = ?", id).Delete(&model.Review{}).Error; err != nil {
			return translate(err, nil, "")
		}
		if err := tx.db.Where("product_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
			return translate(err, nil, "")
		}
		return nil
	})
}

// AdjustStock adds delta to the stock counter without letting it go negative
// and returns the updated product.
func (s *Store) AdjustStock(ctx context.Context, tenantID, id string, delta int) (*model.Product, error) {
	res := s.conn(ctx).Model(&model.Product{}).
		Scopes(tenant(tenantID)).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return nil, translate(res.Error, nil, "")
	}
	p, err := s.GetProduct(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, exception.ErrInsufficientStock
	}
	return p, nil
}

// CartHolders returns the users whose cart currently contains productID.
func (s *Store) CartHolders(ctx context.Context, tenantID, productID string) ([]string, error) {
	var users []string
	err := s.conn(ctx).Model(&model.Cart{}).
		Distinct("carts.user_id").
		Joins("JOIN cart_items ON cart_items.cart_id = carts.id").
		Where("carts.tenant_id = ? AND cart_items.product_id = ?", tenantID, productID).
		Pluck("carts.user_id", &users).Error
	if err != nil {
		return nil, translate(err, nil, "")
	}
	return users, nil
}

func (s *Store) countProducts(ctx context.Context, tenantID, column, value string) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&model.Product{}).Scopes(tenant(tenantID)).Where(column+" = ?", value).Count(&n).Error
	return n, translate(err, nil, "")
}
