package store

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/rating"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

const reviewConflict = "you have already reviewed this product"

// CreateReview inserts r and folds its rating into the product aggregate.
func (s *Store) CreateReview(ctx context.Context, r *model.Review) (rating.Aggregate, error) {
	var agg rating.Aggregate
	err := s.InTx(ctx, func(tx *Store) error {
		if err := tx.db.Create(r).Error; err != nil {
			return translate(err, nil, reviewConflict)
		}
		var err error
		agg, err = tx.updateRating(r.TenantID, r.ProductID, func(a rating.Aggregate) rating.Aggregate {
			return a.Apply(r.Rating)
		})
		return err
	})
	return agg, err
}

// UpdateReview saves r and swaps oldRating for the new one in the aggregate.
func (s *Store) UpdateReview(ctx context.Context, r *model.Review, oldRating int) (rating.Aggregate, error) {
	var agg rating.Aggregate
	err := s.InTx(ctx, func(tx *Store) error {
		res := tx.db.Model(r).Scopes(tenant(r.TenantID)).
			Select("rating", "title", "comment", "updated_at").
			Updates(r)
		if res.Error != nil {
			return translate(res.Error, nil, "")
		}
		if res.RowsAffected == 0 {
			return exception.ErrReviewNotFound
		}
		var err error
		agg, err = tx.updateRating(r.TenantID, r.ProductID, func(a rating.Aggregate) rating.Aggregate {
			return a.Replace(oldRating, r.Rating)
		})
		return err
	})
	return agg, err
}

// DeleteReview removes r and takes its rating out of the aggregate.
func (s *Store) DeleteReview(ctx context.Context, r *model.Review) (rating.Aggregate, error) {
	var agg rating.Aggregate
	err := s.InTx(ctx, func(tx *Store) error {
		res := tx.db.Scopes(tenant(r.TenantID)).Where("id = ?", r.ID).Delete(&model.Review{})
		if res.Error != nil {
			return translate(res.Error, nil, "")
		}
		if res.RowsAffected == 0 {
			return exception.ErrReviewNotFound
		}
		var err error
		agg, err = tx.updateRating(r.TenantID, r.ProductID, func(a rating.Aggregate) rating.Aggregate {
			return a.Remove(r.Rating)
		})
		return err
	})
	return agg, err
}

// updateRating locks the product row and rewrites its aggregate. Must run in a transaction.
func (s *Store) updateRating(tenantID, productID string, fn func(rating.Aggregate) rating.Aggregate) (rating.Aggregate, error) {
	var p model.Product
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant(tenantID)).
		Select("id", "rating_avg", "rating_count").
		Where("id = ?", productID).
		Take(&p).Error
	if err != nil {
		return rating.Aggregate{}, translate(err, exception.ErrProductNotFound, "")
	}

	agg := fn(rating.Aggregate{Avg: p.RatingAvg, Count: p.RatingCount})
	err = s.db.Model(&model.Product{}).
		Scopes(tenant(tenantID)).
		Where("id = ?", productID).
		UpdateColumns(map[string]any{"rating_avg": agg.Avg, "rating_count": agg.Count}).Error
	if err != nil {
		return rating.Aggregate{}, translate(err, nil, "")
	}
	return agg, nil
}

func (s *Store) GetReview(ctx context.Context, tenantID, id string) (*model.Review, error) {
	var r model.Review
	if err := s.conn(ctx).Scopes(tenant(tenantID)).Where("id = ?", id).Take(&r).Error; err != nil {
		return nil, translate(err, exception.ErrReviewNotFound, "")
	}
	return &r, nil
}

func (s *Store) ListReviews(ctx context.Context, tenantID, productID string, params query.Params) ([]model.Review, int64, error) {
	db := s.conn(ctx).Scopes(tenant(tenantID)).Where("product_id = ?", productID)
	rows, total, err := page[model.Review](db, params)
	return rows, total, translate(err, nil, "")
}
