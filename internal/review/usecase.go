// Package review manages product reviews and keeps the product rating in step.
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/events"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/rating"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/schema"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

type Repository interface {
	GetProduct(ctx context.Context, tenantID, id string) (*model.Product, error)
	CreateReview(ctx context.Context, r *model.Review) (rating.Aggregate, error)
	UpdateReview(ctx context.Context, r *model.Review, oldRating int) (rating.Aggregate, error)
	DeleteReview(ctx context.Context, r *model.Review) (rating.Aggregate, error)
	GetReview(ctx context.Context, tenantID, id string) (*model.Review, error)
	ListReviews(ctx context.Context, tenantID, productID string, params query.Params) ([]model.Review, int64, error)
}

// Input creates or edits a review. Nil fields are left unchanged on edit.
type Input struct {
	Rating  *int    `json:"rating"`
	Title   *string `json:"title"`
	Comment *string `json:"comment"`
}

func (in Input) apply(r *model.Review) error {
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
	if in.Title != nil {
		r.Title = strings.TrimSpace(*in.Title)
	}
	if in.Comment != nil {
		r.Comment = strings.TrimSpace(*in.Comment)
	}
	if !rating.Valid(r.Rating) {
		return exception.ErrReviewRating
	}
	if len(r.Title) > 200 {
		return exception.Invalid("title", "title must be at most 200 characters")
	}
	return nil
}

// Result is a review write with the product aggregate it produced.
type Result struct {
	Review      *model.Review `json:"review"`
	RatingAvg   float64       `json:"rating_avg"`
	RatingCount int64         `json:"rating_count"`
}

func newResult(r *model.Review, agg rating.Aggregate) *Result {
	return &Result{Review: r, RatingAvg: agg.Rounded(), RatingCount: agg.Count}
}

type Usecase struct {
	repo   Repository
	events *events.Emitter
}

func NewUsecase(repo Repository, emitter *events.Emitter) *Usecase {
	return &Usecase{repo: repo, events: emitter}
}

// Create adds the caller's review of productID and tells the product's
// creator about it.
func (use *Usecase) Create(ctx context.Context, id identity.Identity, productID string, in Input) (*Result, error) {
	if in.Rating == nil {
		return nil, exception.ErrReviewRating
	}
	p, err := use.repo.GetProduct(ctx, id.TenantID, productID)
	if err != nil {
		return nil, err
	}
	r := &model.Review{TenantID: id.TenantID, ProductID: p.ID, UserID: id.UserID}
	if err := in.apply(r); err != nil {
		return nil, err
	}
	agg, err := use.repo.CreateReview(ctx, r)
	if err != nil {
		return nil, err
	}

	use.events.Activity(ctx, id, "review.created", schema.EntityReview, r.ID, map[string]any{"product_id": p.ID, "rating": r.Rating})
	if p.CreatedBy != "" {
		use.events.Notify(ctx, id, schema.Notification{
			Audience: schema.Audience{UserIDs: []string{p.CreatedBy}, Exclude: id.UserID},
			Kind:     enum.NotificationNewReview,
			Title:    "New review",
			Message:  fmt.Sprintf("%s received a %d star review", p.Name, r.Rating),
			Data:     map[string]any{"product_id": p.ID, "review_id": r.ID, "rating": r.Rating},
		})
	}
	return newResult(r, agg), nil
}

func (use *Usecase) Get(ctx context.Context, id identity.Identity, reviewID string) (*model.Review, error) {
	return use.repo.GetReview(ctx, id.TenantID, reviewID)
}

func (use *Usecase) ListByProduct(ctx context.Context, id identity.Identity, productID string, params query.Params) (query.Result[model.Review], error) {
	if _, err := use.repo.GetProduct(ctx, id.TenantID, productID); err != nil {
		return query.Result[model.Review]{}, err
	}
	rows, total, err := use.repo.ListReviews(ctx, id.TenantID, productID, params)
	if err != nil {
		return query.Result[model.Review]{}, err
	}
	return query.NewResult(rows, params.Page, total), nil
}

// Update edits a review. Only its author may edit it.
func (use *Usecase) Update(ctx context.Context, id identity.Identity, reviewID string, in Input) (*Result, error) {
	r, err := use.owned(ctx, id, reviewID, false)
	if err != nil {
		return nil, err
	}
	old := r.Rating
	if err := in.apply(r); err != nil {
		return nil, err
	}
	agg, err := use.repo.UpdateReview(ctx, r, old)
	if err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "review.updated", schema.EntityReview, r.ID, map[string]any{"product_id": r.ProductID, "rating": r.Rating})
	return newResult(r, agg), nil
}

// Delete removes a review. Its author or an admin may delete it.
func (use *Usecase) Delete(ctx context.Context, id identity.Identity, reviewID string) error {
	r, err := use.owned(ctx, id, reviewID, true)
	if err != nil {
		return err
	}
	if _, err := use.repo.DeleteReview(ctx, r); err != nil {
		return err
	}
	use.events.Activity(ctx, id, "review.deleted", schema.EntityReview, r.ID, map[string]any{"product_id": r.ProductID})
	return nil
}

func (use *Usecase) owned(ctx context.Context, id identity.Identity, reviewID string, adminAllowed bool) (*model.Review, error) {
	r, err := use.repo.GetReview(ctx, id.TenantID, reviewID)
	if err != nil {
		return nil, err
	}
	if r.UserID != id.UserID && !(adminAllowed && id.IsAdmin()) {
		return nil, exception.ErrReviewNotOwner
	}
	return r, nil
}
