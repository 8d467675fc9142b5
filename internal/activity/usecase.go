// Package activity reads the tenant audit trail written by the worker.
package activity

import (
	"context"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
)

type Repository interface {
	ListActivities(ctx context.Context, tenantID string, f query.ActivityFilter, params query.Params) ([]model.Activity, int64, error)
}

type Usecase struct {
	repo Repository
}

func NewUsecase(repo Repository) *Usecase {
	return &Usecase{repo: repo}
}

// List returns the tenant feed to admins; other callers only see their own entries.
func (use *Usecase) List(ctx context.Context, id identity.Identity, f query.ActivityFilter, params query.Params) (query.Result[model.Activity], error) {
	if !id.IsAdmin() {
		f.UserID = id.UserID
	}
	rows, total, err := use.repo.ListActivities(ctx, id.TenantID, f, params)
	if err != nil {
		return query.Result[model.Activity]{}, err
	}
	return query.NewResult(rows, params.Page, total), nil
}
