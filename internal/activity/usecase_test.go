package activity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
)

type captureRepo struct {
	tenant string
	filter query.ActivityFilter
}

func (c *captureRepo) ListActivities(_ context.Context, tenantID string, f query.ActivityFilter, _ query.Params) ([]model.Activity, int64, error) {
	c.tenant, c.filter = tenantID, f
	return []model.Activity{{UserID: f.UserID, Action: "cart.item_added"}}, 1, nil
}

func TestListScopesNonAdmins(t *testing.T) {
	repo := &captureRepo{}
	use := NewUsecase(repo)
	params := query.Params{Page: query.Page{Page: 1, Limit: 10}}

	_, err := use.List(context.Background(), identity.Identity{TenantID: "t1", UserID: "u1", Role: enum.RoleCustomer}, query.ActivityFilter{UserID: "u2"}, params)
	require.NoError(t, err)
	assert.Equal(t, "t1", repo.tenant)
	assert.Equal(t, "u1", repo.filter.UserID)

	res, err := use.List(context.Background(), identity.Identity{TenantID: "t1", UserID: "root", Role: enum.RoleAdmin}, query.ActivityFilter{UserID: "u2", Action: "cart.item_added"}, params)
	require.NoError(t, err)
	assert.Equal(t, "u2", repo.filter.UserID)
	assert.EqualValues(t, 1, res.Total)
	assert.Equal(t, 1, res.TotalPages)
}
