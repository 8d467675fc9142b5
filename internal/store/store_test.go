package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/conn"
)

const testTenant = "tenant-a"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := conn.Open(sqlite.Open(dsn), conn.Option{MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	s := New(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func seedProduct(t *testing.T, s *Store, name string, price model.Money, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		TenantID: testTenant,
		Name:     name,
		Slug:     uuid.NewString(),
		SKU:      uuid.NewString()[:12],
		Price:    price,
		Stock:    stock,
		Status:   enum.ProductStatusActive,
	}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

func firstPage(sort query.Sort) query.Params {
	return query.Params{Page: query.Page{Page: 1, Limit: 10}, Sort: sort}
}
