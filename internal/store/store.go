// Package store persists the commerce entities through gorm. Every read and
// write is scoped to a tenant.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

const createBatchSize = 200

// Store is the gorm backed repository for all resources.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates every table and index.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return exception.Wrap(exception.KindInternal, "migrate schema", err)
	}
	return nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return exception.Wrap(exception.KindUnavailable, "database handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return exception.Wrap(exception.KindUnavailable, "database unreachable", err)
	}
	return nil
}

// InTx runs fn against a store bound to one transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func tenant(tenantID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// translate maps driver errors onto the exception taxonomy.
func translate(err error, notFound error, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if notFound != nil {
			return notFound
		}
		return exception.Wrap(exception.KindNotFound, "record not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return exception.Conflict(conflict, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return exception.Wrap(exception.KindUnavailable, "request cancelled", err)
	default:
		var e *exception.Error
		if errors.As(err, &e) {
			return err
		}
		return exception.Wrap(exception.KindInternal, "database error", err)
	}
}

// page runs a counted, paged find of T under scope.
func page[T any](db *gorm.DB, params query.Params) ([]T, int64, error) {
	var (
		total int64
		rows  []T
	)
	db = db.Model(new(T)).Session(&gorm.Session{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 || int64(params.Offset()) >= total {
		return []T{}, total, nil
	}
	if err := db.Scopes(params.Scope).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
