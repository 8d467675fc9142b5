// Package catalog manages products, categories and brands.
package catalog

import (
	"context"
	"fmt"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/events"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/schema"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

const DefaultMaxBulk = 1000

type Repository interface {
	CreateProduct(ctx context.Context, p *model.Product) error
	GetProduct(ctx context.Context, tenantID, id string) (*model.Product, error)
	ListProducts(ctx context.Context, tenantID string, f query.ProductFilter, params query.Params) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, tenantID, id string) error
	AdjustStock(ctx context.Context, tenantID, id string, delta int) (*model.Product, error)

	CreateCategory(ctx context.Context, c *model.Category) error
	GetCategory(ctx context.Context, tenantID, id string) (*model.Category, error)
	ListCategories(ctx context.Context, tenantID, search string, params query.Params) ([]model.Category, int64, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, tenantID, id string) error

	CreateBrand(ctx context.Context, b *model.Brand) error
	GetBrand(ctx context.Context, tenantID, id string) (*model.Brand, error)
	ListBrands(ctx context.Context, tenantID, search string, params query.Params) ([]model.Brand, int64, error)
	UpdateBrand(ctx context.Context, b *model.Brand) error
	DeleteBrand(ctx context.Context, tenantID, id string) error
}

// Importer queues products for a batched insert.
type Importer interface {
	TryAppend(items ...model.Product) error
}

type Usecase struct {
	repo     Repository
	importer Importer
	events   *events.Emitter
	maxBulk  int
}

func NewUsecase(repo Repository, importer Importer, emitter *events.Emitter, maxBulk int) *Usecase {
	if maxBulk <= 0 {
		maxBulk = DefaultMaxBulk
	}
	return &Usecase{
		repo:     repo,
		importer: importer,
		events:   emitter,
		maxBulk:  maxBulk,
	}
}

func (use *Usecase) CreateProduct(ctx context.Context, id identity.Identity, in ProductInput) (*model.Product, error) {
	p := &model.Product{TenantID: id.TenantID, CreatedBy: id.UserID}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := use.checkRefs(ctx, id.TenantID, p); err != nil {
		return nil, err
	}
	if err := use.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "product.created", schema.EntityProduct, p.ID, map[string]any{"sku": p.SKU})
	return p, nil
}

func (use *Usecase) GetProduct(ctx context.Context, id identity.Identity, productID string) (*model.Product, error) {
	return use.repo.GetProduct(ctx, id.TenantID, productID)
}

func (use *Usecase) ListProducts(ctx context.Context, id identity.Identity, f query.ProductFilter, params query.Params) (query.Result[model.Product], error) {
	rows, total, err := use.repo.ListProducts(ctx, id.TenantID, f, params)
	if err != nil {
		return query.Result[model.Product]{}, err
	}
	return query.NewResult(rows, params.Page, total), nil
}

// UpdateProduct applies a partial update. A lower price or a restock on an
// active product notifies the users holding it in their carts.
func (use *Usecase) UpdateProduct(ctx context.Context, id identity.Identity, productID string, in ProductInput) (*model.Product, error) {
	p, err := use.repo.GetProduct(ctx, id.TenantID, productID)
	if err != nil {
		return nil, err
	}
	before := *p
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := use.checkRefs(ctx, id.TenantID, p); err != nil {
		return nil, err
	}
	if err := use.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "product.updated", schema.EntityProduct, p.ID, nil)
	use.notifyTransitions(ctx, id, &before, p)
	return p, nil
}

func (use *Usecase) DeleteProduct(ctx context.Context, id identity.Identity, productID string) error {
	if err := use.repo.DeleteProduct(ctx, id.TenantID, productID); err != nil {
		return err
	}
	use.events.Activity(ctx, id, "product.deleted", schema.EntityProduct, productID, nil)
	return nil
}

// AdjustStock adds delta (which may be negative) to the product stock.
func (use *Usecase) AdjustStock(ctx context.Context, id identity.Identity, productID string, delta int) (*model.Product, error) {
	if delta == 0 {
		return nil, exception.Invalid("delta", "delta must not be zero")
	}
	p, err := use.repo.AdjustStock(ctx, id.TenantID, productID, delta)
	if err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "product.stock_adjusted", schema.EntityProduct, p.ID, map[string]any{"delta": delta, "stock": p.Stock})
	if delta > 0 && p.Stock == delta {
		before := *p
		before.Stock = 0
		use.notifyTransitions(ctx, id, &before, p)
	}
	return p, nil
}

// ImportProducts validates every product and queues them for a batched insert.
// The products are assigned ids up front so the caller can track them.
func (use *Usecase) ImportProducts(ctx context.Context, id identity.Identity, in []ProductInput) ([]model.Product, error) {
	if len(in) == 0 {
		return nil, exception.Invalid("products", "at least one product is required")
	}
	if len(in) > use.maxBulk {
		return nil, exception.ErrBulkTooLarge
	}
	if use.importer == nil {
		return nil, exception.ErrBulkQueueFull
	}

	products := make([]model.Product, 0, len(in))
	for i, item := range in {
		p := model.Product{TenantID: id.TenantID, CreatedBy: id.UserID}
		if err := item.apply(&p); err != nil {
			if e, ok := exception.As(err); ok {
				return nil, exception.Invalid(fmt.Sprintf("products[%d].%s", i, e.Field), e.Message)
			}
			return nil, err
		}
		p.ID = model.NewID()
		products = append(products, p)
	}
	if err := use.checkBulkRefs(ctx, id.TenantID, products); err != nil {
		return nil, err
	}

	if err := use.importer.TryAppend(products...); err != nil {
		return nil, exception.Wrap(exception.KindUnavailable, exception.ErrBulkQueueFull.Message, err)
	}
	use.events.Activity(ctx, id, "product.bulk_imported", schema.EntityProduct, "", map[string]any{"count": len(products)})
	return products, nil
}

func (use *Usecase) checkRefs(ctx context.Context, tenantID string, p *model.Product) error {
	if p.CategoryID != nil {
		if _, err := use.repo.GetCategory(ctx, tenantID, *p.CategoryID); err != nil {
			return err
		}
	}
	if p.BrandID != nil {
		if _, err := use.repo.GetBrand(ctx, tenantID, *p.BrandID); err != nil {
			return err
		}
	}
	return nil
}

// checkBulkRefs looks each distinct category and brand up once and names the
// first row referencing a missing one.
func (use *Usecase) checkBulkRefs(ctx context.Context, tenantID string, ps []model.Product) error {
	seen := make(map[string]struct{})
	for i := range ps {
		if ref := ps[i].CategoryID; ref != nil {
			if _, ok := seen["c:"+*ref]; !ok {
				if _, err := use.repo.GetCategory(ctx, tenantID, *ref); err != nil {
					return rowError(i, "category_id", err)
				}
				seen["c:"+*ref] = struct{}{}
			}
		}
		if ref := ps[i].BrandID; ref != nil {
			if _, ok := seen["b:"+*ref]; !ok {
				if _, err := use.repo.GetBrand(ctx, tenantID, *ref); err != nil {
					return rowError(i, "brand_id", err)
				}
				seen["b:"+*ref] = struct{}{}
			}
		}
	}
	return nil
}

func rowError(i int, field string, err error) error {
	e, ok := exception.As(err)
	if !ok || e.Kind == exception.KindInternal {
		return err
	}
	return &exception.Error{Kind: e.Kind, Message: e.Message, Field: fmt.Sprintf("products[%d].%s", i, field), Cause: err}
}

func (use *Usecase) notifyTransitions(ctx context.Context, id identity.Identity, before, after *model.Product) {
	if !after.Purchasable() {
		return
	}
	audience := schema.Audience{CartHoldersOf: after.ID, Exclude: id.UserID}
	if after.Price < before.Price {
		use.events.Notify(ctx, id, schema.Notification{
			Audience: audience,
			Kind:     enum.NotificationPriceDrop,
			Title:    "Price drop",
			Message:  fmt.Sprintf("%s is now %s (was %s)", after.Name, after.Price, before.Price),
			Data:     map[string]any{"product_id": after.ID, "old_price": before.Price.String(), "new_price": after.Price.String()},
		})
	}
	if before.Stock <= 0 && after.Stock > 0 {
		use.events.Notify(ctx, id, schema.Notification{
			Audience: audience,
			Kind:     enum.NotificationBackInStock,
			Title:    "Back in stock",
			Message:  after.Name + " is back in stock",
			Data:     map[string]any{"product_id": after.ID, "stock": after.Stock},
		})
	}
}
