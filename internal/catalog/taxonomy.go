package catalog

import (
	"context"
	"strings"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/schema"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

const maxCategoryDepth = 32

func (use *Usecase) CreateCategory(ctx context.Context, id identity.Identity, in TaxonomyInput) (*model.Category, error) {
	c := &model.Category{TenantID: id.TenantID}
	if err := use.applyCategory(ctx, c, in); err != nil {
		return nil, err
	}
	if err := use.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "category.created", schema.EntityCategory, c.ID, nil)
	return c, nil
}

func (use *Usecase) GetCategory(ctx context.Context, id identity.Identity, categoryID string) (*model.Category, error) {
	return use.repo.GetCategory(ctx, id.TenantID, categoryID)
}

func (use *Usecase) ListCategories(ctx context.Context, id identity.Identity, search string, params query.Params) (query.Result[model.Category], error) {
	rows, total, err := use.repo.ListCategories(ctx, id.TenantID, search, params)
	if err != nil {
		return query.Result[model.Category]{}, err
	}
	return query.NewResult(rows, params.Page, total), nil
}

func (use *Usecase) UpdateCategory(ctx context.Context, id identity.Identity, categoryID string, in TaxonomyInput) (*model.Category, error) {
	c, err := use.repo.GetCategory(ctx, id.TenantID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := use.applyCategory(ctx, c, in); err != nil {
		return nil, err
	}
	if err := use.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "category.updated", schema.EntityCategory, c.ID, nil)
	return c, nil
}

func (use *Usecase) DeleteCategory(ctx context.Context, id identity.Identity, categoryID string) error {
	if err := use.repo.DeleteCategory(ctx, id.TenantID, categoryID); err != nil {
		return err
	}
	use.events.Activity(ctx, id, "category.deleted", schema.EntityCategory, categoryID, nil)
	return nil
}

func (use *Usecase) applyCategory(ctx context.Context, c *model.Category, in TaxonomyInput) error {
	if err := in.names(&c.Name, &c.Slug); err != nil {
		return err
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.ParentID != nil {
		c.ParentID = optionalID(*in.ParentID)
	}
	if c.ParentID == nil {
		return nil
	}
	if !model.ValidID(*c.ParentID) {
		return exception.Invalid("parent_id", "invalid parent id")
	}
	return use.checkAncestry(ctx, c)
}

// checkAncestry walks up from c's parent and rejects a chain that returns to c.
func (use *Usecase) checkAncestry(ctx context.Context, c *model.Category) error {
	next := c.ParentID
	for depth := 0; next != nil; depth++ {
		if c.ID != "" && *next == c.ID {
			return exception.ErrCategoryCycle
		}
		if depth >= maxCategoryDepth {
			return exception.Invalid("parent_id", "category tree is too deep")
		}
		parent, err := use.repo.GetCategory(ctx, c.TenantID, *next)
		if err != nil {
			return err
		}
		next = parent.ParentID
	}
	return nil
}

func (use *Usecase) CreateBrand(ctx context.Context, id identity.Identity, in TaxonomyInput) (*model.Brand, error) {
	b := &model.Brand{TenantID: id.TenantID}
	if err := applyBrand(b, in); err != nil {
		return nil, err
	}
	if err := use.repo.CreateBrand(ctx, b); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "brand.created", schema.EntityBrand, b.ID, nil)
	return b, nil
}

func (use *Usecase) GetBrand(ctx context.Context, id identity.Identity, brandID string) (*model.Brand, error) {
	return use.repo.GetBrand(ctx, id.TenantID, brandID)
}

func (use *Usecase) ListBrands(ctx context.Context, id identity.Identity, search string, params query.Params) (query.Result[model.Brand], error) {
	rows, total, err := use.repo.ListBrands(ctx, id.TenantID, search, params)
	if err != nil {
		return query.Result[model.Brand]{}, err
	}
	return query.NewResult(rows, params.Page, total), nil
}

func (use *Usecase) UpdateBrand(ctx context.Context, id identity.Identity, brandID string, in TaxonomyInput) (*model.Brand, error) {
	b, err := use.repo.GetBrand(ctx, id.TenantID, brandID)
	if err != nil {
		return nil, err
	}
	if err := applyBrand(b, in); err != nil {
		return nil, err
	}
	if err := use.repo.UpdateBrand(ctx, b); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "brand.updated", schema.EntityBrand, b.ID, nil)
	return b, nil
}

func (use *Usecase) DeleteBrand(ctx context.Context, id identity.Identity, brandID string) error {
	if err := use.repo.DeleteBrand(ctx, id.TenantID, brandID); err != nil {
		return err
	}
	use.events.Activity(ctx, id, "brand.deleted", schema.EntityBrand, brandID, nil)
	return nil
}

func applyBrand(b *model.Brand, in TaxonomyInput) error {
	if err := in.names(&b.Name, &b.Slug); err != nil {
		return err
	}
	if in.Description != nil {
		b.Description = strings.TrimSpace(*in.Description)
	}
	if in.LogoURL != nil {
		b.LogoURL = strings.TrimSpace(*in.LogoURL)
	}
	return nil
}
