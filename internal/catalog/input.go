package catalog

import (
	"strings"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

const (
	maxNameLen = 200
	maxSKULen  = 64
)

// ProductInput is a create or partial update request. Nil fields are left unchanged.
type ProductInput struct {
	Name           *string             `json:"name"`
	Slug           *string             `json:"slug"`
	SKU            *string             `json:"sku"`
	Description    *string             `json:"description"`
	Price          *model.Money        `json:"price"`
	CompareAtPrice *model.Money        `json:"compare_at_price"`
	Stock          *int                `json:"stock"`
	Status         *enum.ProductStatus `json:"status"`
	CategoryID     *string             `json:"category_id"`
	BrandID        *string             `json:"brand_id"`
	Images         []string            `json:"images"`
	Tags           []string            `json:"tags"`
}

// apply copies the set fields onto p and validates the result.
func (in ProductInput) apply(p *model.Product) error {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		p.Slug = Slugify(*in.Slug)
	}
	if in.SKU != nil {
		p.SKU = strings.ToUpper(strings.TrimSpace(*in.SKU))
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.CompareAtPrice != nil {
		p.CompareAtPrice = *in.CompareAtPrice
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.CategoryID != nil {
		p.CategoryID = optionalID(*in.CategoryID)
	}
	if in.BrandID != nil {
		p.BrandID = optionalID(*in.BrandID)
	}
	if in.Images != nil {
		p.Images = model.StringList(in.Images)
	}
	if in.Tags != nil {
		p.Tags = normalizeTags(in.Tags)
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if p.Status == "" {
		p.Status = enum.ProductStatusActive
	}
	p.Compute()
	return validateProduct(p)
}

func validateProduct(p *model.Product) error {
	switch {
	case p.Name == "" || len(p.Name) > maxNameLen:
		return exception.Invalid("name", "name is required and must be at most 200 characters")
	case p.Slug == "":
		return exception.Invalid("slug", "slug must contain letters or digits")
	case p.SKU == "" || len(p.SKU) > maxSKULen:
		return exception.Invalid("sku", "sku is required and must be at most 64 characters")
	case p.Price < 0:
		return exception.Invalid("price", "price must not be negative")
	case p.CompareAtPrice < 0:
		return exception.Invalid("compare_at_price", "compare_at_price must not be negative")
	case p.Stock < 0:
		return exception.Invalid("stock", "stock must not be negative")
	case !p.Status.IsAvailable():
		return exception.Invalid("status", "status must be one of active, draft, archived")
	case p.CategoryID != nil && !model.ValidID(*p.CategoryID):
		return exception.Invalid("category_id", "invalid category id")
	case p.BrandID != nil && !model.ValidID(*p.BrandID):
		return exception.Invalid("brand_id", "invalid brand id")
	}
	return nil
}

func optionalID(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func normalizeTags(tags []string) model.StringList {
	out := make(model.StringList, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// TaxonomyInput creates or updates a category or brand.
type TaxonomyInput struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"`
	LogoURL     *string `json:"logo_url"`
}

func (in TaxonomyInput) names(name, slug *string) error {
	if in.Name != nil {
		*name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		*slug = Slugify(*in.Slug)
	}
	if *slug == "" {
		*slug = Slugify(*name)
	}
	if *name == "" || len(*name) > 120 {
		return exception.Invalid("name", "name is required and must be at most 120 characters")
	}
	if *slug == "" {
		return exception.Invalid("slug", "slug must contain letters or digits")
	}
	return nil
}
