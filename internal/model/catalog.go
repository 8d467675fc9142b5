package model

import (
	"gorm.io/gorm"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
)

type Product struct {
	Base
	TenantID       string             `gorm:"size:64;not null;uniqueIndex:idx_products_tenant_sku,priority:1;uniqueIndex:idx_products_tenant_slug,priority:1" json:"-"`
	Name           string             `gorm:"size:200;not null" json:"name"`
	Slug           string             `gorm:"size:220;not null;uniqueIndex:idx_products_tenant_slug,priority:2" json:"slug"`
	SKU            string             `gorm:"column:sku;size:64;not null;uniqueIndex:idx_products_tenant_sku,priority:2" json:"sku"`
	Description    string             `gorm:"type:text" json:"description"`
	Price          Money              `gorm:"not null;index" json:"price"`
	CompareAtPrice Money              `gorm:"not null" json:"compare_at_price"`
	Stock          int                `gorm:"not null" json:"stock"`
	Status         enum.ProductStatus `gorm:"size:16;not null;index" json:"status"`
	CategoryID     *string            `gorm:"size:36;index" json:"category_id"`
	BrandID        *string            `gorm:"size:36;index" json:"brand_id"`
	Images         StringList         `gorm:"type:text" json:"images"`
	Tags           StringList         `gorm:"type:text" json:"tags"`
	RatingAvg      float64            `gorm:"not null" json:"rating_avg"`
	RatingCount    int64              `gorm:"not null" json:"rating_count"`
	CreatedBy      string             `gorm:"size:64" json:"created_by"`

	InStock         bool `gorm:"-" json:"in_stock"`
	DiscountPercent int  `gorm:"-" json:"discount_percent"`
}

func (p *Product) AfterFind(*gorm.DB) error {
	p.Compute()
	return nil
}

func (p *Product) AfterSave(*gorm.DB) error {
	p.Compute()
	return nil
}

// Compute fills the derived fields.
func (p *Product) Compute() {
	p.InStock = p.Stock > 0
	p.DiscountPercent = 0
	if p.CompareAtPrice > p.Price && p.CompareAtPrice > 0 {
		p.DiscountPercent = int((int64(p.CompareAtPrice-p.Price) * 100) / int64(p.CompareAtPrice))
	}
}

// Purchasable reports whether the product may be placed in a cart.
func (p *Product) Purchasable() bool {
	return p.Status == enum.ProductStatusActive
}

type Category struct {
	Base
	TenantID    string  `gorm:"size:64;not null;uniqueIndex:idx_categories_tenant_slug,priority:1" json:"-"`
	Name        string  `gorm:"size:120;not null" json:"name"`
	Slug        string  `gorm:"size:140;not null;uniqueIndex:idx_categories_tenant_slug,priority:2" json:"slug"`
	Description string  `gorm:"type:text" json:"description"`
	ParentID    *string `gorm:"size:36;index" json:"parent_id"`
}

type Brand struct {
	Base
	TenantID    string `gorm:"size:64;not null;uniqueIndex:idx_brands_tenant_slug,priority:1" json:"-"`
	Name        string `gorm:"size:120;not null" json:"name"`
	Slug        string `gorm:"size:140;not null;uniqueIndex:idx_brands_tenant_slug,priority:2" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	LogoURL     string `gorm:"size:500" json:"logo_url"`
}
