package query

import (
	"net/url"
	"strings"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

// ProductSortFields are the sortable product columns.
var ProductSortFields = Fields{
	"name":       "name",
	"price":      "price",
	"stock":      "stock",
	"rating":     "rating_avg",
	"reviews":    "rating_count",
	"created_at": "created_at",
	"createdAt":  "created_at",
	"updated_at": "updated_at",
}

// TaxonomySortFields are the sortable category and brand columns.
var TaxonomySortFields = Fields{
	"name":       "name",
	"slug":       "slug",
	"created_at": "created_at",
	"createdAt":  "created_at",
}

// ReviewSortFields are the sortable review columns.
var ReviewSortFields = Fields{
	"rating":     "rating",
	"created_at": "created_at",
	"createdAt":  "created_at",
}

// PromoSortFields are the sortable promo code columns.
var PromoSortFields = Fields{
	"code":       "code",
	"used_count": "used_count",
	"expires_at": "expires_at",
	"created_at": "created_at",
	"createdAt":  "created_at",
}

// DeliverySortFields are the sortable delivery setting columns.
var DeliverySortFields = Fields{
	"name":     "name",
	"base_fee": "base_fee",
	"days":     "estimated_days",
}

// FeedSortFields are the sortable notification and activity columns.
var FeedSortFields = Fields{
	"created_at": "created_at",
	"createdAt":  "created_at",
}

// NewestFirst is the default ordering for most listings.
var NewestFirst = Sort{{Column: "created_at", Desc: true}}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Search     string
	CategoryID string
	BrandID    string
	Status     enum.ProductStatus
	MinPrice   *model.Money
	MaxPrice   *model.Money
	InStock    *bool
}

// ParseProductFilter reads q, category, brand, status, min_price, max_price and in_stock.
func ParseProductFilter(values url.Values) (ProductFilter, error) {
	f := ProductFilter{
		Search:     strings.TrimSpace(values.Get("q")),
		CategoryID: strings.TrimSpace(values.Get("category")),
		BrandID:    strings.TrimSpace(values.Get("brand")),
		Status:     enum.ProductStatus(strings.TrimSpace(values.Get("status"))),
	}
	if f.Status != "" && !f.Status.IsAvailable() {
		return ProductFilter{}, exception.Invalid("status", "unknown product status")
	}
	if f.CategoryID != "" && !model.ValidID(f.CategoryID) {
		return ProductFilter{}, exception.Invalid("category", "invalid category id")
	}
	if f.BrandID != "" && !model.ValidID(f.BrandID) {
		return ProductFilter{}, exception.Invalid("brand", "invalid brand id")
	}
	var err error
	if f.MinPrice, err = money(values, "min_price"); err != nil {
		return ProductFilter{}, err
	}
	if f.MaxPrice, err = money(values, "max_price"); err != nil {
		return ProductFilter{}, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return ProductFilter{}, exception.Invalid("min_price", "min_price must not exceed max_price")
	}
	if f.InStock, err = Bool(values, "in_stock"); err != nil {
		return ProductFilter{}, err
	}
	return f, nil
}

// ActivityFilter narrows the tenant activity feed.
type ActivityFilter struct {
	UserID     string
	EntityType string
	Action     string
}

// ParseActivityFilter reads user, entity_type and action.
func ParseActivityFilter(values url.Values) ActivityFilter {
	return ActivityFilter{
		UserID:     strings.TrimSpace(values.Get("user")),
		EntityType: strings.TrimSpace(values.Get("entity_type")),
		Action:     strings.TrimSpace(values.Get("action")),
	}
}

func money(values url.Values, key string) (*model.Money, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	m, err := model.ParseMoney(raw)
	if err != nil || m < 0 {
		return nil, exception.Invalid(key, key+" must be a non-negative amount")
	}
	return &m, nil
}
