package model

import (
	"time"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
)

type PromoCode struct {
	Base
	TenantID     string         `gorm:"size:64;not null;uniqueIndex:idx_promo_codes_tenant_code,priority:1" json:"-"`
	Code         string         `gorm:"size:40;not null;uniqueIndex:idx_promo_codes_tenant_code,priority:2" json:"code"`
	Description  string         `gorm:"size:500" json:"description"`
	Kind         enum.PromoKind `gorm:"size:16;not null" json:"kind"`
	Percent      int            `gorm:"not null" json:"percent"`
	Amount       Money          `gorm:"not null" json:"amount"`
	MinSubtotal  Money          `gorm:"not null" json:"min_subtotal"`
	MaxDiscount  Money          `gorm:"not null" json:"max_discount"`
	UsageLimit   int            `gorm:"not null" json:"usage_limit"`
	PerUserLimit int            `gorm:"not null" json:"per_user_limit"`
	UsedCount    int            `gorm:"not null" json:"used_count"`
	StartsAt     *time.Time     `json:"starts_at"`
	ExpiresAt    *time.Time     `json:"expires_at"`
	Active       bool           `gorm:"not null" json:"active"`
}

type PromoUsage struct {
	Base
	TenantID    string    `gorm:"size:64;not null;index" json:"-"`
	PromoCodeID string    `gorm:"size:36;not null;uniqueIndex:idx_promo_usages_promo_cart,priority:1;index:idx_promo_usages_promo_user,priority:1" json:"promo_code_id"`
	CartID      string    `gorm:"size:36;not null;uniqueIndex:idx_promo_usages_promo_cart,priority:2" json:"cart_id"`
	UserID      string    `gorm:"size:64;not null;index:idx_promo_usages_promo_user,priority:2" json:"user_id"`
	Discount    Money     `gorm:"not null" json:"discount"`
	UsedAt      time.Time `gorm:"not null" json:"used_at"`
}

type DeliverySetting struct {
	Base
	TenantID      string              `gorm:"size:64;not null;index" json:"-"`
	Name          string              `gorm:"size:120;not null" json:"name"`
	Method        enum.DeliveryMethod `gorm:"size:16;not null" json:"method"`
	BaseFee       Money               `gorm:"not null" json:"base_fee"`
	FreeThreshold Money               `gorm:"not null" json:"free_threshold"`
	EstimatedDays int                 `gorm:"not null" json:"estimated_days"`
	Active        bool                `gorm:"not null" json:"active"`
	IsDefault     bool                `gorm:"not null" json:"is_default"`
}
