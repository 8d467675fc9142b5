package model

import "time"

// Cart is the single active cart of a user within a tenant.
type Cart struct {
	Base
	TenantID          string     `gorm:"size:64;not null;uniqueIndex:idx_carts_tenant_user,priority:1" json:"-"`
	UserID            string     `gorm:"size:64;not null;uniqueIndex:idx_carts_tenant_user,priority:2" json:"user_id"`
	PromoCodeID       *string    `gorm:"size:36" json:"promo_code_id"`
	DeliverySettingID *string    `gorm:"size:36" json:"delivery_setting_id"`
	Items             []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

// Item returns the line for productID, if present.
func (c *Cart) Item(productID string) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CartID    string    `gorm:"size:36;not null;uniqueIndex:idx_cart_items_cart_product,priority:1" json:"-"`
	ProductID string    `gorm:"size:36;not null;uniqueIndex:idx_cart_items_cart_product,priority:2;index" json:"product_id"`
	Name      string    `gorm:"size:200" json:"name"`
	UnitPrice Money     `gorm:"not null" json:"unit_price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
