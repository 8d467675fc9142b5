package model

type Review struct {
	Base
	TenantID  string `gorm:"size:64;not null;uniqueIndex:idx_reviews_tenant_product_user,priority:1" json:"-"`
	ProductID string `gorm:"size:36;not null;uniqueIndex:idx_reviews_tenant_product_user,priority:2;index" json:"product_id"`
	UserID    string `gorm:"size:64;not null;uniqueIndex:idx_reviews_tenant_product_user,priority:3" json:"user_id"`
	Rating    int    `gorm:"not null" json:"rating"`
	Title     string `gorm:"size:200" json:"title"`
	Comment   string `gorm:"type:text" json:"comment"`
}
