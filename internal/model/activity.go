package model

import (
	"time"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
)

type Notification struct {
	Base
	TenantID string                `gorm:"size:64;not null;index:idx_notifications_inbox,priority:1" json:"-"`
	UserID   string                `gorm:"size:64;not null;index:idx_notifications_inbox,priority:2" json:"user_id"`
	Kind     enum.NotificationKind `gorm:"size:32;not null" json:"kind"`
	Title    string                `gorm:"size:200;not null" json:"title"`
	Message  string                `gorm:"type:text" json:"message"`
	Data     JSONMap               `gorm:"type:text" json:"data"`
	Read     bool                  `gorm:"not null;index:idx_notifications_inbox,priority:3" json:"read"`
	ReadAt   *time.Time            `json:"read_at"`
}

type Activity struct {
	Base
	TenantID   string  `gorm:"size:64;not null;index" json:"-"`
	UserID     string  `gorm:"size:64;index" json:"user_id"`
	Action     string  `gorm:"size:64;not null;index" json:"action"`
	EntityType string  `gorm:"size:32;not null" json:"entity_type"`
	EntityID   string  `gorm:"size:36" json:"entity_id"`
	Metadata   JSONMap `gorm:"type:text" json:"metadata"`
	IP         string  `gorm:"size:64" json:"ip"`
	UserAgent  string  `gorm:"size:300" json:"user_agent"`
}

// All lists every persisted model for migration.
func All() []any {
	return []any{
		&Category{},
		&Brand{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Review{},
		&PromoCode{},
		&PromoUsage{},
		&DeliverySetting{},
		&Notification{},
		&Activity{},
	}
}
