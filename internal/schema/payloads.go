package schema

import "github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"

// Activity is the payload for EventActivity.
type Activity struct {
	UserID     string         `json:"user_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	IP         string         `json:"ip,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
}

// Audience selects notification recipients. Explicit users and cart
// holders are merged; Exclude is removed from the result.
type Audience struct {
	UserIDs       []string `json:"user_ids,omitempty"`
	CartHoldersOf string   `json:"cart_holders_of,omitempty"`
	Exclude       string   `json:"exclude,omitempty"`
}

// Empty reports whether the audience selects nobody.
func (a Audience) Empty() bool {
	return len(a.UserIDs) == 0 && a.CartHoldersOf == ""
}

// Notification is the payload for EventNotification.
type Notification struct {
	Audience Audience              `json:"audience"`
	Kind     enum.NotificationKind `json:"kind"`
	Title    string                `json:"title"`
	Message  string                `json:"message"`
	Data     map[string]any        `json:"data,omitempty"`
}

// Entity types recorded in activity events.
const (
	EntityProduct  = "product"
	EntityCategory = "category"
	EntityBrand    = "brand"
	EntityCart     = "cart"
	EntityReview   = "review"
	EntityPromo    = "promo_code"
	EntityDelivery = "delivery_setting"
	EntityNotice   = "notification"
)
