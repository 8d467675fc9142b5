package enum

// NotificationKind describes why a notification was produced.
type NotificationKind string

const (
	NotificationPriceDrop   NotificationKind = "price_drop"
	NotificationBackInStock NotificationKind = "back_in_stock"
	NotificationNewReview   NotificationKind = "new_review"
	NotificationPromo       NotificationKind = "promo"
	NotificationSystem      NotificationKind = "system"
)
