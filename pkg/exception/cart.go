package exception

var (
	ErrCartItemNotFound     = New(KindNotFound, "cart item not found")
	ErrCartEmpty            = New(KindUnprocessable, "cart is empty")
	ErrCartQuantity         = Invalid("quantity", "quantity must be between 1 and 999")
	ErrDeliveryNotFound     = New(KindNotFound, "delivery setting not found")
	ErrDeliveryInactive     = New(KindUnprocessable, "delivery setting is not active")
	ErrPricingOverflow      = New(KindUnprocessable, "cart amount overflows")
	ErrPromoAlreadyApplied  = New(KindConflict, "a promo code is already applied")
	ErrPromoNotApplied      = New(KindNotFound, "no promo code applied")
	ErrPromoNotFound        = New(KindNotFound, "promo code not found")
	ErrPromoRejected        = New(KindUnprocessable, "promo code cannot be applied")
	ErrPromoInvalidWindow   = Invalid("expires_at", "expires_at must be after starts_at")
	ErrPromoInvalidValue    = Invalid("percent", "percent must be between 1 and 100")
	ErrReviewNotFound       = New(KindNotFound, "review not found")
	ErrReviewRating         = Invalid("rating", "rating must be between 1 and 5")
	ErrReviewNotOwner       = New(KindForbidden, "review belongs to another user")
	ErrNotificationNotFound = New(KindNotFound, "notification not found")
)
