package pricing

// Reason explains why a promo code granted no discount.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonInactive
	ReasonNotStarted
	ReasonExpired
	ReasonUsageLimit
	ReasonUserLimit
	ReasonMinSubtotal
	ReasonNoItems
)

var reasonNames = [...]string{
	ReasonNone:        "",
	ReasonInactive:    "inactive",
	ReasonNotStarted:  "not_started",
	ReasonExpired:     "expired",
	ReasonUsageLimit:  "usage_limit",
	ReasonUserLimit:   "user_limit",
	ReasonMinSubtotal: "min_subtotal",
	ReasonNoItems:     "cart_empty",
}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// OK reports whether the promo applies.
func (r Reason) OK() bool {
	return r == ReasonNone
}
