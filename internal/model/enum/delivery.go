package enum

// DeliveryMethod standard, express, pickup
type DeliveryMethod string

const (
	DeliveryMethodStandard DeliveryMethod = "standard"
	DeliveryMethodExpress  DeliveryMethod = "express"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
)

func (m DeliveryMethod) IsAvailable() bool {
	switch m {
	case DeliveryMethodStandard, DeliveryMethodExpress, DeliveryMethodPickup:
		return true
	default:
		return false
	}
}
