package enum

// PromoKind percent, fixed
type PromoKind string

const (
	PromoKindPercent PromoKind = "percent"
	PromoKindFixed   PromoKind = "fixed"
)

func (k PromoKind) IsAvailable() bool {
	return k == PromoKindPercent || k == PromoKindFixed
}
