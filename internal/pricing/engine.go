package pricing

import (
	"time"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

const (
	maxInt64 = int64(^uint64(0) >> 1)
	bpsScale = 10000
)

// Config defines tax behavior.
type Config struct {
	TaxRateBps  int64 `mapstructure:"tax_rate_bps" json:"taxRateBps"`
	TaxDelivery bool  `mapstructure:"tax_delivery" json:"taxDelivery"`
}

// Line is one priced cart line.
type Line struct {
	ProductID string
	UnitPrice model.Money
	Quantity  int
}

// Input is everything a quote depends on.
type Input struct {
	Lines    []Line
	Promo    *model.PromoCode
	Delivery *model.DeliverySetting
	// UserUses counts the caller's recorded redemptions of Promo.
	UserUses int
	// Applied marks Promo as already redeemed by this cart; its own usage
	// is excluded from the limit checks.
	Applied bool
	Now     time.Time
}

// Summary is the priced cart.
type Summary struct {
	ItemCount             int         `json:"item_count"`
	Subtotal              model.Money `json:"subtotal"`
	Discount              model.Money `json:"discount"`
	DeliveryFee           model.Money `json:"delivery_fee"`
	Tax                   model.Money `json:"tax"`
	Total                 model.Money `json:"total"`
	PromoCode             string      `json:"promo_code,omitempty"`
	PromoStatus           Reason      `json:"promo_status,omitempty"`
	DeliveryMethod        string      `json:"delivery_method,omitempty"`
	FreeShippingRemaining model.Money `json:"free_shipping_remaining"`
}

// Engine prices carts.
type Engine struct {
	cfg Config
}

// NewEngine creates a pricing engine with static tax settings.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the tax settings in use.
func (e *Engine) Config() Config {
	return e.cfg
}

// Quote computes subtotal, discount, delivery fee, tax and total.
func (e *Engine) Quote(in Input) (Summary, error) {
	var sum Summary

	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			continue
		}
		lineTotal, overflow := mulMoney(line.UnitPrice, line.Quantity)
		if overflow {
			return Summary{}, exception.ErrPricingOverflow
		}
		next, overflow := addMoney(sum.Subtotal, lineTotal)
		if overflow {
			return Summary{}, exception.ErrPricingOverflow
		}
		sum.Subtotal = next
		sum.ItemCount += line.Quantity
	}

	if in.Promo != nil {
		sum.PromoCode = in.Promo.Code
		sum.Discount, sum.PromoStatus = e.EvaluatePromo(in.Promo, in.UserUses, in.Applied, sum.Subtotal, in.Now)
	}

	discounted := sum.Subtotal - sum.Discount
	if in.Delivery != nil {
		sum.DeliveryMethod = string(in.Delivery.Method)
		sum.DeliveryFee, sum.FreeShippingRemaining = deliveryFee(in.Delivery, discounted, sum.ItemCount)
	}

	taxable := discounted
	if e.cfg.TaxDelivery {
		var overflow bool
		if taxable, overflow = addMoney(taxable, sum.DeliveryFee); overflow {
			return Summary{}, exception.ErrPricingOverflow
		}
	}
	tax, overflow := applyBps(taxable, e.cfg.TaxRateBps)
	if overflow {
		return Summary{}, exception.ErrPricingOverflow
	}
	sum.Tax = tax

	total, overflow := addMoney(discounted, sum.DeliveryFee)
	if overflow {
		return Summary{}, exception.ErrPricingOverflow
	}
	if total, overflow = addMoney(total, sum.Tax); overflow {
		return Summary{}, exception.ErrPricingOverflow
	}
	sum.Total = total

	return sum, nil
}

// EvaluatePromo returns the discount promo grants against subtotal, or the
// reason it grants none.
func (e *Engine) EvaluatePromo(promo *model.PromoCode, userUses int, applied bool, subtotal model.Money, now time.Time) (model.Money, Reason) {
	if promo == nil {
		return 0, ReasonNone
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if !promo.Active {
		return 0, ReasonInactive
	}
	if promo.StartsAt != nil && now.Before(*promo.StartsAt) {
		return 0, ReasonNotStarted
	}
	if promo.ExpiresAt != nil && !now.Before(*promo.ExpiresAt) {
		return 0, ReasonExpired
	}

	used := promo.UsedCount
	if applied {
		used--
		userUses--
	}
	if promo.UsageLimit > 0 && used >= promo.UsageLimit {
		return 0, ReasonUsageLimit
	}
	if promo.PerUserLimit > 0 && userUses >= promo.PerUserLimit {
		return 0, ReasonUserLimit
	}
	if subtotal <= 0 {
		return 0, ReasonNoItems
	}
	if promo.MinSubtotal > 0 && subtotal < promo.MinSubtotal {
		return 0, ReasonMinSubtotal
	}

	var discount model.Money
	switch promo.Kind {
	case enum.PromoKindPercent:
		d, overflow := applyPercent(subtotal, promo.Percent)
		if overflow {
			d = subtotal
		}
		discount = d
		if promo.MaxDiscount > 0 && discount > promo.MaxDiscount {
			discount = promo.MaxDiscount
		}
	case enum.PromoKindFixed:
		discount = promo.Amount
	}
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount, ReasonNone
}

func deliveryFee(setting *model.DeliverySetting, discounted model.Money, items int) (fee model.Money, remaining model.Money) {
	if items == 0 {
		return 0, 0
	}
	if setting.FreeThreshold > 0 {
		if discounted >= setting.FreeThreshold {
			return 0, 0
		}
		remaining = setting.FreeThreshold - discounted
	}
	return setting.BaseFee, remaining
}

func mulMoney(price model.Money, qty int) (model.Money, bool) {
	p := int64(price)
	q := int64(qty)
	if p == 0 || q == 0 {
		return 0, false
	}
	if p < 0 || q < 0 {
		return 0, true
	}
	if p > maxInt64/q {
		return 0, true
	}
	return model.Money(p * q), false
}

func addMoney(a, b model.Money) (model.Money, bool) {
	if b > 0 && int64(a) > maxInt64-int64(b) {
		return 0, true
	}
	return a + b, false
}

// applyBps rounds amount × bps / 10000 half up.
func applyBps(amount model.Money, bps int64) (model.Money, bool) {
	if amount <= 0 || bps <= 0 {
		return 0, false
	}
	a := int64(amount)
	if a > (maxInt64-bpsScale/2)/bps {
		return 0, true
	}
	return model.Money((a*bps + bpsScale/2) / bpsScale), false
}

// applyPercent floors amount × percent / 100.
func applyPercent(amount model.Money, percent int) (model.Money, bool) {
	if amount <= 0 || percent <= 0 {
		return 0, false
	}
	if percent > 100 {
		percent = 100
	}
	a := int64(amount)
	if a > maxInt64/int64(percent) {
		return 0, true
	}
	return model.Money(a * int64(percent) / 100), false
}
