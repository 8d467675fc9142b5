// Package cart manages the per-user cart and prices it.
package cart

import (
	"context"
	"time"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/events"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/pricing"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/schema"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

const MaxQuantity = 999

type Repository interface {
	Cart(ctx context.Context, tenantID, userID string) (*model.Cart, error)
	SaveCartItem(ctx context.Context, item *model.CartItem) error
	DeleteCartItem(ctx context.Context, cartID, productID string) error
	ClearCart(ctx context.Context, cart *model.Cart) error
	SetCartDelivery(ctx context.Context, cart *model.Cart, settingID *string) error
	RedeemPromo(ctx context.Context, cart *model.Cart, promo *model.PromoCode, usage *model.PromoUsage) error
	ReleasePromo(ctx context.Context, cart *model.Cart) error

	GetProduct(ctx context.Context, tenantID, id string) (*model.Product, error)
	GetPromo(ctx context.Context, tenantID, id string) (*model.PromoCode, error)
	PromoByCode(ctx context.Context, tenantID, code string) (*model.PromoCode, error)
	PromoUses(ctx context.Context, promoID, userID, excludeCartID string) (int, error)
	GetDelivery(ctx context.Context, tenantID, id string) (*model.DeliverySetting, error)
	DefaultDelivery(ctx context.Context, tenantID string) (*model.DeliverySetting, error)
}

// View is a cart together with its current price.
type View struct {
	*model.Cart
	Summary pricing.Summary `json:"summary"`
}

type Usecase struct {
	repo   Repository
	engine *pricing.Engine
	events *events.Emitter
	now    func() time.Time
}

func NewUsecase(repo Repository, engine *pricing.Engine, emitter *events.Emitter) *Usecase {
	return &Usecase{
		repo:   repo,
		engine: engine,
		events: emitter,
		now:    time.Now,
	}
}

// Get returns the caller's cart, creating it on first access.
func (use *Usecase) Get(ctx context.Context, id identity.Identity) (*View, error) {
	c, err := use.repo.Cart(ctx, id.TenantID, id.UserID)
	if err != nil {
		return nil, err
	}
	return use.view(ctx, id, c)
}

// AddItem puts quantity units of a product in the cart, merging with an
// existing line. The line price is refreshed to the current product price.
func (use *Usecase) AddItem(ctx context.Context, id identity.Identity, productID string, quantity int) (*View, error) {
	if quantity < 1 || quantity > MaxQuantity {
		return nil, exception.ErrCartQuantity
	}
	c, err := use.repo.Cart(ctx, id.TenantID, id.UserID)
	if err != nil {
		return nil, err
	}
	p, err := use.purchasable(ctx, id.TenantID, productID)
	if err != nil {
		return nil, err
	}

	item, ok := c.Item(productID)
	if !ok {
		c.Items = append(c.Items, model.CartItem{CartID: c.ID, ProductID: p.ID})
		item = &c.Items[len(c.Items)-1]
	}
	next := item.Quantity + quantity
	if next > MaxQuantity {
		return nil, exception.ErrCartQuantity
	}
	if next > p.Stock {
		return nil, exception.ErrInsufficientStock
	}
	item.Quantity = next
	item.Name = p.Name
	item.UnitPrice = p.Price
	if err := use.repo.SaveCartItem(ctx, item); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "cart.item_added", schema.EntityCart, c.ID, map[string]any{"product_id": p.ID, "quantity": quantity})
	return use.view(ctx, id, c)
}

// UpdateItem sets the quantity of a line; zero removes it.
func (use *Usecase) UpdateItem(ctx context.Context, id identity.Identity, productID string, quantity int) (*View, error) {
	if quantity == 0 {
		return use.RemoveItem(ctx, id, productID)
	}
	if quantity < 0 || quantity > MaxQuantity {
		return nil, exception.ErrCartQuantity
	}
	c, err := use.repo.Cart(ctx, id.TenantID, id.UserID)
	if err != nil {
		return nil, err
	}
	item, ok := c.Item(productID)
	if !ok {
		return nil, exception.ErrCartItemNotFound
	}
	p, err := use.purchasable(ctx, id.TenantID, productID)
	if err != nil {
		return nil, err
	}
	if quantity > p.Stock {
		return nil, exception.ErrInsufficientStock
	}
	item.Quantity = quantity
	item.Name = p.Name
	item.UnitPrice = p.Price
	if err := use.repo.SaveCartItem(ctx, item); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "cart.item_updated", schema.EntityCart, c.ID, map[string]any{"product_id": productID, "quantity": quantity})
	return use.view(ctx, id, c)
}

func (use *Usecase) RemoveItem(ctx context.Context, id identity.Identity, productID string) (*View, error) {
	c, err := use.repo.Cart(ctx, id.TenantID, id.UserID)
	if err != nil {
		return nil, err
	}
	if err := use.repo.DeleteCartItem(ctx, c.ID, productID); err != nil {
		return nil, err
	}
	items := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	c.Items = items
	use.events.Activity(ctx, id, "cart.item_removed", schema.EntityCart, c.ID, map[string]any{"product_id": productID})
	return use.view(ctx, id, c)
}

// Clear empties the cart and gives back any redeemed promo code.
func (use *Usecase) Clear(ctx context.Context, id identity.Identity) (*View, error) {
	c, err := use.repo.Cart(ctx, id.TenantID, id.UserID)
	if err != nil {
		return nil, err
	}
	if c.PromoCodeID != nil {
		if err := use.repo.ReleasePromo(ctx, c); err != nil {
			return nil, err
		}
	}
	if err := use.repo.ClearCart(ctx, c); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "cart.cleared", schema.EntityCart, c.ID, nil)
	return use.view(ctx, id, c)
}

// ApplyPromo redeems code against the cart. The code must currently grant a
// discount; the reason is reported otherwise.
func (use *Usecase) ApplyPromo(ctx context.Context, id identity.Identity, code string) (*View, error) {
	c, err := use.repo.Cart(ctx, id.TenantID, id.UserID)
	if err != nil {
		return nil, err
	}
	if c.PromoCodeID != nil {
		return nil, exception.ErrPromoAlreadyApplied
	}
	if len(c.Items) == 0 {
		return nil, exception.ErrCartEmpty
	}
	promo, err := use.repo.PromoByCode(ctx, id.TenantID, code)
	if err != nil {
		return nil, err
	}
	uses, err := use.repo.PromoUses(ctx, promo.ID, id.UserID, "")
	if err != nil {
		return nil, err
	}
	sum, err := use.engine.Quote(pricing.Input{Lines: lines(c), Promo: promo, UserUses: uses, Now: use.now()})
	if err != nil {
		return nil, err
	}
	if !sum.PromoStatus.OK() {
		return nil, Rejected(sum.PromoStatus)
	}

	usage := &model.PromoUsage{
		TenantID:    id.TenantID,
		PromoCodeID: promo.ID,
		CartID:      c.ID,
		UserID:      id.UserID,
		Discount:    sum.Discount,
		UsedAt:      use.now(),
	}
	if err := use.repo.RedeemPromo(ctx, c, promo, usage); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "cart.promo_applied", schema.EntityCart, c.ID, map[string]any{"code": promo.Code, "discount": sum.Discount.String()})
	return use.view(ctx, id, c)
}

func (use *Usecase) RemovePromo(ctx context.Context, id identity.Identity) (*View, error) {
	c, err := use.repo.Cart(ctx, id.TenantID, id.UserID)
	if err != nil {
		return nil, err
	}
	if err := use.repo.ReleasePromo(ctx, c); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "cart.promo_removed", schema.EntityCart, c.ID, nil)
	return use.view(ctx, id, c)
}

// SelectDelivery chooses an active delivery setting for the cart.
func (use *Usecase) SelectDelivery(ctx context.Context, id identity.Identity, settingID string) (*View, error) {
	c, err := use.repo.Cart(ctx, id.TenantID, id.UserID)
	if err != nil {
		return nil, err
	}
	d, err := use.repo.GetDelivery(ctx, id.TenantID, settingID)
	if err != nil {
		return nil, err
	}
	if !d.Active {
		return nil, exception.ErrDeliveryInactive
	}
	if err := use.repo.SetCartDelivery(ctx, c, &d.ID); err != nil {
		return nil, err
	}
	use.events.Activity(ctx, id, "cart.delivery_selected", schema.EntityCart, c.ID, map[string]any{"delivery_setting_id": d.ID})
	return use.view(ctx, id, c)
}

func (use *Usecase) Summary(ctx context.Context, id identity.Identity) (pricing.Summary, error) {
	v, err := use.Get(ctx, id)
	if err != nil {
		return pricing.Summary{}, err
	}
	return v.Summary, nil
}

// PreviewPromo prices the caller's cart as if code were applied, without
// redeeming it.
func (use *Usecase) PreviewPromo(ctx context.Context, id identity.Identity, code string) (pricing.Summary, error) {
	c, err := use.repo.Cart(ctx, id.TenantID, id.UserID)
	if err != nil {
		return pricing.Summary{}, err
	}
	promo, err := use.repo.PromoByCode(ctx, id.TenantID, code)
	if err != nil {
		return pricing.Summary{}, err
	}
	in, err := use.input(ctx, id, c)
	if err != nil {
		return pricing.Summary{}, err
	}
	applied := c.PromoCodeID != nil && *c.PromoCodeID == promo.ID
	uses, err := use.repo.PromoUses(ctx, promo.ID, id.UserID, "")
	if err != nil {
		return pricing.Summary{}, err
	}
	in.Promo, in.UserUses, in.Applied = promo, uses, applied
	return use.engine.Quote(in)
}

func (use *Usecase) view(ctx context.Context, id identity.Identity, c *model.Cart) (*View, error) {
	in, err := use.input(ctx, id, c)
	if err != nil {
		return nil, err
	}
	sum, err := use.engine.Quote(in)
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []model.CartItem{}
	}
	return &View{Cart: c, Summary: sum}, nil
}

// input gathers the promo and delivery a quote of c depends on. A selected
// delivery that was removed or deactivated falls back to the tenant default.
func (use *Usecase) input(ctx context.Context, id identity.Identity, c *model.Cart) (pricing.Input, error) {
	in := pricing.Input{Lines: lines(c), Now: use.now()}

	if c.PromoCodeID != nil {
		promo, err := use.repo.GetPromo(ctx, id.TenantID, *c.PromoCodeID)
		switch {
		case err == nil:
			uses, err := use.repo.PromoUses(ctx, promo.ID, id.UserID, "")
			if err != nil {
				return pricing.Input{}, err
			}
			in.Promo, in.UserUses, in.Applied = promo, uses, true
		case exception.KindOf(err) != exception.KindNotFound:
			return pricing.Input{}, err
		}
	}

	if c.DeliverySettingID != nil {
		d, err := use.repo.GetDelivery(ctx, id.TenantID, *c.DeliverySettingID)
		switch {
		case err == nil && d.Active:
			in.Delivery = d
		case err != nil && exception.KindOf(err) != exception.KindNotFound:
			return pricing.Input{}, err
		}
	}
	if in.Delivery == nil {
		d, err := use.repo.DefaultDelivery(ctx, id.TenantID)
		switch {
		case err == nil:
			in.Delivery = d
		case exception.KindOf(err) != exception.KindNotFound:
			return pricing.Input{}, err
		}
	}
	return in, nil
}

func (use *Usecase) purchasable(ctx context.Context, tenantID, productID string) (*model.Product, error) {
	p, err := use.repo.GetProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if !p.Purchasable() {
		return nil, exception.ErrProductInactive
	}
	return p, nil
}

func lines(c *model.Cart) []pricing.Line {
	out := make([]pricing.Line, 0, len(c.Items))
	for _, item := range c.Items {
		out = append(out, pricing.Line{ProductID: item.ProductID, UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}
	return out
}

// Rejected reports why a promo code grants no discount.
func Rejected(reason pricing.Reason) error {
	return exception.Wrap(exception.KindUnprocessable, "promo code rejected: "+reason.String(), exception.ErrPromoRejected)
}
