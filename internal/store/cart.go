package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
}

// Cart returns the cart of userID, creating an empty one on first access.
func (s *Store) Cart(ctx context.Context, tenantID, userID string) (*model.Cart, error) {
	find := func() (*model.Cart, error) {
		var c model.Cart
		err := s.conn(ctx).Scopes(tenant(tenantID), preloadItems).Where("user_id = ?", userID).Take(&c).Error
		if err != nil {
			return nil, err
		}
		return &c, nil
	}

	c, err := find()
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translate(err, nil, "")
	}

	c = &model.Cart{TenantID: tenantID, UserID: userID, Items: []model.CartItem{}}
	err = s.conn(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// another request created it first
		c, err = find()
	}
	if err != nil {
		return nil, translate(err, nil, "")
	}
	return c, nil
}

// SaveCartItem inserts or updates one line.
func (s *Store) SaveCartItem(ctx context.Context, item *model.CartItem) error {
	return translate(s.conn(ctx).Save(item).Error, nil, "product is already in the cart")
}

func (s *Store) DeleteCartItem(ctx context.Context, cartID, productID string) error {
	res := s.conn(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&model.CartItem{})
	if res.Error != nil {
		return translate(res.Error, nil, "")
	}
	if res.RowsAffected == 0 {
		return exception.ErrCartItemNotFound
	}
	return nil
}

// ClearCart removes every line and the delivery choice.
func (s *Store) ClearCart(ctx context.Context, cart *model.Cart) error {
	return s.InTx(ctx, func(tx *Store) error {
		if err := tx.db.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
			return translate(err, nil, "")
		}
		if err := tx.db.Model(cart).Update("delivery_setting_id", nil).Error; err != nil {
			return translate(err, nil, "")
		}
		cart.Items = []model.CartItem{}
		cart.DeliverySettingID = nil
		return nil
	})
}

func (s *Store) SetCartDelivery(ctx context.Context, cart *model.Cart, settingID *string) error {
	if err := s.conn(ctx).Model(cart).Update("delivery_setting_id", settingID).Error; err != nil {
		return translate(err, nil, "")
	}
	cart.DeliverySettingID = settingID
	return nil
}

// RedeemPromo records the usage, bumps used_count, and attaches the code to
// the cart atomically. The usage limit is rechecked inside the update so
// concurrent redemptions cannot overshoot it.
func (s *Store) RedeemPromo(ctx context.Context, cart *model.Cart, promo *model.PromoCode, usage *model.PromoUsage) error {
	return s.InTx(ctx, func(tx *Store) error {
		if err := tx.db.Create(usage).Error; err != nil {
			return translate(err, nil, exception.ErrPromoAlreadyApplied.Message)
		}
		res := tx.db.Model(&model.PromoCode{}).
			Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", promo.ID).
			Update("used_count", gorm.Expr("used_count + 1"))
		if res.Error != nil {
			return translate(res.Error, nil, "")
		}
		if res.RowsAffected == 0 {
			return exception.Wrap(exception.KindUnprocessable, "promo code rejected: usage_limit", exception.ErrPromoRejected)
		}
		if err := tx.db.Model(cart).Update("promo_code_id", promo.ID).Error; err != nil {
			return translate(err, nil, "")
		}
		cart.PromoCodeID = &promo.ID
		promo.UsedCount++
		return nil
	})
}

// ReleasePromo reverses RedeemPromo for the cart's current code.
func (s *Store) ReleasePromo(ctx context.Context, cart *model.Cart) error {
	if cart.PromoCodeID == nil {
		return exception.ErrPromoNotApplied
	}
	promoID := *cart.PromoCodeID
	return s.InTx(ctx, func(tx *Store) error {
		res := tx.db.Where("promo_code_id = ? AND cart_id = ?", promoID, cart.ID).Delete(&model.PromoUsage{})
		if res.Error != nil {
			return translate(res.Error, nil, "")
		}
		if res.RowsAffected > 0 {
			err := tx.db.Model(&model.PromoCode{}).
				Where("id = ? AND used_count > 0", promoID).
				Update("used_count", gorm.Expr("used_count - 1")).Error
			if err != nil {
				return translate(err, nil, "")
			}
		}
		if err := tx.db.Model(cart).Update("promo_code_id", nil).Error; err != nil {
			return translate(err, nil, "")
		}
		cart.PromoCodeID = nil
		return nil
	})
}
