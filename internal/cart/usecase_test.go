package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/pricing"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/store"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/conn"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

var shopper = identity.Identity{TenantID: "t1", UserID: "u1"}

type fixture struct {
	use   *Usecase
	store *store.Store
	shirt *model.Product
	mug   *model.Product
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db, err := conn.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), conn.Option{MaxOpenConns: 1})
	require.NoError(t, err)
	s := store.New(db)
	require.NoError(t, s.Migrate(ctx))

	shirt := &model.Product{TenantID: "t1", Name: "Shirt", Slug: "shirt", SKU: "SH", Price: 2000, Stock: 5, Status: enum.ProductStatusActive}
	mug := &model.Product{TenantID: "t1", Name: "Mug", Slug: "mug", SKU: "MG", Price: 499, Stock: 100, Status: enum.ProductStatusActive}
	require.NoError(t, s.CreateProduct(ctx, shirt))
	require.NoError(t, s.CreateProduct(ctx, mug))

	use := NewUsecase(s, pricing.NewEngine(pricing.Config{TaxRateBps: 1000}), nil)
	use.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return fixture{use: use, store: s, shirt: shirt, mug: mug}
}

func TestGetCreatesEmptyCart(t *testing.T) {
	f := newFixture(t)
	v, err := f.use.Get(context.Background(), shopper)
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Empty(t, v.Items)
	assert.Equal(t, pricing.Summary{}, v.Summary)
}

func TestAddItemMergesAndChecksStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.use.AddItem(ctx, shopper, f.shirt.ID, 2)
	require.NoError(t, err)
	v, err := f.use.AddItem(ctx, shopper, f.shirt.ID, 1)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 3, v.Items[0].Quantity)
	assert.Equal(t, model.Money(6000), v.Summary.Subtotal)
	assert.Equal(t, model.Money(600), v.Summary.Tax)

	_, err = f.use.AddItem(ctx, shopper, f.shirt.ID, 3)
	assert.ErrorIs(t, err, exception.ErrInsufficientStock)

	_, err = f.use.AddItem(ctx, shopper, f.mug.ID, 0)
	assert.ErrorIs(t, err, exception.ErrCartQuantity)

	_, err = f.use.AddItem(ctx, shopper, uuid.NewString(), 1)
	assert.ErrorIs(t, err, exception.ErrProductNotFound)
}

func TestAddInactiveProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.shirt.Status = enum.ProductStatusArchived
	require.NoError(t, f.store.UpdateProduct(ctx, f.shirt))

	_, err := f.use.AddItem(ctx, shopper, f.shirt.ID, 1)
	assert.ErrorIs(t, err, exception.ErrProductInactive)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.use.AddItem(ctx, shopper, f.mug.ID, 1)
	require.NoError(t, err)
	v, err := f.use.UpdateItem(ctx, shopper, f.mug.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, v.Summary.ItemCount)

	_, err = f.use.UpdateItem(ctx, shopper, f.shirt.ID, 1)
	assert.ErrorIs(t, err, exception.ErrCartItemNotFound)

	v, err = f.use.UpdateItem(ctx, shopper, f.mug.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, v.Items)

	_, err = f.use.RemoveItem(ctx, shopper, f.mug.ID)
	assert.ErrorIs(t, err, exception.ErrCartItemNotFound)
}

func TestApplyAndRemovePromo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	promo := &model.PromoCode{TenantID: "t1", Code: "TEN", Kind: enum.PromoKindPercent, Percent: 10, PerUserLimit: 1, MinSubtotal: 1000, Active: true}
	require.NoError(t, f.store.CreatePromo(ctx, promo))

	_, err := f.use.ApplyPromo(ctx, shopper, "ten")
	assert.ErrorIs(t, err, exception.ErrCartEmpty)

	_, err = f.use.AddItem(ctx, shopper, f.mug.ID, 1)
	require.NoError(t, err)
	_, err = f.use.ApplyPromo(ctx, shopper, "ten")
	assert.ErrorIs(t, err, exception.ErrPromoRejected)
	assert.Contains(t, err.Error(), "promo code rejected: min_subtotal")

	_, err = f.use.AddItem(ctx, shopper, f.shirt.ID, 1)
	require.NoError(t, err)
	v, err := f.use.ApplyPromo(ctx, shopper, "ten")
	require.NoError(t, err)
	assert.Equal(t, "TEN", v.Summary.PromoCode)
	assert.Equal(t, model.Money(249), v.Summary.Discount)
	assert.True(t, v.Summary.PromoStatus.OK())

	_, err = f.use.ApplyPromo(ctx, shopper, "ten")
	assert.ErrorIs(t, err, exception.ErrPromoAlreadyApplied)

	got, err := f.store.GetPromo(ctx, "t1", promo.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsedCount)

	v, err = f.use.RemovePromo(ctx, shopper)
	require.NoError(t, err)
	assert.Zero(t, v.Summary.Discount)
	got, err = f.store.GetPromo(ctx, "t1", promo.ID)
	require.NoError(t, err)
	assert.Zero(t, got.UsedCount)

	_, err = f.use.RemovePromo(ctx, shopper)
	assert.ErrorIs(t, err, exception.ErrPromoNotApplied)
}

func TestPreviewPromoDoesNotRedeem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	promo := &model.PromoCode{TenantID: "t1", Code: "FIVE", Kind: enum.PromoKindFixed, Amount: 500, Active: true}
	require.NoError(t, f.store.CreatePromo(ctx, promo))
	_, err := f.use.AddItem(ctx, shopper, f.shirt.ID, 1)
	require.NoError(t, err)

	sum, err := f.use.PreviewPromo(ctx, shopper, "five")
	require.NoError(t, err)
	assert.Equal(t, model.Money(500), sum.Discount)
	assert.Equal(t, model.Money(1500+150), sum.Total)

	got, err := f.store.GetPromo(ctx, "t1", promo.ID)
	require.NoError(t, err)
	assert.Zero(t, got.UsedCount)

	_, err = f.use.PreviewPromo(ctx, shopper, "nope")
	assert.ErrorIs(t, err, exception.ErrPromoNotFound)
}

func TestDeliverySelectionAndDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	std := &model.DeliverySetting{TenantID: "t1", Name: "Standard", Method: enum.DeliveryMethodStandard, BaseFee: 500, FreeThreshold: 5000, Active: true, IsDefault: true}
	exp := &model.DeliverySetting{TenantID: "t1", Name: "Express", Method: enum.DeliveryMethodExpress, BaseFee: 1500, Active: true}
	off := &model.DeliverySetting{TenantID: "t1", Name: "Old", Method: enum.DeliveryMethodPickup, Active: false}
	for _, d := range []*model.DeliverySetting{std, exp, off} {
		require.NoError(t, f.store.CreateDelivery(ctx, d))
	}

	v, err := f.use.AddItem(ctx, shopper, f.shirt.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "standard", v.Summary.DeliveryMethod)
	assert.Equal(t, model.Money(500), v.Summary.DeliveryFee)
	assert.Equal(t, model.Money(3000), v.Summary.FreeShippingRemaining)

	v, err = f.use.SelectDelivery(ctx, shopper, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Money(1500), v.Summary.DeliveryFee)

	_, err = f.use.SelectDelivery(ctx, shopper, off.ID)
	assert.ErrorIs(t, err, exception.ErrDeliveryInactive)

	require.NoError(t, f.store.DeleteDelivery(ctx, "t1", exp.ID))
	sum, err := f.use.Summary(ctx, shopper)
	require.NoError(t, err)
	assert.Equal(t, "standard", sum.DeliveryMethod)
}

func TestClearReleasesPromo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	promo := &model.PromoCode{TenantID: "t1", Code: "ONE", Kind: enum.PromoKindFixed, Amount: 100, UsageLimit: 1, Active: true}
	require.NoError(t, f.store.CreatePromo(ctx, promo))

	_, err := f.use.AddItem(ctx, shopper, f.shirt.ID, 1)
	require.NoError(t, err)
	_, err = f.use.ApplyPromo(ctx, shopper, "ONE")
	require.NoError(t, err)

	v, err := f.use.Clear(ctx, shopper)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
	assert.Nil(t, v.PromoCodeID)

	got, err := f.store.GetPromo(ctx, "t1", promo.ID)
	require.NoError(t, err)
	assert.Zero(t, got.UsedCount)
}
