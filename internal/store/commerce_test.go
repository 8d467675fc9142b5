package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

func TestCategoryInUse(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c := &model.Category{TenantID: testTenant, Name: "Shoes", Slug: "shoes"}
	require.NoError(t, s.CreateCategory(ctx, c))
	err := s.CreateCategory(ctx, &model.Category{TenantID: testTenant, Name: "Shoes", Slug: "shoes"})
	assert.Equal(t, exception.KindConflict, exception.KindOf(err))

	p := seedProduct(t, s, "Runner", 100, 1)
	p.CategoryID = &c.ID
	require.NoError(t, s.UpdateProduct(ctx, p))

	assert.ErrorIs(t, s.DeleteCategory(ctx, testTenant, c.ID), exception.ErrCategoryInUse)
	require.NoError(t, s.DeleteProduct(ctx, testTenant, p.ID))
	require.NoError(t, s.DeleteCategory(ctx, testTenant, c.ID))
	assert.ErrorIs(t, s.DeleteCategory(ctx, testTenant, c.ID), exception.ErrCategoryNotFound)
}

func TestBrandUpdateAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b := &model.Brand{TenantID: testTenant, Name: "Acme", Slug: "acme"}
	require.NoError(t, s.CreateBrand(ctx, b))
	require.NoError(t, s.CreateBrand(ctx, &model.Brand{TenantID: testTenant, Name: "Zeta", Slug: "zeta"}))

	b.Name = "Acme Corp"
	require.NoError(t, s.UpdateBrand(ctx, b))

	rows, total, err := s.ListBrands(ctx, testTenant, "acme", firstPage(query.Sort{{Column: "name"}}))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Acme Corp", rows[0].Name)

	b.ID = "missing"
	assert.ErrorIs(t, s.UpdateBrand(ctx, b), exception.ErrBrandNotFound)
}

func TestCartCreatedOnceAndCleared(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedProduct(t, s, "Pen", 150, 10)

	c, err := s.Cart(ctx, testTenant, "u1")
	require.NoError(t, err)
	require.NoError(t, s.SaveCartItem(ctx, &model.CartItem{CartID: c.ID, ProductID: p.ID, UnitPrice: 150, Quantity: 2}))

	again, err := s.Cart(ctx, testTenant, "u1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID)
	require.Len(t, again.Items, 1)
	assert.Equal(t, 2, again.Items[0].Quantity)

	require.NoError(t, s.ClearCart(ctx, again))
	again, err = s.Cart(ctx, testTenant, "u1")
	require.NoError(t, err)
	assert.Empty(t, again.Items)

	assert.ErrorIs(t, s.DeleteCartItem(ctx, c.ID, p.ID), exception.ErrCartItemNotFound)
}

func TestRedeemAndReleasePromo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	promo := &model.PromoCode{TenantID: testTenant, Code: "SAVE10", Kind: enum.PromoKindPercent, Percent: 10, UsageLimit: 1, Active: true}
	require.NoError(t, s.CreatePromo(ctx, promo))

	c1, err := s.Cart(ctx, testTenant, "u1")
	require.NoError(t, err)
	usage := &model.PromoUsage{TenantID: testTenant, PromoCodeID: promo.ID, CartID: c1.ID, UserID: "u1", Discount: 100, UsedAt: time.Now()}
	require.NoError(t, s.RedeemPromo(ctx, c1, promo, usage))
	assert.Equal(t, promo.ID, *c1.PromoCodeID)

	got, err := s.PromoByCode(ctx, testTenant, " save10 ")
	require.NoError(t, err)
	assert.Equal(t, 1, got.UsedCount)

	uses, err := s.PromoUses(ctx, promo.ID, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 1, uses)
	uses, err = s.PromoUses(ctx, promo.ID, "u1", c1.ID)
	require.NoError(t, err)
	assert.Zero(t, uses)

	c2, err := s.Cart(ctx, testTenant, "u2")
	require.NoError(t, err)
	err = s.RedeemPromo(ctx, c2, got, &model.PromoUsage{TenantID: testTenant, PromoCodeID: promo.ID, CartID: c2.ID, UserID: "u2", UsedAt: time.Now()})
	assert.ErrorIs(t, err, exception.ErrPromoRejected)
	assert.Nil(t, c2.PromoCodeID)

	require.NoError(t, s.ReleasePromo(ctx, c1))
	assert.Nil(t, c1.PromoCodeID)
	got, err = s.GetPromo(ctx, testTenant, promo.ID)
	require.NoError(t, err)
	assert.Zero(t, got.UsedCount)

	assert.ErrorIs(t, s.ReleasePromo(ctx, c1), exception.ErrPromoNotApplied)
}

func TestDefaultDeliverySwitches(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	std := &model.DeliverySetting{TenantID: testTenant, Name: "Standard", Method: enum.DeliveryMethodStandard, BaseFee: 500, Active: true, IsDefault: true}
	require.NoError(t, s.CreateDelivery(ctx, std))
	exp := &model.DeliverySetting{TenantID: testTenant, Name: "Express", Method: enum.DeliveryMethodExpress, BaseFee: 1500, Active: true, IsDefault: true}
	require.NoError(t, s.CreateDelivery(ctx, exp))

	def, err := s.DefaultDelivery(ctx, testTenant)
	require.NoError(t, err)
	assert.Equal(t, exp.ID, def.ID)

	std.IsDefault = true
	require.NoError(t, s.UpdateDelivery(ctx, std))
	def, err = s.DefaultDelivery(ctx, testTenant)
	require.NoError(t, err)
	assert.Equal(t, std.ID, def.ID)

	std.Active = false
	require.NoError(t, s.UpdateDelivery(ctx, std))
	_, err = s.DefaultDelivery(ctx, testTenant)
	assert.ErrorIs(t, err, exception.ErrDeliveryNotFound)

	rows, total, err := s.ListDelivery(ctx, testTenant, true, firstPage(query.Sort{{Column: "name"}}))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Express", rows[0].Name)
}

func TestReviewAggregates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedProduct(t, s, "Book", 1200, 5)

	r1 := &model.Review{TenantID: testTenant, ProductID: p.ID, UserID: "u1", Rating: 5}
	agg, err := s.CreateReview(ctx, r1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, agg.Count)

	r2 := &model.Review{TenantID: testTenant, ProductID: p.ID, UserID: "u2", Rating: 2}
	agg, err = s.CreateReview(ctx, r2)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, agg.Avg, 1e-9)

	_, err = s.CreateReview(ctx, &model.Review{TenantID: testTenant, ProductID: p.ID, UserID: "u1", Rating: 1})
	assert.Equal(t, exception.KindConflict, exception.KindOf(err))

	r2.Rating = 4
	agg, err = s.UpdateReview(ctx, r2, 2)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, agg.Avg, 1e-9)

	_, err = s.DeleteReview(ctx, r1)
	require.NoError(t, err)
	got, err := s.GetProduct(ctx, testTenant, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.RatingCount)
	assert.InDelta(t, 4.0, got.RatingAvg, 1e-9)

	_, err = s.DeleteReview(ctx, r2)
	require.NoError(t, err)
	got, err = s.GetProduct(ctx, testTenant, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.RatingCount)
	assert.Zero(t, got.RatingAvg)
}

func TestNotificationInbox(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateNotifications(ctx, []model.Notification{
		{TenantID: testTenant, UserID: "u1", Kind: enum.NotificationSystem, Title: "a"},
		{TenantID: testTenant, UserID: "u1", Kind: enum.NotificationSystem, Title: "b"},
		{TenantID: testTenant, UserID: "u2", Kind: enum.NotificationSystem, Title: "c"},
	}))

	n, err := s.UnreadCount(ctx, testTenant, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	rows, _, err := s.ListNotifications(ctx, testTenant, "u1", nil, firstPage(query.NewestFirst))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	read, err := s.MarkRead(ctx, testTenant, "u1", rows[0].ID, time.Now())
	require.NoError(t, err)
	assert.True(t, read.Read)
	assert.NotNil(t, read.ReadAt)

	_, err = s.MarkRead(ctx, testTenant, "u2", rows[1].ID, time.Now())
	assert.ErrorIs(t, err, exception.ErrNotificationNotFound)

	unread := true
	rows, total, err := s.ListNotifications(ctx, testTenant, "u1", &unread, firstPage(query.NewestFirst))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	changed, err := s.MarkAllRead(ctx, testTenant, "u1", time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, changed)

	require.NoError(t, s.DeleteNotification(ctx, testTenant, "u1", rows[0].ID))
	assert.ErrorIs(t, s.DeleteNotification(ctx, testTenant, "u1", rows[0].ID), exception.ErrNotificationNotFound)
}

func TestActivityFeed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.CreateActivities(ctx, []model.Activity{
		{TenantID: testTenant, UserID: "u1", Action: "product.created", EntityType: "product"},
		{TenantID: testTenant, UserID: "u2", Action: "cart.item_added", EntityType: "cart"},
		{TenantID: "tenant-b", UserID: "u1", Action: "product.created", EntityType: "product"},
	}))

	rows, total, err := s.ListActivities(ctx, testTenant, query.ActivityFilter{EntityType: "product"}, firstPage(query.NewestFirst))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "u1", rows[0].UserID)
}
