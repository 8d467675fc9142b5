package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/codec"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/events"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/schema"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/store"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/conn"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

var admin = identity.Identity{TenantID: "t1", UserID: "admin-1", Role: enum.RoleAdmin}

type recorder struct {
	mu       sync.Mutex
	messages map[string][][]byte
}

func (r *recorder) Publish(_ context.Context, subject string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.messages == nil {
		r.messages = make(map[string][][]byte)
	}
	r.messages[subject] = append(r.messages[subject], data)
	return nil
}

func (r *recorder) notifications(t *testing.T) []schema.Notification {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []schema.Notification
	for _, data := range r.messages[schema.SubjectNotification] {
		env, err := codec.Decode(data)
		require.NoError(t, err)
		n, err := codec.DecodeNotification(env)
		require.NoError(t, err)
		out = append(out, n)
	}
	return out
}

type queue struct {
	items []model.Product
	full  bool
}

func (q *queue) TryAppend(items ...model.Product) error {
	if q.full {
		return exception.ErrBatchQueueFull
	}
	q.items = append(q.items, items...)
	return nil
}

func newUsecase(t *testing.T) (*Usecase, *store.Store, *recorder, *queue) {
	t.Helper()
	db, err := conn.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), conn.Option{MaxOpenConns: 1})
	require.NoError(t, err)
	s := store.New(db)
	require.NoError(t, s.Migrate(context.Background()))
	rec := &recorder{}
	q := &queue{}
	return NewUsecase(s, q, events.NewEmitter(rec), 3), s, rec, q
}

func ptr[T any](v T) *T { return &v }

func TestCreateProductDefaults(t *testing.T) {
	use, _, rec, _ := newUsecase(t)
	p, err := use.CreateProduct(context.Background(), admin, ProductInput{
		Name:  ptr("  Trail Runner 2  "),
		SKU:   ptr("tr-2"),
		Price: ptr(model.Money(12900)),
		Stock: ptr(4),
		Tags:  []string{"Shoes", "shoes", " run "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Trail Runner 2", p.Name)
	assert.Equal(t, "trail-runner-2", p.Slug)
	assert.Equal(t, "TR-2", p.SKU)
	assert.Equal(t, enum.ProductStatusActive, p.Status)
	assert.Equal(t, model.StringList{"shoes", "run"}, p.Tags)
	assert.Equal(t, "admin-1", p.CreatedBy)
	assert.Len(t, rec.messages[schema.SubjectActivity], 1)
}

func TestCreateProductValidation(t *testing.T) {
	use, _, _, _ := newUsecase(t)
	ctx := context.Background()

	_, err := use.CreateProduct(ctx, admin, ProductInput{SKU: ptr("A"), Price: ptr(model.Money(1))})
	assert.Equal(t, exception.KindInvalid, exception.KindOf(err))

	_, err = use.CreateProduct(ctx, admin, ProductInput{Name: ptr("A"), SKU: ptr("A"), Price: ptr(model.Money(-1))})
	assert.Equal(t, exception.KindInvalid, exception.KindOf(err))

	_, err = use.CreateProduct(ctx, admin, ProductInput{Name: ptr("A"), SKU: ptr("A"), CategoryID: ptr(uuid.NewString())})
	assert.ErrorIs(t, err, exception.ErrCategoryNotFound)
}

func TestPriceDropNotifiesCartHolders(t *testing.T) {
	use, s, rec, _ := newUsecase(t)
	ctx := context.Background()

	p, err := use.CreateProduct(ctx, admin, ProductInput{Name: ptr("Lamp"), SKU: ptr("L1"), Price: ptr(model.Money(5000)), Stock: ptr(0)})
	require.NoError(t, err)

	c, err := s.Cart(ctx, "t1", "shopper")
	require.NoError(t, err)
	require.NoError(t, s.SaveCartItem(ctx, &model.CartItem{CartID: c.ID, ProductID: p.ID, UnitPrice: 5000, Quantity: 1}))

	_, err = use.UpdateProduct(ctx, admin, p.ID, ProductInput{Price: ptr(model.Money(4000)), Stock: ptr(3)})
	require.NoError(t, err)

	ns := rec.notifications(t)
	require.Len(t, ns, 2)
	assert.Equal(t, enum.NotificationPriceDrop, ns[0].Kind)
	assert.Equal(t, p.ID, ns[0].Audience.CartHoldersOf)
	assert.Equal(t, "admin-1", ns[0].Audience.Exclude)
	assert.Equal(t, enum.NotificationBackInStock, ns[1].Kind)

	_, err = use.UpdateProduct(ctx, admin, p.ID, ProductInput{Price: ptr(model.Money(4500))})
	require.NoError(t, err)
	assert.Len(t, rec.notifications(t), 2)
}

func TestAdjustStockBackInStock(t *testing.T) {
	use, _, rec, _ := newUsecase(t)
	ctx := context.Background()

	p, err := use.CreateProduct(ctx, admin, ProductInput{Name: ptr("Cup"), SKU: ptr("C1"), Price: ptr(model.Money(100))})
	require.NoError(t, err)

	_, err = use.AdjustStock(ctx, admin, p.ID, 0)
	assert.Equal(t, exception.KindInvalid, exception.KindOf(err))

	got, err := use.AdjustStock(ctx, admin, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
	require.Len(t, rec.notifications(t), 1)

	_, err = use.AdjustStock(ctx, admin, p.ID, 2)
	require.NoError(t, err)
	assert.Len(t, rec.notifications(t), 1)

	_, err = use.AdjustStock(ctx, admin, p.ID, -10)
	assert.ErrorIs(t, err, exception.ErrInsufficientStock)
}

func TestImportProducts(t *testing.T) {
	use, _, _, q := newUsecase(t)
	ctx := context.Background()

	good := ProductInput{Name: ptr("Bulk"), SKU: ptr("B1"), Price: ptr(model.Money(100))}
	out, err := use.ImportProducts(ctx, admin, []ProductInput{good, {Name: ptr("Bulk 2"), SKU: ptr("B2")}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.NotEmpty(t, out[0].ID)
	assert.Len(t, q.items, 2)

	_, err = use.ImportProducts(ctx, admin, []ProductInput{good, {SKU: ptr("X")}})
	e, ok := exception.As(err)
	require.True(t, ok)
	assert.Equal(t, "products[1].name", e.Field)

	_, err = use.ImportProducts(ctx, admin, []ProductInput{good, good, good, good})
	assert.ErrorIs(t, err, exception.ErrBulkTooLarge)

	q.full = true
	_, err = use.ImportProducts(ctx, admin, []ProductInput{good})
	assert.Equal(t, exception.KindUnavailable, exception.KindOf(err))
}

func TestImportProductsChecksReferences(t *testing.T) {
	use, _, _, q := newUsecase(t)
	ctx := context.Background()

	cat, err := use.CreateCategory(ctx, admin, TaxonomyInput{Name: ptr("Tools")})
	require.NoError(t, err)

	_, err = use.ImportProducts(ctx, admin, []ProductInput{
		{Name: ptr("Saw"), SKU: ptr("S1"), CategoryID: ptr(cat.ID)},
		{Name: ptr("Drill"), SKU: ptr("D1"), CategoryID: ptr(cat.ID), BrandID: ptr(uuid.NewString())},
	})
	assert.ErrorIs(t, err, exception.ErrBrandNotFound)
	e, ok := exception.As(err)
	require.True(t, ok)
	assert.Equal(t, "products[1].brand_id", e.Field)
	assert.Empty(t, q.items)

	out, err := use.ImportProducts(ctx, admin, []ProductInput{
		{Name: ptr("Saw"), SKU: ptr("S1"), CategoryID: ptr(cat.ID)},
		{Name: ptr("Plane"), SKU: ptr("P1"), CategoryID: ptr(cat.ID)},
	})
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Len(t, q.items, 2)
}

func TestImportSinkSkipsConflicts(t *testing.T) {
	use, s, _, _ := newUsecase(t)
	ctx := context.Background()
	_, err := use.CreateProduct(ctx, admin, ProductInput{Name: ptr("Taken"), SKU: ptr("DUP"), Price: ptr(model.Money(1))})
	require.NoError(t, err)

	sink := ImportSink(s)
	batch := []model.Product{
		{TenantID: "t1", Name: "Fresh", Slug: "fresh", SKU: "NEW", Status: enum.ProductStatusActive},
		{TenantID: "t1", Name: "Clash", Slug: "clash", SKU: "DUP", Status: enum.ProductStatusActive},
	}
	require.NoError(t, sink(ctx, batch))

	rows, total, err := s.ListProducts(ctx, "t1", query.ProductFilter{}, query.Params{Page: query.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	names := []string{rows[0].Name, rows[1].Name}
	assert.ElementsMatch(t, []string{"Taken", "Fresh"}, names)
}

func TestCategoryCycleAndInUse(t *testing.T) {
	use, _, _, _ := newUsecase(t)
	ctx := context.Background()

	root, err := use.CreateCategory(ctx, admin, TaxonomyInput{Name: ptr("Apparel")})
	require.NoError(t, err)
	assert.Equal(t, "apparel", root.Slug)

	child, err := use.CreateCategory(ctx, admin, TaxonomyInput{Name: ptr("Shirts"), ParentID: ptr(root.ID)})
	require.NoError(t, err)

	_, err = use.UpdateCategory(ctx, admin, root.ID, TaxonomyInput{ParentID: ptr(child.ID)})
	assert.ErrorIs(t, err, exception.ErrCategoryCycle)

	_, err = use.UpdateCategory(ctx, admin, root.ID, TaxonomyInput{ParentID: ptr(root.ID)})
	assert.ErrorIs(t, err, exception.ErrCategoryCycle)

	assert.ErrorIs(t, use.DeleteCategory(ctx, admin, root.ID), exception.ErrCategoryInUse)
	require.NoError(t, use.DeleteCategory(ctx, admin, child.ID))
	require.NoError(t, use.DeleteCategory(ctx, admin, root.ID))
}

func TestBrandLifecycle(t *testing.T) {
	use, _, _, _ := newUsecase(t)
	ctx := context.Background()

	b, err := use.CreateBrand(ctx, admin, TaxonomyInput{Name: ptr("Acme & Co."), LogoURL: ptr("https://cdn/acme.png")})
	require.NoError(t, err)
	assert.Equal(t, "acme-co", b.Slug)

	_, err = use.CreateProduct(ctx, admin, ProductInput{Name: ptr("Anvil"), SKU: ptr("AN"), BrandID: ptr(b.ID)})
	require.NoError(t, err)
	assert.ErrorIs(t, use.DeleteBrand(ctx, admin, b.ID), exception.ErrBrandInUse)

	res, err := use.ListBrands(ctx, admin, "", query.Params{Page: query.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("  Hello,   World! "))
	assert.Equal(t, "caf", Slugify("Café"))
	assert.Equal(t, "", Slugify("!!!"))
	assert.Equal(t, "a-1-b", Slugify("a_1_b"))
}
