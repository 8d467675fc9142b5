package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/activity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/batch"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/cart"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/catalog"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/delivery"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/notification"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/pricing"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/promo"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/review"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/store"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/conn"
)

var (
	adminHeaders    = map[string]string{HeaderTenant: "t1", HeaderUser: "root", HeaderRole: "admin"}
	customerHeaders = map[string]string{HeaderTenant: "t1", HeaderUser: "u1"}
)

func newTestRouter(t *testing.T, limit RateLimit) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	db, err := conn.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), conn.Option{MaxOpenConns: 1})
	require.NoError(t, err)
	s := store.New(db)
	require.NoError(t, s.Migrate(ctx))

	cfg := batch.DefaultConfig("product-import-test")
	cfg.FlushInterval = 10 * time.Millisecond
	importer, err := batch.NewWriter(cfg, catalog.ImportSink(s))
	require.NoError(t, err)
	require.NoError(t, importer.Start(ctx))
	t.Cleanup(func() {
		cancel()
		_ = importer.Close()
	})

	deps := Deps{
		Catalog:      catalog.NewUsecase(s, importer, nil, catalog.DefaultMaxBulk),
		Cart:         cart.NewUsecase(s, pricing.NewEngine(pricing.Config{TaxRateBps: 1000}), nil),
		Review:       review.NewUsecase(s, nil),
		Promo:        promo.NewUsecase(s, nil),
		Delivery:     delivery.NewUsecase(s, nil),
		Notification: notification.NewUsecase(s, nil),
		Activity:     activity.NewUsecase(s),
		Ping:         s.Ping,
	}
	return NewRouter(deps, limit, func() bool { return true })
}

func do(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	r := newTestRouter(t, RateLimit{})

	rec := do(r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode[HealthResponse](t, rec).Status)

	rec = do(r, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shop_http_requests_total")
}

func TestIdentityGuards(t *testing.T) {
	r := newTestRouter(t, RateLimit{})

	testCases := []struct {
		desc    string
		method  string
		path    string
		headers map[string]string
		status  int
		code    string
	}{
		{desc: "missing tenant", method: http.MethodGet, path: "/api/v1/products", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{desc: "anonymous cart", method: http.MethodGet, path: "/api/v1/cart", headers: map[string]string{HeaderTenant: "t1"}, status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{desc: "customer creating product", method: http.MethodPost, path: "/api/v1/products", headers: customerHeaders, status: http.StatusForbidden, code: "FORBIDDEN"},
		{desc: "customer listing activity", method: http.MethodGet, path: "/api/v1/activities", headers: customerHeaders, status: http.StatusForbidden, code: "FORBIDDEN"},
		{desc: "bad id", method: http.MethodGet, path: "/api/v1/products/nope", headers: customerHeaders, status: http.StatusBadRequest, code: "INVALID_REQUEST"},
		{desc: "unknown product", method: http.MethodGet, path: "/api/v1/products/" + uuid.NewString(), headers: customerHeaders, status: http.StatusNotFound, code: "NOT_FOUND"},
		{desc: "bad sort", method: http.MethodGet, path: "/api/v1/products?sort=password", headers: customerHeaders, status: http.StatusBadRequest, code: "INVALID_REQUEST"},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			rec := do(r, tc.method, tc.path, nil, tc.headers)
			assert.Equal(t, tc.status, rec.Code)
			resp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tc.code, resp.Code)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestProductLifecycle(t *testing.T) {
	r := newTestRouter(t, RateLimit{})

	rec := do(r, http.MethodPost, "/api/v1/products", map[string]any{"name": "Desk Lamp", "sku": "lamp-1", "price": "20.00", "stock": 3}, adminHeaders)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[model.Product](t, rec)
	assert.Equal(t, "desk-lamp", p.Slug)
	assert.Equal(t, "LAMP-1", p.SKU)

	rec = do(r, http.MethodPost, "/api/v1/products", map[string]any{"name": "Lamp again", "sku": "LAMP-1", "price": 1}, adminHeaders)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(r, http.MethodPost, "/api/v1/products/"+p.ID+"/stock", map[string]any{"delta": -5}, adminHeaders)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(r, http.MethodPatch, "/api/v1/products/"+p.ID, map[string]any{"price": 18.5}, adminHeaders)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.Money(1850), decode[model.Product](t, rec).Price)

	rec = do(r, http.MethodGet, "/api/v1/products?q=lamp&sort=-price&limit=5", nil, customerHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Data  []model.Product `json:"data"`
		Total int64           `json:"total"`
		Limit int             `json:"limit"`
	}](t, rec)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 5, page.Limit)

	rec = do(r, http.MethodDelete, "/api/v1/products/"+p.ID, nil, adminHeaders)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(r, http.MethodGet, "/api/v1/products/"+p.ID, nil, customerHeaders)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkImportIsAccepted(t *testing.T) {
	r := newTestRouter(t, RateLimit{})

	body := map[string]any{"products": []map[string]any{
		{"name": "Pen", "sku": "pen", "price": 1},
		{"name": "Pencil", "sku": "pencil", "price": 0.5},
	}}
	rec := do(r, http.MethodPost, "/api/v1/products/bulk", body, adminHeaders)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Len(t, decode[importResponse](t, rec).IDs, 2)

	require.Eventually(t, func() bool {
		rec := do(r, http.MethodGet, "/api/v1/products", nil, customerHeaders)
		return rec.Code == http.StatusOK && decode[struct {
			Total int64 `json:"total"`
		}](t, rec).Total == 2
	}, 2*time.Second, 20*time.Millisecond)

	bad := map[string]any{"products": []map[string]any{{"name": "Ok", "sku": "ok"}, {"name": "", "sku": "x"}}}
	rec = do(r, http.MethodPost, "/api/v1/products/bulk", bad, adminHeaders)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "products[1].name", decode[ErrorResponse](t, rec).Field)
}

func TestCheckoutFlow(t *testing.T) {
	r := newTestRouter(t, RateLimit{})

	rec := do(r, http.MethodPost, "/api/v1/products", map[string]any{"name": "Lamp", "sku": "lamp", "price": 20, "stock": 10}, adminHeaders)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lamp := decode[model.Product](t, rec)

	rec = do(r, http.MethodPost, "/api/v1/delivery-settings", map[string]any{"name": "Standard", "base_fee": 5, "free_threshold": 100, "is_default": true}, adminHeaders)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(r, http.MethodPost, "/api/v1/promos", map[string]any{"code": "save10", "kind": "percent", "percent": 10}, adminHeaders)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(r, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": lamp.ID, "quantity": 2}, customerHeaders)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(r, http.MethodPost, "/api/v1/promos/validate", map[string]any{"code": "SAVE10"}, customerHeaders)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.Money(400), decode[pricing.Summary](t, rec).Discount)

	rec = do(r, http.MethodPost, "/api/v1/cart/promo", map[string]any{"code": "save10"}, customerHeaders)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(r, http.MethodPost, "/api/v1/cart/promo", map[string]any{"code": "save10"}, customerHeaders)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(r, http.MethodGet, "/api/v1/cart/summary", nil, customerHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[pricing.Summary](t, rec)
	assert.Equal(t, model.Money(4000), sum.Subtotal)
	assert.Equal(t, model.Money(400), sum.Discount)
	assert.Equal(t, model.Money(500), sum.DeliveryFee)
	assert.Equal(t, model.Money(360), sum.Tax)
	assert.Equal(t, model.Money(4460), sum.Total)

	rec = do(r, http.MethodPatch, "/api/v1/cart/items/"+lamp.ID, map[string]any{}, customerHeaders)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodDelete, "/api/v1/cart", nil, customerHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Money(0), decode[cart.View](t, rec).Summary.Total)
}

func TestNotificationsInbox(t *testing.T) {
	r := newTestRouter(t, RateLimit{})

	rec := do(r, http.MethodGet, "/api/v1/notifications/unread-count", nil, customerHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unread":0}`, rec.Body.String())

	rec = do(r, http.MethodGet, "/api/v1/notifications?unread=maybe", nil, customerHeaders)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPost, "/api/v1/notifications/"+uuid.NewString()+"/read", nil, customerHeaders)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimitPerTenant(t *testing.T) {
	r := newTestRouter(t, RateLimit{Enabled: true, RPS: 1, Burst: 1})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/products", nil, customerHeaders).Code)
	rec := do(r, http.MethodGet, "/api/v1/products", nil, customerHeaders)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.True(t, decode[ErrorResponse](t, rec).Retryable)

	other := map[string]string{HeaderTenant: "t2", HeaderUser: "u1"}
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/products", nil, other).Code)
}

func TestPanicIsRecovered(t *testing.T) {
	r := newTestRouter(t, RateLimit{})
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := do(r, http.MethodGet, "/boom", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL", decode[ErrorResponse](t, rec).Code)
}
