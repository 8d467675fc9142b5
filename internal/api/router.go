package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/activity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/cart"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/catalog"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/delivery"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/notification"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/promo"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/review"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/websocket"
)

// Deps are the usecases served by the API.
type Deps struct {
	Catalog      *catalog.Usecase
	Cart         *cart.Usecase
	Review       *review.Usecase
	Promo        *promo.Usecase
	Delivery     *delivery.Usecase
	Notification *notification.Usecase
	Activity     *activity.Usecase
	// Ping checks downstream dependencies for readiness.
	Ping func(ctx context.Context) error
}

type handler struct {
	Deps
}

func base(limit RateLimit) *gin.Engine {
	r := gin.New()
	r.Use(requestID(), recovery(), metrics(), accessLog(), rateLimit(limit))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// NewRouter builds the REST surface under /api/v1.
func NewRouter(deps Deps, limit RateLimit, ready func() bool) *gin.Engine {
	r := base(limit)
	h := &handler{Deps: deps}
	r.GET("/health", health)
	r.GET("/ready", readiness(ready, deps.Ping))

	v1 := r.Group("/api/v1", tenant())
	user := requireUser()
	admin := requireAdmin()

	v1.GET("/products", h.listProducts)
	v1.POST("/products", admin, h.createProduct)
	v1.POST("/products/bulk", admin, h.importProducts)
	v1.GET("/products/:id", h.getProduct)
	v1.PATCH("/products/:id", admin, h.updateProduct)
	v1.DELETE("/products/:id", admin, h.deleteProduct)
	v1.POST("/products/:id/stock", admin, h.adjustStock)
	v1.GET("/products/:id/reviews", h.listReviews)
	v1.POST("/products/:id/reviews", user, h.createReview)

	v1.GET("/categories", h.listCategories)
	v1.POST("/categories", admin, h.createCategory)
	v1.GET("/categories/:id", h.getCategory)
	v1.PATCH("/categories/:id", admin, h.updateCategory)
	v1.DELETE("/categories/:id", admin, h.deleteCategory)

	v1.GET("/brands", h.listBrands)
	v1.POST("/brands", admin, h.createBrand)
	v1.GET("/brands/:id", h.getBrand)
	v1.PATCH("/brands/:id", admin, h.updateBrand)
	v1.DELETE("/brands/:id", admin, h.deleteBrand)

	v1.GET("/reviews/:id", h.getReview)
	v1.PATCH("/reviews/:id", user, h.updateReview)
	v1.DELETE("/reviews/:id", user, h.deleteReview)

	c := v1.Group("/cart", user)
	c.GET("", h.getCart)
	c.DELETE("", h.clearCart)
	c.POST("/items", h.addCartItem)
	c.PATCH("/items/:productId", h.updateCartItem)
	c.DELETE("/items/:productId", h.removeCartItem)
	c.POST("/promo", h.applyPromo)
	c.DELETE("/promo", h.removePromo)
	c.PUT("/delivery", h.selectDelivery)
	c.GET("/summary", h.cartSummary)

	v1.POST("/promos/validate", user, h.validatePromo)
	p := v1.Group("/promos", admin)
	p.GET("", h.listPromos)
	p.POST("", h.createPromo)
	p.GET("/:id", h.getPromo)
	p.PATCH("/:id", h.updatePromo)
	p.DELETE("/:id", h.deletePromo)

	v1.GET("/delivery-settings", h.listDelivery)
	v1.POST("/delivery-settings", admin, h.createDelivery)
	v1.GET("/delivery-settings/:id", h.getDelivery)
	v1.PATCH("/delivery-settings/:id", admin, h.updateDelivery)
	v1.DELETE("/delivery-settings/:id", admin, h.deleteDelivery)

	n := v1.Group("/notifications", user)
	n.GET("", h.listNotifications)
	n.GET("/unread-count", h.unreadCount)
	n.POST("/read-all", h.markAllRead)
	n.POST("/:id/read", h.markRead)
	n.DELETE("/:id", h.deleteNotification)

	v1.GET("/activities", admin, h.listActivities)
	return r
}

// NewSocketRouter serves the notification socket and probes of the worker.
func NewSocketRouter(hub *websocket.Hub, limit RateLimit, ready func() bool, ping func(ctx context.Context) error) *gin.Engine {
	r := base(limit)
	r.GET("/health", health)
	r.GET("/ready", readiness(ready, ping))
	r.GET("/ws", gin.WrapH(hub.Handler(websocket.RequestKey)))
	return r
}
