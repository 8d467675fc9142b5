package api

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yanun0323/logs"
	"golang.org/x/time/rate"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/obs"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderTenant    = "X-Tenant-ID"
	HeaderUser      = "X-User-ID"
	HeaderRole      = "X-User-Role"

	requestIDKey = "request_id"
)

// RateLimit bounds request rate per tenant, or per client IP without a tenant.
type RateLimit struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		obs.PanicRecovered()
		logs.Errorf("panic recovered %s %s rid=%s: %v", c.Request.Method, c.Request.URL.Path, c.GetString(requestIDKey), recovered)
		fail(c, exception.ErrInternal)
	})
}

// requestID accepts a caller supplied uuid or mints one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(HeaderRequestID, rid)
		c.Next()
	}
}

func metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		done := obs.HTTPInFlight()
		defer done()
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		obs.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			return
		}
		logs.Infof("%s %s %d %s rid=%s tenant=%s user=%s",
			c.Request.Method, path, c.Writer.Status(), time.Since(start),
			c.GetString(requestIDKey), c.GetHeader(HeaderTenant), c.GetHeader(HeaderUser))
	}
}

type limiter struct {
	cfg RateLimit
	mu  sync.Mutex
	by  map[string]*rate.Limiter
}

func rateLimit(cfg RateLimit) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.RPS) + 1
	}
	l := &limiter{cfg: cfg, by: make(map[string]*rate.Limiter)}
	limit := strconv.Itoa(int(cfg.RPS))
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderTenant)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		c.Header("X-RateLimit-Limit", limit)
		if !l.get(key).Allow() {
			obs.RateLimited()
			fail(c, exception.ErrRateLimited)
			return
		}
		c.Next()
	}
}

func (l *limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.by[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.cfg.RPS), l.cfg.Burst)
		l.by[key] = lim
	}
	return lim
}

// tenant builds the caller identity from gateway headers. The tenant is
// mandatory; the user is checked per route.
func tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := identity.Identity{
			TenantID:  strings.TrimSpace(c.GetHeader(HeaderTenant)),
			UserID:    strings.TrimSpace(c.GetHeader(HeaderUser)),
			Role:      enum.RoleCustomer,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestID: c.GetString(requestIDKey),
		}
		if id.TenantID == "" {
			fail(c, exception.ErrMissingTenant)
			return
		}
		if strings.EqualFold(strings.TrimSpace(c.GetHeader(HeaderRole)), string(enum.RoleAdmin)) {
			id.Role = enum.RoleAdmin
		}
		c.Request = c.Request.WithContext(identity.With(c.Request.Context(), id))
		c.Next()
	}
}

func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ident(c).UserID == "" {
			fail(c, exception.ErrMissingIdentity)
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ident(c)
		if id.UserID == "" {
			fail(c, exception.ErrMissingIdentity)
			return
		}
		if !id.IsAdmin() {
			fail(c, exception.ErrAdminOnly)
			return
		}
		c.Next()
	}
}
