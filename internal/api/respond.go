package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yanun0323/logs"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/identity"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/model"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Field     string    `json:"field,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

var kindStatus = map[exception.Kind]int{
	exception.KindInternal:      http.StatusInternalServerError,
	exception.KindInvalid:       http.StatusBadRequest,
	exception.KindUnauthorized:  http.StatusUnauthorized,
	exception.KindForbidden:     http.StatusForbidden,
	exception.KindNotFound:      http.StatusNotFound,
	exception.KindConflict:      http.StatusConflict,
	exception.KindUnprocessable: http.StatusUnprocessableEntity,
	exception.KindUnavailable:   http.StatusServiceUnavailable,
	exception.KindRateLimited:   http.StatusTooManyRequests,
}

// StatusOf maps an error classification to its HTTP status.
func StatusOf(kind exception.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// fail aborts the request with the classified form of err. Internal causes
// are logged and never echoed to the client.
func fail(c *gin.Context, err error) {
	resp := ErrorResponse{
		Code:      exception.KindInternal.String(),
		Message:   exception.ErrInternal.Message,
		RequestID: c.GetString(requestIDKey),
		Timestamp: time.Now().UTC(),
	}
	kind := exception.KindInternal
	if e, ok := exception.As(err); ok && e.Kind != exception.KindInternal {
		kind = e.Kind
		resp.Code = kind.String()
		resp.Message = e.Message
		resp.Field = e.Field
	} else {
		logs.Errorf("%s %s rid=%s, err: %+v", c.Request.Method, c.Request.URL.Path, resp.RequestID, err)
	}
	resp.Retryable = kind == exception.KindUnavailable || kind == exception.KindRateLimited
	if resp.Retryable {
		c.Header("Retry-After", "1")
	}
	c.AbortWithStatusJSON(StatusOf(kind), resp)
}

func ident(c *gin.Context) identity.Identity {
	id, _ := identity.From(c.Request.Context())
	return id
}

// bind decodes the JSON body into dst.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, exception.Wrap(exception.KindInvalid, "invalid request body: "+err.Error(), err))
		return false
	}
	return true
}

// param returns a path id after checking its shape.
func param(c *gin.Context, name string) (string, bool) {
	v := c.Param(name)
	if !model.ValidID(v) {
		fail(c, exception.Invalid(name, "invalid "+name))
		return "", false
	}
	return v, true
}
