// Package identity carries the caller established by the gateway headers.
package identity

import (
	"context"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/model/enum"
)

// Identity is the tenant-scoped caller of one request.
type Identity struct {
	TenantID  string
	UserID    string
	Role      enum.Role
	IP        string
	UserAgent string
	RequestID string
}

func (i Identity) IsAdmin() bool {
	return i.Role.IsAdmin()
}

type ctxKey struct{}

func With(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From returns the identity stored in ctx, if any.
func From(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
