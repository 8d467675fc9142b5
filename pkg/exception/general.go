package exception

// General errors
var (
	ErrMissingTenant   = New(KindUnauthorized, "missing tenant")
	ErrMissingIdentity = New(KindUnauthorized, "missing user identity")
	ErrAdminOnly       = New(KindForbidden, "admin role required")
	ErrInternal        = New(KindInternal, "internal error")
	ErrRateLimited     = New(KindRateLimited, "rate limit exceeded")
)
