package auth

import "context"

type contextKey struct{}

var tenantKey = contextKey{}

// WithTenantID stores the verified tenant (user) id on ctx.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey, tenantID)
}

// GetTenantID returns the tenant placed on ctx by Middleware, or "".
func GetTenantID(ctx context.Context) string {
	if val, ok := ctx.Value(tenantKey).(string); ok {
		return val
	}
	return ""
}
