package authbridge

import "context"

type tenantIDContextKey struct{}
type languageCodeContextKey struct{}

// WithTenantID attaches a tenant identifier to ctx. Bridges backing
// multi-tenant projects scope sign-in and sign-up to it; when unset, the
// default tenant "" is used.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDContextKey{}, tenantID)
}

// TenantIDFromContext returns the tenant identifier attached with
// [WithTenantID], or "". Exported so Bridge implementations in other
// packages can honor it.
func TenantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	tenantID, _ := ctx.Value(tenantIDContextKey{}).(string)
	return tenantID
}

// WithLanguageCode attaches a BCP 47 language tag to ctx. Bridges use it to
// localize verification and password-reset emails; it overrides
// [AppConfig.LanguageCode] for the call.
func WithLanguageCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, languageCodeContextKey{}, code)
}

// LanguageCodeFromContext returns the language tag attached with
// [WithLanguageCode], or "".
func LanguageCodeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	code, _ := ctx.Value(languageCodeContextKey{}).(string)
	return code
}
