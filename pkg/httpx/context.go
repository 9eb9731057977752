package httpx

import "context"

type ctxKey string

const (
	CtxKeySubjectID ctxKey = "subject_id"
	CtxKeyTenantID  ctxKey = "tenant_id"
)

// SubjectFromCtx returns the authenticated management subject, if any.
func SubjectFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubjectID).(string); ok {
		return v
	}
	return ""
}

// TenantFromCtx returns the tenant the authenticated session belongs to.
func TenantFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyTenantID).(string); ok {
		return v
	}
	return ""
}
