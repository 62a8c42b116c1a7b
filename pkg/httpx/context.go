package httpx

import "context"

type ctxKey string

const (
	CtxKeyOperatorID ctxKey = "operator_id"
	CtxKeyScopes     ctxKey = "scopes"
)

// OperatorIDFromCtx returns the authenticated operator's identifier, or ""
// when the request was not authenticated.
func OperatorIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyOperatorID).(string); ok {
		return v
	}
	return ""
}

func scopesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyScopes).([]string); ok {
		return v
	}
	return nil
}
