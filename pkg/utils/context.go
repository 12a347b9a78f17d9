package utils

import (
	"context"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// SetClaimsContext stores verified token claims on the request context.
func SetClaimsContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

func GetClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok && claims != nil
}
