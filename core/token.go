package core

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenKey struct{}

// ContextWithToken returns a context whose API calls carry token as the
// bearer credential. An empty token yields an unauthenticated context.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token attached to ctx, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// TokenExpiry reads the exp claim of a JWT without verifying the signature.
// ok is false for opaque tokens and for JWTs without exp.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
