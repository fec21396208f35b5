// Package auth adapts the shared platform auth helpers for the fitness services.
package auth

import (
	"context"

	authlib "github.com/VK-10/AI-fitness-App/internal/platform/auth"
)

// Claims mirrors the shared auth claims type for service convenience.
type Claims = authlib.Claims

// Config mirrors the shared auth config.
type Config = authlib.Config

// WithClaims stores the claims in the request context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return authlib.WithClaims(ctx, claims)
}

// FromContext retrieves claims from context.
func FromContext(ctx context.Context) (*Claims, bool) {
	return authlib.FromContext(ctx)
}

// WithToken stores the raw bearer token in the context.
func WithToken(ctx context.Context, token string) context.Context {
	return authlib.WithToken(ctx, token)
}

// TokenFromContext returns the raw bearer token for forwarding to the API.
func TokenFromContext(ctx context.Context) (string, bool) {
	return authlib.TokenFromContext(ctx)
}

// CanRead reports whether the claims allow reading activities and recommendations.
func CanRead(claims *Claims) bool {
	return claims.HasAnyScope(ScopeActivitiesRead, ScopeActivitiesWrite)
}
