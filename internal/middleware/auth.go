package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/Lingz450/receiptsplit/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ActorKey is the context key for the authenticated actor address.
	ActorKey contextKey = "actor"
	// ActorNameKey is the context key for the actor's display name.
	ActorNameKey contextKey = "actor_name"
)

// GetActor extracts the normalized actor address from the context.
// Returns empty string if not found.
func GetActor(ctx context.Context) string {
	actor, _ := ctx.Value(ActorKey).(string)
	return actor
}

// GetActorName extracts the actor's display name from the context.
// Returns empty string if not found.
func GetActorName(ctx context.Context) string {
	name, _ := ctx.Value(ActorNameKey).(string)
	return name
}

// RequireAuth returns a middleware that validates JWT tokens and requires
// authentication. It extracts the token from the Authorization header,
// validates it, and adds the actor address to the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}
			tokenString := parts[1]

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			ctx = context.WithValue(ctx, ActorKey, claims.Address)
			ctx = context.WithValue(ctx, ActorNameKey, claims.Name)

			return next(ctx, req)
		}
	}
}

// OptionalAuth returns a middleware that validates JWT tokens if present,
// but allows requests without authentication. Used for the read-only
// endpoints, which answer anonymous callers.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					claims, err := jwtManager.Validate(parts[1])
					if err == nil {
						ctx = context.WithValue(ctx, ActorKey, claims.Address)
						ctx = context.WithValue(ctx, ActorNameKey, claims.Name)
					}
				}
			}

			return next(ctx, req)
		}
	}
}
