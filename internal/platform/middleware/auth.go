package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "mandate/pkg/domain"
	"mandate/pkg/requestcontext"
)

// TokenValidator defines the boundary to the external identity collaborator.
// The engine only needs "current identity id, or none" plus the admin role
// for claim resolution.
type TokenValidator interface {
	ValidateToken(tokenString string) (*IdentityClaims, error)
}

// IdentityClaims represents the claims the engine consumes from a token.
type IdentityClaims struct {
	UserID string
	Admin  bool
}

func identityFromHeader(r *http.Request, validator TokenValidator) (id.UserID, bool, error) {
	authHeader := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return id.UserID{}, false, nil
	}
	claims, err := validator.ValidateToken(token)
	if err != nil {
		return id.UserID{}, false, err
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return id.UserID{}, false, err
	}
	return userID, claims.Admin, nil
}

// RequireAuth rejects requests without a valid bearer identity and injects
// the actor into the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actorID, admin, err := identityFromHeader(r, validator)
			if err != nil || actorID.IsNil() {
				if err != nil {
					logger.WarnContext(ctx, "unauthorized access",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			ctx = requestcontext.WithActorID(ctx, actorID)
			ctx = requestcontext.WithAdmin(ctx, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth injects the actor when a valid token is present but lets
// anonymous requests through. Read-only registry and timeline routes use it.
func OptionalAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actorID, admin, err := identityFromHeader(r, validator)
			if err != nil {
				logger.DebugContext(ctx, "ignoring invalid token on optional-auth route",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
			} else if !actorID.IsNil() {
				ctx = requestcontext.WithActorID(ctx, actorID)
				ctx = requestcontext.WithAdmin(ctx, admin)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates administrative routes. Must run after RequireAuth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !requestcontext.IsAdmin(ctx) {
				logger.WarnContext(ctx, "forbidden: admin role required",
					"actor_id", requestcontext.ActorID(ctx).String(),
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
