package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"agorax/pkg/requestcontext"
)

// TokenVerifier is the identity-provider boundary: given a caller's bearer
// credential it yields the owner and whether they hold the administrative
// capability. The engine trusts both values.
type TokenVerifier interface {
	Verify(token string) (requestcontext.Actor, error)
}

// RequireAuth validates the bearer token and stores the actor in context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			actor, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := requestcontext.WithActor(r.Context(), actor.OwnerID, actor.IsAdministrator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates administrative operations (open/close transitions).
// Must run after RequireAuth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := requestcontext.ActorFrom(r.Context())
			if !actor.IsAdministrator {
				logger.WarnContext(r.Context(), "forbidden - administrative capability required",
					"owner_id", actor.OwnerID.String(),
					"request_id", requestcontext.RequestID(r.Context()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","message":"administrative capability required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"` + message + `"}`))
}
