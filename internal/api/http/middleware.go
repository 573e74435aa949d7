package http

import (
	"context"
	"net/http"
	"strings"

	"runnerly-backend/internal/security"
)

type contextKey string

const actorContextKey contextKey = "actor"

// AuthMiddleware validates the bearer token and attaches the actor claims
// to the request context. Fine-grained permissions are a collaborator
// concern; handlers only read the actor identity and roles from here.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}
			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
				return
			}
			ctx := context.WithValue(r.Context(), actorContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func actorFromContext(ctx context.Context) *security.ActorClaims {
	claims, _ := ctx.Value(actorContextKey).(*security.ActorClaims)
	return claims
}
