package auth

import (
	"net/http"
	"strings"

	"github.com/toyshop-pos/toyshop/internal/platform/httpx"
	"github.com/toyshop-pos/toyshop/internal/shared"
)

// Middleware guards routes with bearer-token authentication.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs the auth middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// actor on the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpx.RespondError(w, shared.ErrInvalidCredentials)
			return
		}

		actor, err := m.tokens.Parse(token)
		if err != nil {
			httpx.RespondError(w, shared.ErrInvalidCredentials)
			return
		}

		ctx := shared.ContextWithActor(r.Context(), actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose actor is not an admin. Mount after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.ActorFromContext(r.Context())
		if !ok || !actor.IsAdmin() {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
