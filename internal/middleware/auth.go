package middleware

import (
	"net/http"

	"github.com/okovalenko/wishlink/internal/handlers"
	"github.com/okovalenko/wishlink/internal/services"
)

const sessionCookieName = "session_token"

type AuthMiddleware struct {
	sessionService services.SessionServiceInterface
}

func NewAuthMiddleware(sessionService services.SessionServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{sessionService: sessionService}
}

// Authenticate threads the session token into the request context and, when
// the session resolves, adds the user summary too. It never rejects; requests
// without a valid session simply continue anonymous.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		// Services read the token from the context, so it must be attached
		// even when resolution below fails.
		ctx := services.WithToken(r.Context(), cookie.Value)

		user, err := m.sessionService.GetCurrentUser(ctx)
		if err == nil && user != nil {
			ctx = handlers.SetUserInContext(ctx, user)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects unauthenticated requests with 401.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := handlers.GetUserFromContext(r.Context())
		if user == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
