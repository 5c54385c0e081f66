package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tdnguyen/novelnest/auth"
	"github.com/tdnguyen/novelnest/datastore"
	"github.com/tdnguyen/novelnest/webutil"
)

// AuthMiddleware authenticates bearer tokens and places the resolved
// user on the request context.
type AuthMiddleware struct {
	auth *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{auth: authService}
}

// Authenticator rejects requests without a valid bearer token. The
// token's subject is re-resolved against the user store on every
// request, so deleted and deactivated accounts fail here even while
// their tokens are unexpired.
func (m *AuthMiddleware) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(webutil.HeaderAuthorization)
		if authHeader == "" {
			webutil.RespondWithError(w, http.StatusUnauthorized, "Missing Authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			webutil.RespondWithError(w, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		user, err := m.auth.DecodeToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidToken):
				webutil.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			case errors.Is(err, datastore.ErrNotFound):
				webutil.RespondWithError(w, http.StatusNotFound, "User not found")
			default:
				webutil.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), user)))
	})
}

// AdminOnly gates a route group behind the admin flag. It assumes
// Authenticator has already run.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			webutil.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !user.IsAdmin {
			webutil.RespondWithError(w, http.StatusForbidden, "You don't have the permission")
			return
		}
		next.ServeHTTP(w, r)
	})
}
