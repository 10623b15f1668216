package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bensuskins/nutrition-hub/internal/models"
	"github.com/bensuskins/nutrition-hub/internal/services"
)

type contextKey string

const UserContextKey contextKey = "user"

// Authenticate accepts an unscoped bearer API token or a session cookie and
// stores the resolved user on the request context.
func Authenticate(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if header := r.Header.Get("Authorization"); header != "" {
				raw, ok := strings.CutPrefix(header, "Bearer ")
				if !ok {
					unauthorized(w, "unsupported authorization scheme")
					return
				}
				user, err := authService.AuthenticateToken(r.Context(), strings.TrimSpace(raw), "")
				if err != nil {
					if !isTokenRejection(err) {
						slog.Error("authenticating token", "error", err)
					}
					unauthorized(w, "invalid or expired token")
					return
				}
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
				return
			}

			user, err := authService.GetCurrentUser(r)
			if err != nil {
				unauthorized(w, "authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

func GetUser(ctx context.Context) models.User {
	user, _ := ctx.Value(UserContextKey).(models.User)
	return user
}

func isTokenRejection(err error) bool {
	return errors.Is(err, services.ErrInvalidToken) ||
		errors.Is(err, services.ErrTokenExpired) ||
		errors.Is(err, services.ErrTokenScope)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
