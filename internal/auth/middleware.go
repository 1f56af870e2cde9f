package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskward/taskward/internal/platform/httpx"
	"github.com/taskward/taskward/internal/shared"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified token claims for the request.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsContextKey{}).(*Claims)
	return c
}

// Authenticator verifies the bearer token and attaches the principal to the
// request context. Requests without a valid credential are rejected with
// 401; they never reach a permission check with a silent allow.
type Authenticator struct {
	Repo     Repository
	Denylist *Denylist
	Secret   string
	Logger   *slog.Logger
}

// Middleware returns the chi middleware enforcing authentication.
func (a Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r)
		if token == "" {
			httpx.RespondError(w, r, fmt.Errorf("%w: bearer token missing", shared.ErrAuthentication))
			return
		}
		claims, userID, err := VerifyToken(a.Secret, token)
		if err != nil {
			a.warn("token rejected", slog.Any("error", err))
			httpx.RespondError(w, r, err)
			return
		}
		if a.Denylist.IsRevoked(r.Context(), claims.ID) {
			a.warn("revoked token presented", slog.Int64("user_id", userID))
			httpx.RespondError(w, r, fmt.Errorf("%w: token revoked", shared.ErrAuthentication))
			return
		}
		user, err := a.Repo.FindByID(r.Context(), userID)
		if err != nil {
			httpx.RespondError(w, r, fmt.Errorf("%w: token user no longer exists", shared.ErrAuthentication))
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), &shared.Principal{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		})
		ctx = context.WithValue(ctx, claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a Authenticator) warn(msg string, args ...any) {
	if a.Logger != nil {
		a.Logger.Warn(msg, args...)
	}
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return header[7:]
	}
	return ""
}
