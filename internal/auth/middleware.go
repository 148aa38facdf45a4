package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/bodycraft-erp/bodycraft-erp/internal/platform/httpx"
	"github.com/bodycraft-erp/bodycraft-erp/internal/shared"
)

// Middleware authenticates requests via `Authorization: Bearer <id>.<secret>`.
type Middleware struct {
	Repo     Repository
	Logger   *slog.Logger
	Disabled bool
}

// RequireToken rejects requests without a valid token. The response never
// distinguishes unknown, revoked, and mismatched credentials.
func (m Middleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Disabled {
			next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), "dev")))
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		id, secret, ok := strings.Cut(token, ".")
		if !ok || id == "" || secret == "" {
			httpx.RespondError(w, shared.E(shared.KindUnauthorized, "authentication required"))
			return
		}

		stored, err := m.Repo.GetToken(r.Context(), id)
		if err != nil || stored.Revoked {
			httpx.RespondError(w, shared.E(shared.KindUnauthorized, "authentication required"))
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(stored.SecretHash), []byte(secret)); err != nil {
			if m.Logger != nil {
				m.Logger.Warn("token verification failed", slog.String("token_id", id))
			}
			httpx.RespondError(w, shared.E(shared.KindUnauthorized, "authentication required"))
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), stored.Actor)))
	})
}
