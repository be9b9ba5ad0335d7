package auth

import (
	"net/http"
	"strings"

	"github.com/vinaykumar231/WOFR-Backend/internal/platform/httpx"
	"github.com/vinaykumar231/WOFR-Backend/internal/shared"
)

// TenantHeader optionally scopes a request to one tenant.
const TenantHeader = "X-Tenant-ID"

// Authenticate resolves a bearer token into the request actor.
// Requests without an Authorization header pass through anonymously and are
// rejected later by route gates; a malformed or invalid token is rejected here.
func Authenticate(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				httpx.RespondError(w, ErrInvalidToken)
				return
			}
			claims, err := tokens.Verify(strings.TrimSpace(raw))
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			actor := shared.Actor{
				UserID:   claims.UserID,
				UserType: claims.UserType,
				TenantID: strings.TrimSpace(r.Header.Get(TenantHeader)),
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
		})
	}
}
