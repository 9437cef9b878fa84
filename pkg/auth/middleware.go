package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/petspot/petspot-backend/pkg/errors"
	"github.com/petspot/petspot-backend/pkg/httputil"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// RequireRole rejects requests without a valid bearer token carrying the role
func (m *Manager) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.Error(w, errors.Unauthorized("missing authorization header"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				httputil.Error(w, errors.Unauthorized("invalid authorization header format"))
				return
			}

			claims, err := m.ValidateAccessToken(parts[1])
			if err != nil {
				httputil.Error(w, err)
				return
			}

			if claims.Role != role {
				httputil.Error(w, errors.Forbidden("insufficient role"))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the verified claims or nil
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// ManagementCredentials reads "Authorization: Basic base64(id:password)".
// ok is false when the header is absent or malformed.
func ManagementCredentials(r *http.Request) (announcementID, password string, ok bool) {
	return r.BasicAuth()
}

// ManagementAuthorization builds the header value ManagementCredentials parses
func ManagementAuthorization(announcementID, password string) string {
	raw := announcementID + ":" + password
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}
