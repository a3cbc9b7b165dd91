package auth

import (
	"context"
	"net/http"
	"strings"
)

type accountIDKey struct{}

// AccountIDFromContext returns the authenticated account id, if any.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(accountIDKey{}).(string)
	return v, ok && v != ""
}

// Authenticate validates the Authorization bearer token and stores the
// resolved account id on the request context. onError writes the response for
// rejected requests.
func Authenticate(issuer *TokenIssuer, onError func(http.ResponseWriter, *http.Request, int, string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if issuer == nil {
				onError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				onError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}

			accountID, err := issuer.Validate(strings.TrimSpace(authz[len("Bearer "):]))
			if err != nil {
				onError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), accountIDKey{}, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
