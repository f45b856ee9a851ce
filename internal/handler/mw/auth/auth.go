package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/pechorka/readstreak/internal/handler/internal/respond"
)

// AuthMW guards the API with a single static bearer token. An empty token
// disables the check, which is the default for a local single-user setup.
type AuthMW struct {
	token []byte
}

func NewAuthMW(token string) *AuthMW {
	return &AuthMW{token: []byte(token)}
}

const bearerPrefix = "Bearer "

func (mw *AuthMW) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(mw.token) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			respond.ErrorWithCode(w,
				http.StatusUnauthorized,
				respond.CODE_AUTH_HEADER_MISSING,
			)
			return
		}
		token := authHeader[len(bearerPrefix):]
		if subtle.ConstantTimeCompare([]byte(token), mw.token) != 1 {
			respond.ErrorWithCode(w,
				http.StatusUnauthorized,
				respond.CODE_AUTH_TOKEN_INVALID,
			)
			return
		}
		next.ServeHTTP(w, r)
	})
}
