package middleware

import (
	"net/http"

	"github.com/cabinetd/cabinet/internal/ctxkeys"
	"github.com/cabinetd/cabinet/internal/service"
)

// TokenHeader carries the session token on every authenticated request.
const TokenHeader = "X-Token"

// Session resolves the X-Token header and adds the user to the request
// context when the token is valid. It always continues: some endpoints allow
// anonymous access, so enforcement belongs to the handlers.
func Session(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithToken(r.Context(), token)

			user, err := sessions.Resolve(ctx, token)
			if err != nil {
				// Invalid token, continue without identity
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx = ctxkeys.WithUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
