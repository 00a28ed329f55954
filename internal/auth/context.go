package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ayush/movie-listings/internal/models"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	userKey
)

// UserFinder is the slice of the credential store identity attachment needs.
type UserFinder interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// CurrentUser resolves the session cookie into the full user record and
// attaches both to the request context. It runs on every request; anonymous
// requests pass through with nothing attached and no store access.
func CurrentUser(sessions Sessions, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			sess, err := sessions.Get(ctx, cookie.Value)
			if err != nil {
				slog.Error("session lookup failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx = context.WithValue(ctx, sessionKey, sess)
			if user, err := users.GetUserByID(ctx, sess.UserID); err == nil {
				ctx = context.WithValue(ctx, userKey, user)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session attached by CurrentUser, or nil for an
// anonymous request.
func SessionFrom(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey).(*Session)
	return sess
}

// UserFrom returns the resolved current user, or nil if the request is
// anonymous or the session's user id no longer resolves.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
