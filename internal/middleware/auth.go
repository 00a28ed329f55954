// Package middleware holds the route guards. Guard order matters:
// RequireOwner assumes RequireLogin already ran on the chain.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/movie-listings/internal/auth"
	"github.com/ayush/movie-listings/internal/models"
	"github.com/ayush/movie-listings/internal/store"
)

type ctxKey int

const movieKey ctxKey = iota

// MovieFinder is the slice of the movie store the ownership guard needs.
type MovieFinder interface {
	GetByID(ctx context.Context, id string) (*models.Movie, error)
}

// RequireLogin redirects anonymous requests to the login page. It is a pure
// session-presence check and never touches a store.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.SessionFrom(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOwner loads the movie from the {id} path parameter and only lets the
// owner through. Ids are compared in their canonical string form. The fetched
// movie is cached on the request context so handlers don't re-fetch it.
func RequireOwner(movies MovieFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			movie, err := movies.GetByID(r.Context(), chi.URLParam(r, "id"))
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "Movie not found", http.StatusNotFound)
				return
			}
			if err != nil {
				http.Error(w, "Server error", http.StatusInternalServerError)
				return
			}

			sess := auth.SessionFrom(r.Context())
			if sess == nil || movie.PostedBy != sess.UserID {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), movieKey, movie)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MovieFrom returns the movie cached by RequireOwner.
func MovieFrom(ctx context.Context) *models.Movie {
	movie, _ := ctx.Value(movieKey).(*models.Movie)
	return movie
}
