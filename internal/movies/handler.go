package movies

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ayush/movie-listings/internal/auth"
	"github.com/ayush/movie-listings/internal/forms"
	"github.com/ayush/movie-listings/internal/middleware"
	"github.com/ayush/movie-listings/internal/models"
	"github.com/ayush/movie-listings/internal/store"
	"github.com/ayush/movie-listings/internal/web"
)

const maxPosterBytes = 5 << 20

// MovieStore defines the interface for movie persistence.
type MovieStore interface {
	Insert(ctx context.Context, movie *models.Movie) (string, error)
	List(ctx context.Context) ([]models.Movie, error)
	GetByID(ctx context.Context, id string) (*models.Movie, error)
	Update(ctx context.Context, id string, movie *models.Movie) error
	Delete(ctx context.Context, id string) error
}

// UserStore resolves owner ids to user records for display.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// PosterStore defines the interface for poster image storage.
type PosterStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Handler holds the movie CRUD handlers.
type Handler struct {
	movies  MovieStore
	users   UserStore
	posters PosterStore
	view    *web.Renderer
}

func NewHandler(movies MovieStore, users UserStore, posters PosterStore, view *web.Renderer) *Handler {
	return &Handler{movies: movies, users: users, posters: posters, view: view}
}

type listData struct {
	web.Page
	Movies []models.Movie
}

type showData struct {
	web.Page
	Movie   *models.Movie
	IsOwner bool
}

type formPage struct {
	web.Page
	Errors forms.Errors
	Form   map[string]string
	Movie  *models.Movie
}

func movieRules() []forms.Rule {
	return []forms.Rule{
		{Field: "name", Trim: true, Checks: []forms.Check{forms.Required("Name is required")}},
		{Field: "description", Trim: true, Checks: []forms.Check{forms.Required("Description is required")}},
		{Field: "year", Trim: true, Checks: []forms.Check{forms.IntMin(1880, "Year must be a valid number")}},
		{Field: "genres", Trim: true, Checks: []forms.Check{forms.Required("Genres are required")}},
		{Field: "rating", Trim: true, Checks: []forms.Check{forms.FloatRange(0, 10, "Rating must be between 0 and 10")}},
		{Field: "posterUrl", Trim: true},
	}
}

// movieFromValues builds a movie from validated form values. Year and rating
// re-parse cleanly because the rules already vetted them.
func movieFromValues(values map[string]string) *models.Movie {
	year, _ := strconv.Atoi(values["year"])
	rating, _ := strconv.ParseFloat(values["rating"], 64)
	return &models.Movie{
		Name:        values["name"],
		Description: values["description"],
		Year:        year,
		Genres:      ParseGenres(values["genres"]),
		Rating:      rating,
		PosterURL:   values["posterUrl"],
	}
}

func formFromMovie(m *models.Movie) map[string]string {
	return map[string]string{
		"name":        m.Name,
		"description": m.Description,
		"year":        strconv.Itoa(m.Year),
		"genres":      strings.Join(m.Genres, ", "),
		"rating":      strconv.FormatFloat(m.Rating, 'f', -1, 64),
		"posterUrl":   m.PosterURL,
	}
}

// resolveOwners fills PostedByName for each movie, one store read per
// distinct owner.
func (h *Handler) resolveOwners(ctx context.Context, items []models.Movie) {
	names := make(map[string]string)
	for i := range items {
		id := items[i].PostedBy
		name, ok := names[id]
		if !ok {
			name = "unknown"
			if u, err := h.users.GetUserByID(ctx, id); err == nil {
				name = u.Username
			}
			names[id] = name
		}
		items[i].PostedByName = name
	}
}

// posterFromRequest reads the optional uploaded poster. A missing file or a
// non-multipart form yields (nil, "", nil).
func posterFromRequest(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("poster")
	if err != nil {
		return nil, "", nil
	}
	defer file.Close()

	if header.Size > maxPosterBytes {
		return nil, "", errors.New("poster too large")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Header.Get("Content-Type"), nil
}

// List shows all movies, most recent first. Public.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.movies.List(r.Context())
	if err != nil {
		slog.Error("list movies failed", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	h.resolveOwners(r.Context(), items)
	h.view.Render(w, http.StatusOK, "movies_index", listData{
		Page:   web.Page{User: auth.UserFrom(r.Context())},
		Movies: items,
	})
}

// New renders the creation form. Login required.
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, http.StatusOK, "movies_new", formPage{
		Page: web.Page{User: auth.UserFrom(r.Context())},
		Form: map[string]string{},
	})
}

// Create validates and persists a new movie owned by the session user.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	page := web.Page{User: auth.UserFrom(r.Context())}
	values, errs := forms.Validate(r.FormValue, movieRules())
	if errs.Has() {
		h.view.Render(w, http.StatusBadRequest, "movies_new", formPage{Page: page, Errors: errs, Form: values})
		return
	}

	movie := movieFromValues(values)
	movie.PostedBy = auth.SessionFrom(r.Context()).UserID

	data, contentType, err := posterFromRequest(r)
	if err != nil {
		errs = forms.Errors{{Field: "poster", Message: "Poster image could not be read (5 MB max)."}}
		h.view.Render(w, http.StatusBadRequest, "movies_new", formPage{Page: page, Errors: errs, Form: values})
		return
	}
	if data != nil {
		key := "posters/" + uuid.New().String()
		if err := h.posters.Upload(r.Context(), key, data, contentType); err != nil {
			slog.Error("poster upload failed", "error", err)
		} else {
			movie.PosterKey = key
		}
	}

	if _, err := h.movies.Insert(r.Context(), movie); err != nil {
		slog.Error("create movie failed", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/movies", http.StatusSeeOther)
}

// Show renders a single movie. Public.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movies.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Movie not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("show movie failed", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	movie.PostedByName = "unknown"
	if u, err := h.users.GetUserByID(r.Context(), movie.PostedBy); err == nil {
		movie.PostedByName = u.Username
	}

	sess := auth.SessionFrom(r.Context())
	h.view.Render(w, http.StatusOK, "movies_show", showData{
		Page:    web.Page{User: auth.UserFrom(r.Context())},
		Movie:   movie,
		IsOwner: sess != nil && sess.UserID == movie.PostedBy,
	})
}

// Edit renders the edit form prefilled from the stored movie. The ownership
// guard already ran; the fetch is re-done in case the movie vanished since.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movies.GetByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Movie not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("edit movie failed", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	h.view.Render(w, http.StatusOK, "movies_edit", formPage{
		Page:  web.Page{User: auth.UserFrom(r.Context())},
		Form:  formFromMovie(movie),
		Movie: movie,
	})
}

// Update validates and persists edits to an owned movie. On validation
// failure the form re-renders with the submitted values. PostedBy is never
// touched.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	movie := middleware.MovieFrom(r.Context())
	page := web.Page{User: auth.UserFrom(r.Context())}

	values, errs := forms.Validate(r.FormValue, movieRules())
	if errs.Has() {
		h.view.Render(w, http.StatusBadRequest, "movies_edit", formPage{Page: page, Errors: errs, Form: values, Movie: movie})
		return
	}

	updated := movieFromValues(values)
	updated.PosterKey = movie.PosterKey

	data, contentType, err := posterFromRequest(r)
	if err != nil {
		errs = forms.Errors{{Field: "poster", Message: "Poster image could not be read (5 MB max)."}}
		h.view.Render(w, http.StatusBadRequest, "movies_edit", formPage{Page: page, Errors: errs, Form: values, Movie: movie})
		return
	}
	if data != nil {
		key := movie.PosterKey
		if key == "" {
			key = "posters/" + uuid.New().String()
		}
		if err := h.posters.Upload(r.Context(), key, data, contentType); err != nil {
			slog.Error("poster upload failed", "error", err)
		} else {
			updated.PosterKey = key
		}
	}

	id := movie.HexID()
	if err := h.movies.Update(r.Context(), id, updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Movie not found", http.StatusNotFound)
			return
		}
		slog.Error("update movie failed", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/movies/"+id, http.StatusSeeOther)
}

// Delete removes an owned movie and its poster object.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	movie := middleware.MovieFrom(r.Context())

	if movie.PosterKey != "" {
		if err := h.posters.Remove(r.Context(), movie.PosterKey); err != nil {
			slog.Error("poster remove failed", "error", err)
		}
	}
	if err := h.movies.Delete(r.Context(), movie.HexID()); err != nil {
		slog.Error("delete movie failed", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/movies", http.StatusSeeOther)
}

// Poster streams the stored poster image.
func (h *Handler) Poster(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movies.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil || movie.PosterKey == "" {
		http.Error(w, "Poster not found", http.StatusNotFound)
		return
	}

	data, contentType, err := h.posters.Download(r.Context(), movie.PosterKey)
	if err != nil {
		slog.Error("poster download failed", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}
