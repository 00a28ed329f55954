package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/movie-listings/internal/forms"
	"github.com/ayush/movie-listings/internal/models"
	"github.com/ayush/movie-listings/internal/store"
	"github.com/ayush/movie-listings/internal/web"
)

// invalidCredentials is the single message for every failed login, so the
// response never reveals whether the username exists.
const invalidCredentials = "Invalid username or password."

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Handler holds the registration, login and logout handlers.
type Handler struct {
	users    UserStore
	sessions Sessions
	view     *web.Renderer
}

func NewHandler(users UserStore, sessions Sessions, view *web.Renderer) *Handler {
	return &Handler{users: users, sessions: sessions, view: view}
}

type formData struct {
	web.Page
	Errors  forms.Errors
	Form    map[string]string
	Message string
}

type successData struct {
	web.Page
	Username string
}

func registerRules(confirmAgainst string) []forms.Rule {
	return []forms.Rule{
		{Field: "username", Trim: true, Checks: []forms.Check{
			forms.Required("Username is required."),
			forms.MinLen(3, "Username must be at least 3 characters."),
		}},
		{Field: "password", Checks: []forms.Check{
			forms.Required("Password is required."),
			forms.MinLen(6, "Password must be at least 6 characters."),
		}},
		{Field: "confirmPassword", Checks: []forms.Check{
			forms.Required("Confirm Password is required."),
			forms.Equals(confirmAgainst, "Passwords do not match."),
		}},
	}
}

func loginRules() []forms.Rule {
	return []forms.Rule{
		{Field: "username", Trim: true, Checks: []forms.Check{forms.Required("Username is required.")}},
		{Field: "password", Checks: []forms.Check{forms.Required("Password is required.")}},
	}
}

// echo keeps only the fields safe to send back to the browser. Passwords are
// never echoed.
func echo(values map[string]string) map[string]string {
	return map[string]string{"username": values["username"]}
}

// ShowRegister renders the registration form.
func (h *Handler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, http.StatusOK, "register", formData{
		Page: web.Page{User: UserFrom(r.Context())},
		Form: map[string]string{},
	})
}

// Register validates the form and creates the user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	page := web.Page{User: UserFrom(r.Context())}
	values, errs := forms.Validate(r.PostFormValue, registerRules(r.PostFormValue("password")))
	if errs.Has() {
		h.view.Render(w, http.StatusBadRequest, "register", formData{Page: page, Errors: errs, Form: echo(values)})
		return
	}

	// Friendly pre-check. The users table's UNIQUE constraint is the real
	// guarantee; a concurrent insert surfaces as ErrUsernameTaken below.
	if _, err := h.users.GetUserByUsername(r.Context(), values["username"]); err == nil {
		h.view.Render(w, http.StatusBadRequest, "register", formData{
			Page:   page,
			Errors: forms.Errors{{Field: "username", Message: "Username is already taken."}},
			Form:   echo(values),
		})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		slog.Error("register: username lookup failed", "error", err)
		h.serverError(w, page, "register", echo(values))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(values["password"]), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("register: hash failed", "error", err)
		h.serverError(w, page, "register", echo(values))
		return
	}

	user, err := h.users.CreateUser(r.Context(), values["username"], string(hash))
	if errors.Is(err, store.ErrUsernameTaken) {
		h.view.Render(w, http.StatusBadRequest, "register", formData{
			Page:   page,
			Errors: forms.Errors{{Field: "username", Message: "Username is already taken."}},
			Form:   echo(values),
		})
		return
	}
	if err != nil {
		slog.Error("register: create user failed", "error", err)
		h.serverError(w, page, "register", echo(values))
		return
	}

	h.view.Render(w, http.StatusOK, "register_success", successData{Page: page, Username: user.Username})
}

// ShowLogin renders the login form, with an optional informational message
// from the msg query parameter.
func (h *Handler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.view.Render(w, http.StatusOK, "login", formData{
		Page:    web.Page{User: UserFrom(r.Context())},
		Form:    map[string]string{},
		Message: r.URL.Query().Get("msg"),
	})
}

// Login checks the credentials and establishes a new session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	page := web.Page{User: UserFrom(r.Context())}
	values, errs := forms.Validate(r.PostFormValue, loginRules())
	if errs.Has() {
		h.view.Render(w, http.StatusBadRequest, "login", formData{Page: page, Errors: errs, Form: echo(values)})
		return
	}

	fail := func() {
		h.view.Render(w, http.StatusBadRequest, "login", formData{
			Page:   page,
			Errors: forms.Errors{{Field: "password", Message: invalidCredentials}},
			Form:   echo(values),
		})
	}

	user, err := h.users.GetUserByUsername(r.Context(), values["username"])
	if errors.Is(err, store.ErrNotFound) {
		fail()
		return
	}
	if err != nil {
		slog.Error("login: username lookup failed", "error", err)
		h.serverError(w, page, "login", echo(values))
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(values["password"])) != nil {
		fail()
		return
	}

	token, err := h.sessions.Create(r.Context(), Session{UserID: user.ID, Username: user.Username})
	if err != nil {
		slog.Error("login: session create failed", "error", err)
		h.serverError(w, page, "login", echo(values))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionTTL.Seconds()),
	})
	http.Redirect(w, r, "/movies", http.StatusSeeOther)
}

// Logout destroys the session and expires the cookie. Logging out without an
// active session is not an error.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			slog.Error("logout: session delete failed", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) serverError(w http.ResponseWriter, page web.Page, tmpl string, form map[string]string) {
	h.view.Render(w, http.StatusInternalServerError, tmpl, formData{
		Page:   page,
		Errors: forms.Errors{{Field: "", Message: "Server error. Please try again."}},
		Form:   form,
	})
}
