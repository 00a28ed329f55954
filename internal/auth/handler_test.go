package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/movie-listings/internal/models"
	"github.com/ayush/movie-listings/internal/store"
	"github.com/ayush/movie-listings/internal/web"
)

type memUsers struct {
	byID       map[string]*models.User
	byUsername map[string]*models.User
	seq        int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}, byUsername: map[string]*models.User{}}
}

func (m *memUsers) CreateUser(_ context.Context, username, passwordHash string) (*models.User, error) {
	if _, ok := m.byUsername[username]; ok {
		return nil, store.ErrUsernameTaken
	}
	m.seq++
	u := &models.User{ID: fmt.Sprintf("user-%d", m.seq), Username: username, PasswordHash: passwordHash}
	m.byID[u.ID] = u
	m.byUsername[username] = u
	return u, nil
}

func (m *memUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := m.byUsername[username]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

type memSessions struct {
	byToken map[string]Session
	seq     int
}

func newMemSessions() *memSessions {
	return &memSessions{byToken: map[string]Session{}}
}

func (m *memSessions) Create(_ context.Context, sess Session) (string, error) {
	m.seq++
	token := fmt.Sprintf("token-%d", m.seq)
	m.byToken[token] = sess
	return token, nil
}

func (m *memSessions) Get(_ context.Context, token string) (*Session, error) {
	if sess, ok := m.byToken[token]; ok {
		return &sess, nil
	}
	return nil, nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	delete(m.byToken, token)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *memUsers, *memSessions) {
	t.Helper()
	view, err := web.NewRenderer()
	require.NoError(t, err)
	users := newMemUsers()
	sessions := newMemSessions()
	return NewHandler(users, sessions, view), users, sessions
}

func postForm(h http.HandlerFunc, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestRegisterSuccess(t *testing.T) {
	h, users, _ := newTestHandler(t)

	rr := postForm(h.Register, "/register", url.Values{
		"username":        {"alice"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Account created")

	u, err := users.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
	assert.NotEqual(t, "secret1", u.PasswordHash)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	h, users, _ := newTestHandler(t)

	rr := postForm(h.Register, "/register", url.Values{
		"username":        {"alice"},
		"password":        {"secret1"},
		"confirmPassword": {"secret2"},
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Passwords do not match.")
	assert.Empty(t, users.byUsername, "no user persisted")
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"short username", url.Values{"username": {"ab"}, "password": {"secret1"}, "confirmPassword": {"secret1"}},
			"Username must be at least 3 characters."},
		{"short password", url.Values{"username": {"alice"}, "password": {"12345"}, "confirmPassword": {"12345"}},
			"Password must be at least 6 characters."},
		{"missing confirmation", url.Values{"username": {"alice"}, "password": {"secret1"}},
			"Confirm Password is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, users, _ := newTestHandler(t)
			rr := postForm(h.Register, "/register", tt.form)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.want)
			assert.Empty(t, users.byUsername)
		})
	}
}

func TestRegisterEchoesUsernameNotPassword(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := postForm(h.Register, "/register", url.Values{
		"username":        {"bob"},
		"password":        {"hunter77"},
		"confirmPassword": {"different"},
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `value="bob"`)
	assert.NotContains(t, rr.Body.String(), "hunter77")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	h, users, _ := newTestHandler(t)

	form := url.Values{"username": {"alice"}, "password": {"secret1"}, "confirmPassword": {"secret1"}}
	rr := postForm(h.Register, "/register", form)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = postForm(h.Register, "/register", url.Values{
		"username": {"alice"}, "password": {"another7"}, "confirmPassword": {"another7"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Username is already taken.")
	assert.Len(t, users.byUsername, 1)
}

func TestRegisterThenLoginRoundTrip(t *testing.T) {
	h, _, sessions := newTestHandler(t)

	rr := postForm(h.Register, "/register", url.Values{
		"username": {"alice"}, "password": {"secret1"}, "confirmPassword": {"secret1"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = postForm(h.Login, "/login", url.Values{"username": {"alice"}, "password": {"secret1"}})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/movies", rr.Header().Get("Location"))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	sess, err := sessions.Get(context.Background(), cookies[0].Value)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "alice", sess.Username)
}

func TestLoginEnumerationResistance(t *testing.T) {
	h, _, sessions := newTestHandler(t)

	rr := postForm(h.Register, "/register", url.Values{
		"username": {"alice"}, "password": {"secret1"}, "confirmPassword": {"secret1"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	wrongPw := postForm(h.Login, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	noUser := postForm(h.Login, "/login", url.Values{"username": {"alice2"}, "password": {"secret1"}})

	assert.Equal(t, http.StatusBadRequest, wrongPw.Code)
	assert.Equal(t, http.StatusBadRequest, noUser.Code)
	assert.Contains(t, wrongPw.Body.String(), "Invalid username or password.")
	assert.Contains(t, noUser.Body.String(), "Invalid username or password.")
	assert.Empty(t, sessions.byToken, "no session established")
}

func TestLoginValidationSkipsStore(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rr := postForm(h.Login, "/login", url.Values{"username": {""}, "password": {""}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Username is required.")
	assert.Contains(t, rr.Body.String(), "Password is required.")
}

func TestLogout(t *testing.T) {
	h, _, sessions := newTestHandler(t)

	token, err := sessions.Create(context.Background(), Session{UserID: "user-1", Username: "alice"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.Empty(t, sessions.byToken, "session destroyed")

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0, "cookie expired")
}

func TestLogoutWithoutSession(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
}

func TestShowLoginMessage(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/login?msg=Please+log+in", nil)
	rr := httptest.NewRecorder()
	h.ShowLogin(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Please log in")
}
