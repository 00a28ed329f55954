package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/movie-listings/internal/models"
)

func TestNewRendererParsesAllPages(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	for _, page := range []string{
		"index", "register", "register_success", "login",
		"movies_index", "movies_show", "movies_new", "movies_edit",
	} {
		assert.Contains(t, r.pages, page)
	}
}

func TestRenderLayoutNav(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	anon := httptest.NewRecorder()
	r.Render(anon, http.StatusOK, "index", struct{ Page }{Page{}})
	assert.Equal(t, http.StatusOK, anon.Code)
	assert.Contains(t, anon.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, anon.Body.String(), "Log in")
	assert.NotContains(t, anon.Body.String(), "Log out")

	signedIn := httptest.NewRecorder()
	r.Render(signedIn, http.StatusOK, "index", struct{ Page }{Page{User: &models.User{Username: "alice"}}})
	assert.Contains(t, signedIn.Body.String(), "alice")
	assert.Contains(t, signedIn.Body.String(), "Log out")
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	r.Render(rr, http.StatusOK, "nope", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRenderEscapesUserContent(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	r.Render(rr, http.StatusOK, "index", struct{ Page }{Page{User: &models.User{Username: `<script>`}}})
	assert.NotContains(t, rr.Body.String(), "<script>")
	assert.Contains(t, rr.Body.String(), "&lt;script&gt;")
}
