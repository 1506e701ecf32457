package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RequestDefaults(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, WithCSRFToken("tok-1"))
	resp, err := c.Do(context.Background(), http.MethodGet, "/todos/", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "tok-1", got.Get("X-CSRFToken"))
	_, err = uuid.Parse(got.Get("X-Request-ID"))
	assert.NoError(t, err, "request id should be a uuid")
	assert.Equal(t, DefaultTimeout, c.Config().Timeout)
}

func TestClient_CSRFTokenFollowsCookie(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("X-CSRFToken"))
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "rotated", Path: "/"})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, WithCSRFToken("initial"))
	for i := 0; i < 2; i++ {
		_, err := c.Do(context.Background(), http.MethodGet, "/todos/", nil, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"initial", "rotated"}, seen)
	assert.Equal(t, "rotated", c.CSRFToken())
	require.NotNil(t, c.Cookie("csrftoken"))
}

func TestClient_StaticTokenIsNotRefreshed(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("X-CSRFToken"))
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "rotated", Path: "/"})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, WithTokenSource(StaticToken("fixed")))
	for i := 0; i < 2; i++ {
		_, err := c.Do(context.Background(), http.MethodGet, "/todos/", nil, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"fixed", "fixed"}, seen)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var present bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["X-Csrftoken"]
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Do(context.Background(), http.MethodGet, "/todos/", nil, nil)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestClient_SetCookieSeedsJar(t *testing.T) {
	c := New(Config{BaseURL: "http://localhost:8000"})
	c.SetCookie(&http.Cookie{Name: "csrftoken", Value: "saved", Path: "/"})
	assert.Equal(t, "saved", c.CSRFToken())

	bad := New(Config{BaseURL: "::not a url"})
	bad.SetCookie(&http.Cookie{Name: "csrftoken", Value: "x"})
	assert.Nil(t, bad.Cookie("csrftoken"))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	resp, err := c.Do(context.Background(), http.MethodGet, "/todos/", nil, nil)
	require.Error(t, err)

	var ne *NetworkError
	assert.ErrorAs(t, Classify(resp, err, false), &ne)
}
