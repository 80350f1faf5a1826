package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsocial/devsocial/internal/model"
)

func TestClientNew(t *testing.T) {
	c := New("https://example.com")
	assert.Equal(t, "https://example.com", c.BaseURL)
	assert.NotNil(t, c.HTTPClient)
	assert.False(t, c.IsAuthenticated())
}

func TestRegisterKeepsToken(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var s Signup
		require.NoError(t, json.NewDecoder(r.Body).Decode(&s))
		assert.Equal(t, "ada", s.Username)
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: "tok-1",
			TokenType:   "bearer",
			User:        model.User{ID: "u1", Username: s.Username},
		})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(model.User{ID: "u1", Username: "ada"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := New(ts.URL)
	user, err := c.Register(Signup{Username: "ada", Email: "ada@example.com", Password: "pw", FullName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, c.IsAuthenticated())

	me, err := c.Me()
	require.NoError(t, err)
	assert.Equal(t, "ada", me.Username)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestErrorResponses(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/posts/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Post not found"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}
	}))
	defer ts.Close()

	c := New(ts.URL)
	_, err := c.GetPost("missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Post not found", apiErr.Message)

	_, err = c.ListPosts(0, 0)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	assert.Contains(t, err.Error(), "upstream down")
}

func TestRegisterOrLoginFallsBack(t *testing.T) {
	logins := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"User with this email or username already exists"}`))
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		logins++
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok-2", User: model.User{ID: "u2"}})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	tok, err := NewTestHelper(ts.URL).GetToken("grace")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, 1, logins)
}

func TestPageQuery(t *testing.T) {
	assert.Equal(t, "", pageQuery(0, 0))
	assert.Equal(t, "?limit=5", pageQuery(0, 5))
	assert.Equal(t, "?limit=5&skip=10", pageQuery(10, 5))
}

func TestReconcileSendsAdminSecret(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Admin-Secret") != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(model.ReconcileReport{Users: 2})
	}))
	defer ts.Close()

	c := New(ts.URL)
	report, err := c.Reconcile("s3cret")
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Users)

	_, err = c.Reconcile("wrong")
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
}
