package login_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/liginc/unias-go/internal/login"
	"github.com/liginc/unias-go/pkg/oauth"
	"github.com/liginc/unias-go/pkg/state"
)

// fakeUnias serves the token and account info endpoints.
type fakeUnias struct {
	tokenStatus int
	infoStatus  int
	lastAuth    string
}

func (f *fakeUnias) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/oauth/token":
		f.lastAuth = r.Header.Get("Authorization")
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "invalid client"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-1",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	case "/v1/account/info":
		if f.infoStatus != 0 {
			w.WriteHeader(f.infoStatus)
			_ = json.NewEncoder(w).Encode(map[string]any{"message": "token revoked"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sub": "u1", "email": "a@b.com"})
	default:
		http.NotFound(w, r)
	}
}

func newRouter(t *testing.T, idp *fakeUnias, store state.Store) http.Handler {
	t.Helper()

	ts := httptest.NewServer(idp)
	t.Cleanup(ts.Close)

	p, err := oauth.NewUniasProvider(oauth.UniasConfig{
		APIBaseURI:   ts.URL,
		AuthorizeURI: ts.URL + "/oauth/authorize",
		TokenURI:     ts.URL + "/oauth/token",
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURI:  "https://app.example.com/auth/unias/callback",
	}, oauth.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	r := chi.NewRouter()
	login.New(p, store, nil).Routes(r)
	return r
}

func fixedStore(s string) *state.Memory {
	return state.NewMemory(state.WithGenerator(func() string { return s }))
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestLogin_Redirect(t *testing.T) {
	t.Parallel()

	r := newRouter(t, &fakeUnias{}, fixedStore("state-1"))

	rec := get(r, "/auth/unias/login")
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/oauth/authorize", loc.Path)
	require.Equal(t, "state-1", loc.Query().Get("state"))
	require.Equal(t, "id", loc.Query().Get("client_id"))
	require.Equal(t, "https://app.example.com/auth/unias/callback", loc.Query().Get("redirect_uri"))
}

func TestLogin_Callback(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		idp := &fakeUnias{}
		r := newRouter(t, idp, fixedStore("state-1"))
		require.Equal(t, http.StatusFound, get(r, "/auth/unias/login").Code)

		rec := get(r, "/auth/unias/callback?state=state-1&code=abc")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Basic aWQ6c2VjcmV0", idp.lastAuth)

		var body struct {
			Provider string         `json:"provider"`
			ID       string         `json:"id"`
			Identity map[string]any `json:"identity"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "unias", body.Provider)
		require.Equal(t, "u1", body.ID)
		require.Equal(t, "a@b.com", body.Identity["email"])

		replay := get(r, "/auth/unias/callback?state=state-1&code=abc")
		require.Equal(t, http.StatusBadRequest, replay.Code)
		require.Equal(t, "invalid oauth state", decodeError(t, replay))
	})

	t.Run("unknown state", func(t *testing.T) {
		t.Parallel()

		r := newRouter(t, &fakeUnias{}, fixedStore("state-1"))
		rec := get(r, "/auth/unias/callback?state=forged&code=abc")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing state", func(t *testing.T) {
		t.Parallel()

		r := newRouter(t, &fakeUnias{}, fixedStore("state-1"))
		rec := get(r, "/auth/unias/callback?code=abc")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing code", func(t *testing.T) {
		t.Parallel()

		r := newRouter(t, &fakeUnias{}, fixedStore("state-1"))
		get(r, "/auth/unias/login")

		rec := get(r, "/auth/unias/callback?state=state-1")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "missing authorization code", decodeError(t, rec))
	})

	t.Run("authorization denied", func(t *testing.T) {
		t.Parallel()

		r := newRouter(t, &fakeUnias{}, fixedStore("state-1"))
		get(r, "/auth/unias/login")

		rec := get(r, "/auth/unias/callback?state=state-1&error=access_denied")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "authorization denied: access_denied", decodeError(t, rec))
	})

	t.Run("token exchange rejected", func(t *testing.T) {
		t.Parallel()

		r := newRouter(t, &fakeUnias{tokenStatus: http.StatusUnauthorized}, fixedStore("state-1"))
		get(r, "/auth/unias/login")

		rec := get(r, "/auth/unias/callback?state=state-1&code=abc")
		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.Equal(t, "token exchange failed", decodeError(t, rec))
	})

	t.Run("account info rejected", func(t *testing.T) {
		t.Parallel()

		r := newRouter(t, &fakeUnias{infoStatus: http.StatusUnauthorized}, fixedStore("state-1"))
		get(r, "/auth/unias/login")

		rec := get(r, "/auth/unias/callback?state=state-1&code=abc")
		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.Equal(t, "fetch account info failed", decodeError(t, rec))
	})
}

type brokenStore struct{}

func (brokenStore) Issue(context.Context) (string, error)  { return "", errors.New("redis down") }
func (brokenStore) Consume(context.Context, string) error { return errors.New("redis down") }
func (brokenStore) Close() error                           { return nil }

func TestLogin_StoreFailure(t *testing.T) {
	t.Parallel()

	r := newRouter(t, &fakeUnias{}, brokenStore{})

	rec := get(r, "/auth/unias/login")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = get(r, "/auth/unias/callback?state=s&code=abc")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
