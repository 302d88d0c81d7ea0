// Package login serves the browser side of the Unias authorization code flow.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"github.com/liginc/unias-go/pkg/logger"
	"github.com/liginc/unias-go/pkg/oauth"
	"github.com/liginc/unias-go/pkg/state"
)

// IdentityProvider is the part of a provider the login flow drives.
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)
	FetchResourceOwner(ctx context.Context, token *oauth2.Token) (*oauth.Identity, error)
}

// Handler serves /auth/{provider}/login and /auth/{provider}/callback.
type Handler struct {
	provider IdentityProvider
	states   state.Store
	logger   *slog.Logger
}

// New creates a login handler. A nil logger discards output.
func New(provider IdentityProvider, states state.Store, log *slog.Logger) *Handler {
	if log == nil {
		log = logger.NewNope()
	}
	return &Handler{
		provider: provider,
		states:   states,
		logger:   log.With(slog.String("provider", provider.Name())),
	}
}

// Routes registers the login routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/auth/"+h.provider.Name(), func(r chi.Router) {
		r.Get("/login", h.login)
		r.Get("/callback", h.callback)
	})
}

// identityResponse is the callback's success body.
type identityResponse struct {
	Provider string         `json:"provider"`
	ID       any            `json:"id"`
	Identity map[string]any `json:"identity"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	s, err := h.states.Issue(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "issue state failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not start login"})
		return
	}

	http.Redirect(w, r, h.provider.AuthCodeURL(s), http.StatusFound)
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if err := h.states.Consume(ctx, q.Get("state")); err != nil {
		if errors.Is(err, state.ErrNotFound) || errors.Is(err, state.ErrEmptyState) {
			h.logger.WarnContext(ctx, "callback with invalid state", slog.Any("error", err))
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid oauth state"})
			return
		}
		h.logger.ErrorContext(ctx, "consume state failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not verify login"})
		return
	}

	if code := q.Get("error"); code != "" {
		h.logger.WarnContext(ctx, "authorization denied",
			slog.String("error", code),
			slog.String("description", q.Get("error_description")))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "authorization denied: " + code})
		return
	}

	code := q.Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing authorization code"})
		return
	}

	token, err := h.provider.Exchange(ctx, code, "")
	if err != nil {
		h.providerFailure(w, r, "token exchange failed", err)
		return
	}

	identity, err := h.provider.FetchResourceOwner(ctx, token)
	if err != nil {
		h.providerFailure(w, r, "fetch account info failed", err)
		return
	}

	h.logger.InfoContext(ctx, "login succeeded", slog.Any("sub", identity.ID()))
	writeJSON(w, http.StatusOK, identityResponse{
		Provider: h.provider.Name(),
		ID:       identity.ID(),
		Identity: identity.All(),
	})
}

func (h *Handler) providerFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	attrs := []any{slog.Any("error", err)}

	var idpErr *oauth.IdentityProviderError
	if errors.As(err, &idpErr) {
		attrs = append(attrs,
			slog.Int("idp_status", idpErr.StatusCode),
			slog.String("idp_message", idpErr.Message))
	}

	h.logger.ErrorContext(r.Context(), msg, attrs...)
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
