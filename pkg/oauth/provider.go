package oauth

import (
	"context"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

// UserInfo represents provider-agnostic user information
// retrieved from an OAuth provider's userinfo endpoint.
type UserInfo struct {
	ID      string // Provider's unique user identifier
	Email   string
	Name    string
	Picture string
}

// Provider abstracts provider-specific OAuth operations.
// It is the surface login handlers depend on.
type Provider interface {
	// Name returns the provider identifier (e.g., "unias").
	Name() string

	// AuthCodeURL generates the authorization URL for the OAuth flow.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)

	// FetchUserInfo retrieves user information using the access token.
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error)
}

// Adapter is the set of hooks a provider plugs into the oauth2 engine:
// endpoints, token request shaping, error detection and identity mapping.
type Adapter interface {
	// AuthorizationURL returns the base authorize endpoint.
	AuthorizationURL() string

	// TokenURL returns the token endpoint for the given exchange parameters.
	TokenURL(params url.Values) string

	// ResourceOwnerDetailsURL returns the user info endpoint for token.
	ResourceOwnerDetailsURL(token *oauth2.Token) string

	// DefaultScopes returns the scopes requested when none are configured.
	DefaultScopes() []string

	// BuildTokenRequest builds the HTTP request sent to the token endpoint.
	BuildTokenRequest(ctx context.Context, params url.Values) (*http.Request, error)

	// ValidateResponse returns an error if resp signals a provider failure.
	// body is the parsed response body, possibly nil.
	ValidateResponse(resp *http.Response, body any) error

	// BuildIdentity wraps a successful user info body.
	BuildIdentity(body map[string]any) *Identity
}
