package oauth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/oauth2"
)

const (
	// UniasProviderName is the identifier for Unias OAuth provider.
	UniasProviderName = "unias"

	uniasAccountInfoPath = "/v1/account/info"
	uniasSubjectField    = "sub"
	defaultIDField       = "id"
)

// UniasProvider implements Provider and Adapter for Unias.
// It holds no mutable state after construction.
type UniasProvider struct {
	cfg        UniasConfig
	config     *oauth2.Config
	httpClient *http.Client
}

// NewUniasProvider creates a new Unias OAuth provider from a typed config.
// Returns a ConfigurationError listing every required field left empty.
func NewUniasProvider(cfg UniasConfig, opts ...Option) (*UniasProvider, error) {
	return NewUniasProviderFromOptions(cfg.Options(), opts...)
}

// NewUniasProviderFromOptions creates a new Unias OAuth provider from named
// options (see RequiredOptions). Unrecognized keys are dropped and trailing
// slashes are trimmed from the three URL options.
func NewUniasProviderFromOptions(values map[string]string, opts ...Option) (*UniasProvider, error) {
	cfg, err := filterOptions(values)
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	p := &UniasProvider{cfg: cfg}
	p.config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       p.DefaultScopes(),
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthorizeURI,
			TokenURL: cfg.TokenURI,
			// The engine puts credentials in the form; the token transport
			// moves them into the Authorization header.
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	p.httpClient = newTokenClient(p, o.httpClient)

	return p, nil
}

// Name returns the provider identifier.
func (p *UniasProvider) Name() string {
	return UniasProviderName
}

// AuthorizationURL returns the configured authorize endpoint.
func (p *UniasProvider) AuthorizationURL() string {
	return p.cfg.AuthorizeURI
}

// TokenURL returns the configured token endpoint. params are ignored.
func (p *UniasProvider) TokenURL(url.Values) string {
	return p.cfg.TokenURI
}

// ResourceOwnerDetailsURL returns the account info endpoint.
// The endpoint does not depend on the token.
func (p *UniasProvider) ResourceOwnerDetailsURL(*oauth2.Token) string {
	return p.cfg.APIBaseURI + uniasAccountInfoPath
}

// DefaultScopes returns no scopes; Unias grants them implicitly.
func (p *UniasProvider) DefaultScopes() []string {
	return []string{}
}

// AuthCodeURL generates the authorization URL.
func (p *UniasProvider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return p.config.AuthCodeURL(state, opts...)
}

// BuildTokenRequest builds the token request for params.
// client_id and client_secret are removed from the form and sent as HTTP
// Basic credentials instead; Unias rejects credentials in the body.
// params is not modified.
func (p *UniasProvider) BuildTokenRequest(ctx context.Context, params url.Values) (*http.Request, error) {
	pruned := make(url.Values, len(params))
	for k, v := range params {
		if k == "client_id" || k == "client_secret" {
			continue
		}
		pruned[k] = slices.Clone(v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.TokenURL(params), strings.NewReader(pruned.Encode()))
	if err != nil {
		return nil, fmt.Errorf("oauth: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basicCredentials(p.cfg.ClientID, p.cfg.ClientSecret))

	return req, nil
}

// Exchange trades an authorization code for tokens.
// A non-empty redirectURI overrides the configured one for this exchange.
// Token endpoint error responses are returned as *IdentityProviderError.
func (p *UniasProvider) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	cfg := p.config
	if redirectURI != "" {
		override := *p.config
		override.RedirectURL = redirectURI
		cfg = &override
	}

	token, err := cfg.Exchange(p.contextWithHTTPClient(ctx), code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			body, _ := parseBody(re.Response.Header.Get("Content-Type"), re.Body)
			if vErr := p.ValidateResponse(re.Response, body); vErr != nil {
				return nil, vErr
			}
		}
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("exchange code: %w", err))
	}

	return token, nil
}

// ValidateResponse returns an *IdentityProviderError when resp has a status
// of 400 or above. The message is taken from body's "message" field when
// present, otherwise from the HTTP status text. Success bodies are not checked.
func (p *UniasProvider) ValidateResponse(resp *http.Response, body any) error {
	if resp == nil {
		return ErrNilResponse
	}
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	message := http.StatusText(resp.StatusCode)
	if m, ok := body.(map[string]any); ok {
		switch v := m["message"].(type) {
		case nil:
		case string:
			message = v
		default:
			message = fmt.Sprint(v)
		}
	}

	return &IdentityProviderError{
		Message:    message,
		StatusCode: resp.StatusCode,
		Response:   resp,
		Body:       body,
	}
}

// BuildIdentity wraps an account info body, identified by "sub".
func (p *UniasProvider) BuildIdentity(body map[string]any) *Identity {
	return NewIdentity(body, uniasSubjectField)
}

// FetchIdentity issues an authenticated request to rawURL and wraps the
// parsed body. A body that is not a JSON object is stored under idField,
// which defaults to "id".
func (p *UniasProvider) FetchIdentity(ctx context.Context, method, rawURL string, token *oauth2.Token, idField string) (*Identity, error) {
	if idField == "" {
		idField = defaultIDField
	}

	body, err := p.getParsedResponse(ctx, method, rawURL, token)
	if err != nil {
		return nil, err
	}

	fields, ok := body.(map[string]any)
	if !ok {
		fields = map[string]any{idField: body}
	}

	return NewIdentity(fields, idField), nil
}

// FetchResourceOwner fetches the account info of the token's owner.
func (p *UniasProvider) FetchResourceOwner(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	body, err := p.getParsedResponse(ctx, http.MethodGet, p.ResourceOwnerDetailsURL(token), token)
	if err != nil {
		return nil, err
	}

	fields, ok := body.(map[string]any)
	if !ok {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("account info: expected JSON object, got %T", body))
	}

	return p.BuildIdentity(fields), nil
}

// FetchUserInfo retrieves the account info and maps it to UserInfo.
func (p *UniasProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	identity, err := p.FetchResourceOwner(ctx, token)
	if err != nil {
		return nil, err
	}

	id := identity.ID()
	if id == nil {
		return nil, errors.Join(ErrDecodeFailed, errors.New("account info: missing sub"))
	}

	return &UserInfo{
		ID:      identifierString(id),
		Email:   identity.String("email"),
		Name:    identity.String("name"),
		Picture: identity.String("picture"),
	}, nil
}

func (p *UniasProvider) getParsedResponse(ctx context.Context, method, rawURL string, token *oauth2.Token) (any, error) {
	ctx = p.contextWithHTTPClient(ctx)
	client := p.config.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("build request: %w", err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("fetch %s: %w", rawURL, err))
	}
	if resp == nil {
		return nil, errors.Join(ErrNilResponse, errors.New("unexpected nil response from unias"))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("read response: %w", err))
	}

	body, err := parseBody(resp.Header.Get("Content-Type"), raw)
	if err != nil {
		// An error status is more useful to the caller than a decode failure.
		if vErr := p.ValidateResponse(resp, nil); vErr != nil {
			return nil, vErr
		}
		return nil, err
	}

	if err := p.ValidateResponse(resp, body); err != nil {
		return nil, err
	}

	return body, nil
}

func (p *UniasProvider) contextWithHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

// parseBody decodes raw as JSON, keeping numbers as json.Number so large
// integer IDs survive. Form-encoded bodies become a map; other non-JSON
// content types fall back to the trimmed text. An empty body parses to nil.
func parseBody(contentType string, raw []byte) (any, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, nil
	}

	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		values, err := url.ParseQuery(trimmed)
		if err != nil {
			return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode form response: %w", err))
		}
		return formFields(values), nil
	}

	v, err := decodeJSON(trimmed)
	if err != nil {
		if strings.Contains(contentType, "json") {
			return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode response: %w", err))
		}
		return trimmed, nil
	}

	return v, nil
}

func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

// formFields maps single-valued keys to strings and repeated keys to []any.
func formFields(values url.Values) map[string]any {
	fields := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			fields[k] = vs[0]
			continue
		}
		list := make([]any, len(vs))
		for i, v := range vs {
			list[i] = v
		}
		fields[k] = list
	}
	return fields
}

func basicCredentials(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}

func identifierString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

var (
	_ Provider = (*UniasProvider)(nil)
	_ Adapter  = (*UniasProvider)(nil)
)
