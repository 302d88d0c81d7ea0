package oauth

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// tokenTransport reroutes the engine's token requests through
// Adapter.BuildTokenRequest. Every other request passes through unchanged.
type tokenTransport struct {
	adapter  Adapter
	tokenURL *url.URL
	base     http.RoundTripper
}

// newTokenClient returns a copy of client (or a default client) whose
// transport shapes token requests for adapter.
func newTokenClient(adapter Adapter, client *http.Client) *http.Client {
	c := &http.Client{}
	if client != nil {
		*c = *client
	}

	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	// An unparsable token URL never matches; the engine reports the failure.
	tokenURL, _ := url.Parse(adapter.TokenURL(nil))

	c.Transport = &tokenTransport{adapter: adapter, tokenURL: tokenURL, base: base}
	return c
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.isTokenRequest(req) {
		return t.base.RoundTrip(req)
	}

	var raw []byte
	if req.Body != nil {
		var err error
		raw, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("oauth: read token request: %w", err)
		}
	}

	params, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("oauth: parse token request: %w", err)
	}

	shaped, err := t.adapter.BuildTokenRequest(req.Context(), params)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		if _, set := shaped.Header[k]; !set {
			shaped.Header[k] = vs
		}
	}

	return t.base.RoundTrip(shaped)
}

func (t *tokenTransport) isTokenRequest(req *http.Request) bool {
	if t.tokenURL == nil || req.Method != http.MethodPost || req.URL == nil {
		return false
	}
	return req.URL.Scheme == t.tokenURL.Scheme &&
		req.URL.Host == t.tokenURL.Host &&
		req.URL.Path == t.tokenURL.Path
}
