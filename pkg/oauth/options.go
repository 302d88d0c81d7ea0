package oauth

import "net/http"

// Option configures an OAuth provider.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient sets a custom HTTP client for OAuth requests.
// The client's transport is wrapped, never replaced, so test servers
// and custom round trippers keep working.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}
