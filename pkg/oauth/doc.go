// Package oauth provides the Unias OAuth2 provider adapter.
//
// The authorization code flow itself (state injection, token exchange,
// token refresh, bearer transport) is run by golang.org/x/oauth2. This
// package supplies what the engine cannot know about Unias: its endpoints,
// the shape of the token request, how provider errors look, and how the
// account info response maps to an identity.
//
// # Usage
//
//	provider, err := oauth.NewUniasProvider(oauth.UniasConfig{
//		APIBaseURI:   "https://api.unias.example",
//		AuthorizeURI: "https://auth.unias.example/authorize",
//		TokenURI:     "https://auth.unias.example/token",
//		ClientID:     os.Getenv("UNIAS_CLIENT_ID"),
//		ClientSecret: os.Getenv("UNIAS_CLIENT_SECRET"),
//		RedirectURI:  "https://example.com/auth/unias/callback",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Redirect the user
//	url := provider.AuthCodeURL(state)
//
//	// Exchange code for token (in callback handler)
//	token, err := provider.Exchange(ctx, code, "")
//
//	// Fetch the account info
//	identity, err := provider.FetchResourceOwner(ctx, token)
//	sub := identity.ID()
//
// The same provider can be built from named options, as they appear in
// configuration files. Unknown keys are ignored:
//
//	provider, err := oauth.NewUniasProviderFromOptions(map[string]string{
//		"apiBaseUri":   "https://api.unias.example/",
//		"authorizeUri": "https://auth.unias.example/authorize",
//		...
//	})
//
// # Token Requests
//
// Unias requires HTTP Basic client authentication at the token endpoint and
// rejects client_id/client_secret in the form. The engine is configured with
// oauth2.AuthStyleInParams and its HTTP client is wrapped by a transport that
// passes every token request through BuildTokenRequest, which strips the
// credentials from the form and sets the Authorization header.
//
// # Identities
//
// Identity is an immutable view over the parsed response. All returns every
// field, Get returns one field or a KeyNotFoundError. FetchIdentity accepts
// endpoints that answer with a bare value instead of an object and stores
// that value under the requested identifier field.
//
// # Testing
//
// Use WithHTTPClient to inject a test server client:
//
//	provider, err := oauth.NewUniasProvider(cfg, oauth.WithHTTPClient(ts.Client()))
//
// # Error Handling
//
//   - ConfigurationError (errors.Is ErrInvalidConfig): required options missing or empty
//   - IdentityProviderError (errors.Is ErrRequestFailed): provider answered with status >= 400
//   - KeyNotFoundError (errors.Is ErrKeyNotFound): Identity.Get on an absent key
//   - ErrFetchFailed, ErrNilResponse, ErrDecodeFailed: transport and decoding failures
//
// Errors are never retried or suppressed by this package.
package oauth
