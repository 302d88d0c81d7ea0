package oauth

import "strings"

// Option names accepted by NewUniasProviderFromOptions.
const (
	OptionAPIBaseURI   = "apiBaseUri"
	OptionAuthorizeURI = "authorizeUri"
	OptionTokenURI     = "tokenUri"
	OptionClientID     = "clientId"
	OptionClientSecret = "clientSecret"
	OptionRedirectURI  = "redirectUri"
)

// requiredOptions is both the whitelist and the required set.
var requiredOptions = [...]string{
	OptionAPIBaseURI,
	OptionAuthorizeURI,
	OptionTokenURI,
	OptionClientID,
	OptionClientSecret,
	OptionRedirectURI,
}

var urlOptions = [...]string{OptionAPIBaseURI, OptionTokenURI, OptionAuthorizeURI}

// UniasConfig holds Unias OAuth configuration.
type UniasConfig struct {
	APIBaseURI   string `env:"UNIAS_API_BASE_URI,required"`
	AuthorizeURI string `env:"UNIAS_AUTHORIZE_URI,required"`
	TokenURI     string `env:"UNIAS_TOKEN_URI,required"`
	ClientID     string `env:"UNIAS_CLIENT_ID,required"`
	ClientSecret string `env:"UNIAS_CLIENT_SECRET,required"`
	RedirectURI  string `env:"UNIAS_REDIRECT_URI,required"`
}

// Options returns the configuration as a named option map.
func (c UniasConfig) Options() map[string]string {
	return map[string]string{
		OptionAPIBaseURI:   c.APIBaseURI,
		OptionAuthorizeURI: c.AuthorizeURI,
		OptionTokenURI:     c.TokenURI,
		OptionClientID:     c.ClientID,
		OptionClientSecret: c.ClientSecret,
		OptionRedirectURI:  c.RedirectURI,
	}
}

// RequiredOptions returns the option names a Unias provider must be given.
func RequiredOptions() []string {
	return append([]string(nil), requiredOptions[:]...)
}

// filterOptions drops unrecognized keys, trims trailing slashes from URL
// options and reports every required option that ends up empty.
func filterOptions(options map[string]string) (UniasConfig, error) {
	filtered := make(map[string]string, len(requiredOptions))
	for _, key := range requiredOptions {
		if v, ok := options[key]; ok {
			filtered[key] = v
		}
	}

	for _, key := range urlOptions {
		filtered[key] = strings.TrimRight(filtered[key], "/")
	}

	var missing []string
	for _, key := range requiredOptions {
		if filtered[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return UniasConfig{}, &ConfigurationError{Missing: missing}
	}

	return UniasConfig{
		APIBaseURI:   filtered[OptionAPIBaseURI],
		AuthorizeURI: filtered[OptionAuthorizeURI],
		TokenURI:     filtered[OptionTokenURI],
		ClientID:     filtered[OptionClientID],
		ClientSecret: filtered[OptionClientSecret],
		RedirectURI:  filtered[OptionRedirectURI],
	}, nil
}
