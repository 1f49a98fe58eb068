// Package socialite is a multi-provider OAuth2 (and OAuth-like) client
// library. For a given third-party identity provider it builds the
// authorization redirect URL, exchanges an authorization code for an
// access token, fetches the provider's profile endpoint, and normalizes
// the heterogeneous response into a uniform User.
//
// Every provider is a parameterization of the same exchange engine: a
// Dialect supplies the endpoints, field-name mappings and (where needed)
// the signing scheme, while the Engine encodes the shared
// authorization-code state machine. Providers with protocol deviations
// (signed gateways, delegated corp/suite tokens, QR flows with no token
// step) override parts of the flow through optional dialect interfaces.
//
// Basic usage:
//
//	reg := socialite.New()
//	p, err := reg.Create("github", socialite.NewConfig(map[string]any{
//	    "client_id":     "...",
//	    "client_secret": "...",
//	    "redirect_url":  "https://example.com/callback/github",
//	}))
//	url, _ := p.Redirect("")
//	// ... user authorizes, provider calls back with ?code= ...
//	user, err := p.UserFromCode(ctx, code)
//
// A provider instance is meant to serve one logical login flow at a
// time: the fluent mutators (WithState, WithScopes, ...) mutate the
// instance. Construct one instance per flow when handling concurrent
// logins.
package socialite
