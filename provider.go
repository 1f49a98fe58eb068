package socialite

import (
	"context"
	"net/url"
)

// Provider is the caller-facing surface of one identity provider.
// Implementations are an Engine parameterized by a Dialect; the fluent
// mutators live on the Engine and take effect on the next call.
type Provider interface {
	// Name returns the provider identifier ("github", "wechat", ...).
	Name() string

	// Redirect returns the fully formed authorization URL. A non-empty
	// redirectTo replaces the configured redirect URL for this and
	// subsequent calls. Pure URL construction, no network.
	Redirect(redirectTo string) (string, error)

	// TokenFromCode exchanges an authorization code for a normalized
	// token response.
	TokenFromCode(ctx context.Context, code string) (*Token, error)

	// UserFromToken fetches and maps the profile for an access token.
	UserFromToken(ctx context.Context, token string) (*User, error)

	// UserFromCode composes TokenFromCode and UserFromToken and
	// attaches refresh token and expiry onto the resulting User.
	UserFromCode(ctx context.Context, code string) (*User, error)
}

// Dialect describes one provider's wire protocol: endpoints, profile
// fetch and field mapping. The Engine drives the shared
// authorization-code state machine through it.
type Dialect interface {
	Name() string

	// AuthorizeURL is the base authorization endpoint.
	AuthorizeURL() string

	// TokenURL is the token endpoint. Dialects that override the whole
	// token request (signed gateways, QR flows) may return "".
	TokenURL() string

	// RawUser fetches the provider's profile endpoint with the token
	// and returns the decoded payload.
	RawUser(ctx context.Context, token string) (map[string]any, error)

	// MapUser maps the raw profile payload onto the common schema.
	MapUser(raw map[string]any) *User
}

// Optional dialect upgrades, detected by type assertion. Each one
// replaces a single seam of the shared flow; codeUserExchanger replaces
// the whole composite operation for flows with no token step.

type codeFielder interface {
	// CodeFields returns the authorization query parameters. The engine
	// still appends state when one was set and the dialect left it out.
	CodeFields(e *Engine) url.Values
}

type tokenFielder interface {
	// TokenFields returns the token-exchange request fields.
	TokenFields(e *Engine, code string) url.Values
}

type tokenRequester interface {
	// RequestToken performs the raw token-endpoint call and returns the
	// response body. Used by dialects that deviate from a form POST
	// (GET exchanges, signed gateway calls, Basic auth).
	RequestToken(ctx context.Context, e *Engine, code string) ([]byte, error)
}

type tokenUnwrapper interface {
	// UnwrapTokenResponse peels a provider envelope ({"data": {...}}
	// and the like) off the decoded token response before the shared
	// normalizer runs. It should return an *AuthorizeError when the
	// envelope itself signals failure.
	UnwrapTokenResponse(raw map[string]any, body []byte) (map[string]any, error)
}

type codeUserExchanger interface {
	// ExchangeCodeForUser replaces the composite UserFromCode flow
	// entirely (delegated-token chains, QR flows with no token step).
	ExchangeCodeForUser(ctx context.Context, e *Engine, code string) (*User, error)
}
