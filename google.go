package socialite

import (
	"context"
	"net/url"
)

// Google implements Google's OAuth 2.0 userinfo flow (plain OAuth, no
// ID-token verification — callers wanting OIDC should verify the
// id_token from the token response themselves).
type Google struct {
	*Engine
}

// NewGoogle creates a Google provider. Scopes default to openid,
// profile and email; Google joins scopes with spaces.
func NewGoogle(cfg *Config) (*Google, error) {
	p := &Google{}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"openid", "profile", "email"}
	}
	e.scopeSeparator = " "
	p.Engine = e
	return p, nil
}

func (*Google) Name() string         { return "google" }
func (*Google) AuthorizeURL() string { return "https://accounts.google.com/o/oauth2/v2/auth" }
func (*Google) TokenURL() string     { return "https://oauth2.googleapis.com/token" }

// TokenFields adds grant_type, which Google requires.
func (*Google) TokenFields(e *Engine, code string) url.Values {
	f := url.Values{}
	f.Set("client_id", e.ClientID())
	f.Set("client_secret", e.ClientSecret())
	f.Set("code", code)
	f.Set("grant_type", "authorization_code")
	if e.RedirectURL() != "" {
		f.Set("redirect_uri", e.RedirectURL())
	}
	return f
}

func (p *Google) RawUser(ctx context.Context, token string) (map[string]any, error) {
	body, err := p.getJSON(ctx, "https://openidconnect.googleapis.com/v1/userinfo", nil, bearer(token))
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	return raw, nil
}

func (*Google) MapUser(raw map[string]any) *User {
	id := stringValue(raw["sub"])
	if id == "" {
		id = stringValue(raw["id"])
	}
	return NewUser(map[string]any{
		"id":     id,
		"name":   stringValue(raw["name"]),
		"email":  stringValue(raw["email"]),
		"avatar": stringValue(raw["picture"]),
	})
}
