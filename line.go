package socialite

import (
	"context"
	"net/url"
)

// Line implements LINE Login v2.1.
type Line struct {
	*Engine
}

// NewLine creates a LINE provider with the profile scope.
func NewLine(cfg *Config) (*Line, error) {
	p := &Line{}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"profile"}
	}
	e.scopeSeparator = " "
	p.Engine = e
	return p, nil
}

func (*Line) Name() string         { return "line" }
func (*Line) AuthorizeURL() string { return "https://access.line.me/oauth2/v2.1/authorize" }
func (*Line) TokenURL() string     { return "https://api.line.me/oauth2/v2.1/token" }

func (*Line) TokenFields(e *Engine, code string) url.Values {
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

func (p *Line) RawUser(ctx context.Context, token string) (map[string]any, error) {
	body, err := p.getJSON(ctx, "https://api.line.me/v2/profile", nil, bearer(token))
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	return raw, nil
}

func (*Line) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["userId"]),
		"name":     stringValue(raw["displayName"]),
		"nickname": stringValue(raw["displayName"]),
		"avatar":   stringValue(raw["pictureUrl"]),
	})
}
