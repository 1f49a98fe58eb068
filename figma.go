package socialite

import (
	"context"
	"net/url"
)

// Figma implements the Figma OAuth flow.
type Figma struct {
	*Engine
}

// NewFigma creates a Figma provider with the file_read scope.
func NewFigma(cfg *Config) (*Figma, error) {
	p := &Figma{}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"file_read"}
	}
	p.Engine = e
	return p, nil
}

func (*Figma) Name() string         { return "figma" }
func (*Figma) AuthorizeURL() string { return "https://www.figma.com/oauth" }
func (*Figma) TokenURL() string     { return "https://www.figma.com/api/oauth/token" }

func (*Figma) TokenFields(e *Engine, code string) url.Values {
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

func (p *Figma) RawUser(ctx context.Context, token string) (map[string]any, error) {
	body, err := p.getJSON(ctx, "https://api.figma.com/v1/me", nil, bearer(token))
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	return raw, nil
}

func (*Figma) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["id"]),
		"name":     stringValue(raw["handle"]),
		"nickname": stringValue(raw["handle"]),
		"email":    stringValue(raw["email"]),
		"avatar":   stringValue(raw["img_url"]),
	})
}
