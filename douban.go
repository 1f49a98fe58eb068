package socialite

import (
	"context"
	"net/url"
)

// Douban implements OAuth 2.0 against douban.com.
type Douban struct {
	*Engine
}

// NewDouban creates a Douban provider.
func NewDouban(cfg *Config) (*Douban, error) {
	p := &Douban{}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	p.Engine = e
	return p, nil
}

func (*Douban) Name() string         { return "douban" }
func (*Douban) AuthorizeURL() string { return "https://www.douban.com/service/auth2/auth" }
func (*Douban) TokenURL() string     { return "https://www.douban.com/service/auth2/token" }

func (*Douban) TokenFields(e *Engine, code string) url.Values {
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

func (p *Douban) RawUser(ctx context.Context, token string) (map[string]any, error) {
	body, err := p.getJSON(ctx, "https://api.douban.com/v2/user/~me", nil, bearer(token))
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	return raw, nil
}

func (*Douban) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["id"]),
		"nickname": stringValue(raw["name"]),
		"name":     stringValue(raw["name"]),
		"avatar":   stringValue(raw["large_avatar"]),
	})
}
