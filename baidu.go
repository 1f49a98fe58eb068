package socialite

import (
	"context"
	"net/url"
)

// Baidu implements OAuth 2.0 against openapi.baidu.com. The avatar is a
// portrait identifier that must be turned into a static-content URL.
type Baidu struct {
	*Engine
	display string
}

// NewBaidu creates a Baidu provider. The "display" config key controls
// the authorization page style (default popup).
func NewBaidu(cfg *Config) (*Baidu, error) {
	p := &Baidu{display: "popup"}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if v := cfg.GetString("display"); v != "" {
		p.display = v
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"basic"}
	}
	p.Engine = e
	return p, nil
}

func (*Baidu) Name() string         { return "baidu" }
func (*Baidu) AuthorizeURL() string { return "https://openapi.baidu.com/oauth/2.0/authorize" }
func (*Baidu) TokenURL() string     { return "https://openapi.baidu.com/oauth/2.0/token" }

func (p *Baidu) CodeFields(e *Engine) url.Values {
	f := url.Values{}
	f.Set("client_id", e.ClientID())
	if e.RedirectURL() != "" {
		f.Set("redirect_uri", e.RedirectURL())
	}
	f.Set("scope", e.formatScopes())
	f.Set("response_type", "code")
	f.Set("display", p.display)
	return f
}

func (*Baidu) TokenFields(e *Engine, code string) url.Values {
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

func (p *Baidu) RawUser(ctx context.Context, token string) (map[string]any, error) {
	q := url.Values{}
	q.Set("access_token", token)

	body, err := p.getJSON(ctx, "https://openapi.baidu.com/rest/2.0/passport/users/getInfo", q, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	if _, failed := raw["error_code"]; failed {
		return nil, &AuthorizeError{Reason: "baidu api error", Body: body}
	}
	return raw, nil
}

func (*Baidu) MapUser(raw map[string]any) *User {
	nickname := stringValue(raw["realname"])
	if nickname == "" {
		nickname = stringValue(raw["username"])
	}

	avatar := ""
	if portrait := stringValue(raw["portrait"]); portrait != "" {
		avatar = "https://tb.himg.baidu.com/sys/portrait/item/" + portrait
	}

	return NewUser(map[string]any{
		"id":       stringValue(raw["userid"]),
		"nickname": nickname,
		"name":     stringValue(raw["username"]),
		"avatar":   avatar,
	})
}
