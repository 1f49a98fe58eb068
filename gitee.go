package socialite

import (
	"context"
	"net/url"
)

// Gitee implements OAuth 2.0 against gitee.com.
type Gitee struct {
	*Engine
}

// NewGitee creates a Gitee provider with the user_info scope.
func NewGitee(cfg *Config) (*Gitee, error) {
	p := &Gitee{}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"user_info"}
	}
	p.Engine = e
	return p, nil
}

func (*Gitee) Name() string         { return "gitee" }
func (*Gitee) AuthorizeURL() string { return "https://gitee.com/oauth/authorize" }
func (*Gitee) TokenURL() string     { return "https://gitee.com/oauth/token" }

func (*Gitee) TokenFields(e *Engine, code string) url.Values {
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

func (p *Gitee) RawUser(ctx context.Context, token string) (map[string]any, error) {
	q := url.Values{}
	q.Set("access_token", token)

	body, err := p.getJSON(ctx, "https://gitee.com/api/v5/user", q, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	return raw, nil
}

func (*Gitee) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["id"]),
		"nickname": stringValue(raw["login"]),
		"name":     stringValue(raw["name"]),
		"email":    stringValue(raw["email"]),
		"avatar":   stringValue(raw["avatar_url"]),
	})
}
