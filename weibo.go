package socialite

import (
	"context"
	"net/url"
)

// Weibo implements OAuth 2.0 against api.weibo.com. The profile
// endpoint is keyed by uid, which must first be resolved from the
// access token.
type Weibo struct {
	*Engine
	apiBase string
}

// NewWeibo creates a Weibo provider.
func NewWeibo(cfg *Config) (*Weibo, error) {
	p := &Weibo{apiBase: "https://api.weibo.com"}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	p.Engine = e
	return p, nil
}

func (*Weibo) Name() string           { return "weibo" }
func (p *Weibo) AuthorizeURL() string { return p.apiBase + "/oauth2/authorize" }
func (p *Weibo) TokenURL() string     { return p.apiBase + "/oauth2/access_token" }

func (*Weibo) TokenFields(e *Engine, code string) url.Values {
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

func (p *Weibo) RawUser(ctx context.Context, token string) (map[string]any, error) {
	uid, err := p.uid(ctx, token)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("access_token", token)
	q.Set("uid", uid)

	body, err := p.getJSON(ctx, p.apiBase+"/2/users/show.json", q, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	if _, failed := raw["error_code"]; failed {
		return nil, &AuthorizeError{Reason: "weibo api error", Body: body}
	}
	return raw, nil
}

// uid resolves the numeric account id the profile endpoint requires.
func (p *Weibo) uid(ctx context.Context, token string) (string, error) {
	q := url.Values{}
	q.Set("access_token", token)

	body, err := p.getJSON(ctx, p.apiBase+"/2/account/get_uid.json", q, nil)
	if err != nil {
		return "", err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return "", &AuthorizeError{Reason: "invalid uid response", Body: body}
	}
	uid := stringValue(raw["uid"])
	if uid == "" {
		return "", &AuthorizeError{Reason: "no uid in response", Body: body}
	}
	return uid, nil
}

func (*Weibo) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["id"]),
		"nickname": stringValue(raw["screen_name"]),
		"name":     stringValue(raw["name"]),
		"email":    stringValue(raw["email"]),
		"avatar":   stringValue(raw["avatar_large"]),
	})
}
