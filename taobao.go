package socialite

import (
	"context"
	"net/url"
	"time"
)

// Taobao implements the Taobao open-platform login. The profile call
// goes through the TOP REST router and is signed with the MD5 scheme:
// uppercase hex MD5 of secret + sorted key/value concatenation + secret.
type Taobao struct {
	*Engine
	authBase string
	restBase string
	view     string
	// now is stubbed in tests to pin the signed timestamp.
	now func() time.Time
}

// NewTaobao creates a Taobao provider. The "view" config key selects
// the authorization page flavor (default web).
func NewTaobao(cfg *Config) (*Taobao, error) {
	p := &Taobao{
		authBase: "https://oauth.taobao.com",
		restBase: "https://eco.taobao.com/router/rest",
		view:     "web",
		now:      time.Now,
	}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if v := cfg.GetString("view"); v != "" {
		p.view = v
	}
	p.Engine = e
	return p, nil
}

func (*Taobao) Name() string           { return "taobao" }
func (p *Taobao) AuthorizeURL() string { return p.authBase + "/authorize" }
func (p *Taobao) TokenURL() string     { return p.authBase + "/token" }

func (p *Taobao) CodeFields(e *Engine) url.Values {
	f := url.Values{}
	f.Set("client_id", e.ClientID())
	if e.RedirectURL() != "" {
		f.Set("redirect_uri", e.RedirectURL())
	}
	f.Set("response_type", "code")
	f.Set("view", p.view)
	return f
}

func (p *Taobao) TokenFields(e *Engine, code string) url.Values {
	f := url.Values{}
	f.Set("client_id", e.ClientID())
	f.Set("client_secret", e.ClientSecret())
	f.Set("code", code)
	f.Set("grant_type", "authorization_code")
	f.Set("view", p.view)
	if e.RedirectURL() != "" {
		f.Set("redirect_uri", e.RedirectURL())
	}
	return f
}

func (p *Taobao) RawUser(ctx context.Context, token string) (map[string]any, error) {
	params := map[string]string{
		"app_key":     p.ClientID(),
		"sign_method": "md5",
		"session":     token,
		"timestamp":   p.now().Format("2006-01-02 15:04:05"),
		"v":           "2.0",
		"format":      "json",
		"method":      "taobao.miscuser.userprofile.get",
	}
	params["sign"] = signMD5Upper(p.ClientSecret() + canonicalConcat(params) + p.ClientSecret())

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}

	body, err := p.getJSON(ctx, p.restBase, q, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	if sub := subMap(raw, "error_response"); sub != nil {
		return nil, &AuthorizeError{Reason: "taobao router error", Body: body}
	}
	data := subMap(raw, "miscuser_userprofile_get_response")
	if data == nil {
		return nil, &AuthorizeError{Reason: "no user payload in response", Body: body}
	}
	if profile := subMap(data, "user_profile"); profile != nil {
		return profile, nil
	}
	return data, nil
}

func (*Taobao) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["open_sid"]),
		"nickname": stringValue(raw["nick"]),
		"name":     stringValue(raw["nick"]),
		"avatar":   stringValue(raw["avatar"]),
	})
}
