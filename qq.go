package socialite

import (
	"context"
	"net/url"
	"strings"
)

// QQ implements the QQ Connect flow. The token endpoint answers with a
// query string instead of JSON, and the profile fetch needs an openid
// that must first be resolved through the JSONP-wrapped /me endpoint.
type QQ struct {
	*Engine
	apiBase string
}

// NewQQ creates a QQ provider.
func NewQQ(cfg *Config) (*QQ, error) {
	p := &QQ{apiBase: "https://graph.qq.com"}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"get_user_info"}
	}
	e.tokenFormat = formatQuery
	p.Engine = e
	return p, nil
}

func (*QQ) Name() string           { return "qq" }
func (p *QQ) AuthorizeURL() string { return p.apiBase + "/oauth2.0/authorize" }
func (p *QQ) TokenURL() string     { return p.apiBase + "/oauth2.0/token" }

func (*QQ) TokenFields(e *Engine, code string) url.Values {
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

func (p *QQ) RawUser(ctx context.Context, token string) (map[string]any, error) {
	openID, err := p.openID(ctx, token)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("access_token", token)
	q.Set("openid", openID)
	q.Set("oauth_consumer_key", p.ClientID())

	body, err := p.getJSON(ctx, p.apiBase+"/user/get_user_info", q, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	if intValue(raw["ret"]) != 0 {
		return nil, &AuthorizeError{Reason: "qq api error", Body: body}
	}
	raw["openid"] = openID
	return raw, nil
}

// openID resolves the account identifier for the profile endpoint. The
// /me endpoint answers with a JSONP callback wrapper that has to be
// stripped before decoding.
func (p *QQ) openID(ctx context.Context, token string) (string, error) {
	q := url.Values{}
	q.Set("access_token", token)

	body, err := p.getJSON(ctx, p.apiBase+"/oauth2.0/me", q, nil)
	if err != nil {
		return "", err
	}
	raw, err := decodeJSONMap(stripJSONPCallback(body))
	if err != nil {
		return "", &AuthorizeError{Reason: "invalid openid response", Body: body}
	}
	openID := stringValue(raw["openid"])
	if openID == "" {
		return "", &AuthorizeError{Reason: "no openid in response", Body: body}
	}
	return openID, nil
}

// stripJSONPCallback unwraps `callback( {...} );` payloads, returning
// the body untouched when no wrapper is present.
func stripJSONPCallback(body []byte) []byte {
	s := strings.TrimSpace(string(body))
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if start < 0 || end < start {
		return body
	}
	return []byte(strings.TrimSpace(s[start+1 : end]))
}

func (*QQ) MapUser(raw map[string]any) *User {
	avatar := stringValue(raw["figureurl_qq_2"])
	if avatar == "" {
		avatar = stringValue(raw["figureurl_qq_1"])
	}
	return NewUser(map[string]any{
		"id":       stringValue(raw["openid"]),
		"nickname": stringValue(raw["nickname"]),
		"name":     stringValue(raw["nickname"]),
		"email":    stringValue(raw["email"]),
		"avatar":   avatar,
	})
}
