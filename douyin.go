package socialite

import (
	"context"
	"net/url"
)

// Douyin implements the ByteDance open-platform flow. The authorize
// request identifies the app with client_key rather than client_id, the
// token response hides inside a "data" envelope, and the profile fetch
// needs the open_id delivered next to the access token.
type Douyin struct {
	*Engine
	name    string
	baseURL string
	openID  string
}

// NewDouyin creates a Douyin provider with the user_info scope.
func NewDouyin(cfg *Config) (*Douyin, error) {
	p := &Douyin{name: "douyin", baseURL: "https://open.douyin.com"}
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

func (p *Douyin) Name() string         { return p.name }
func (p *Douyin) AuthorizeURL() string { return p.baseURL + "/platform/oauth/connect/" }
func (p *Douyin) TokenURL() string     { return p.baseURL + "/oauth/access_token/" }

// WithOpenID sets the open_id for a direct UserFromToken call. The
// composed UserFromCode flow captures it from the token response.
func (p *Douyin) WithOpenID(openID string) *Douyin {
	p.openID = openID
	return p
}

func (p *Douyin) CodeFields(e *Engine) url.Values {
	f := url.Values{}
	f.Set("client_key", e.ClientID())
	if e.RedirectURL() != "" {
		f.Set("redirect_uri", e.RedirectURL())
	}
	f.Set("scope", e.formatScopes())
	f.Set("response_type", "code")
	return f
}

func (*Douyin) TokenFields(e *Engine, code string) url.Values {
	f := url.Values{}
	f.Set("client_key", e.ClientID())
	f.Set("client_secret", e.ClientSecret())
	f.Set("code", code)
	f.Set("grant_type", "authorization_code")
	return f
}

func (p *Douyin) UnwrapTokenResponse(raw map[string]any, body []byte) (map[string]any, error) {
	data := subMap(raw, "data")
	if data == nil {
		return nil, &AuthorizeError{Reason: "no data in token response", Body: body}
	}
	if intValue(data["error_code"]) != 0 {
		return nil, &AuthorizeError{Reason: "douyin token error", Body: body}
	}
	p.openID = stringValue(data["open_id"])
	return data, nil
}

func (p *Douyin) RawUser(ctx context.Context, token string) (map[string]any, error) {
	if p.openID == "" {
		return nil, invalidArgf("%s: open_id not set; call WithOpenID or use UserFromCode", p.Name())
	}

	q := url.Values{}
	q.Set("access_token", token)
	q.Set("open_id", p.openID)

	body, err := p.getJSON(ctx, p.baseURL+"/oauth/userinfo/", q, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	data := subMap(raw, "data")
	if data == nil {
		return nil, &AuthorizeError{Reason: "no data in user response", Body: body}
	}
	if intValue(data["error_code"]) != 0 {
		return nil, &AuthorizeError{Reason: "douyin api error", Body: body}
	}
	return data, nil
}

func (*Douyin) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["open_id"]),
		"nickname": stringValue(raw["nickname"]),
		"name":     stringValue(raw["nickname"]),
		"avatar":   stringValue(raw["avatar"]),
	})
}
