package socialite

import (
	"context"
	"net/url"
)

// WeChat implements the WeChat open-platform web login. The wire
// dialect names the app with appid/secret, the token exchange is a GET,
// and the profile fetch needs the openid the token response carried.
//
// When the "component" config section is present the provider operates
// in open-platform delegation mode: the authorize request advertises
// the component app and the code exchange runs against the component
// token endpoint with the component's access token instead of the app
// secret.
type WeChat struct {
	*Engine
	apiBase string
	openID  string

	componentID    string
	componentToken string
}

// NewWeChat creates a WeChat provider with the snsapi_login scope.
// Component mode reads "component.id" and "component.token".
func NewWeChat(cfg *Config) (*WeChat, error) {
	p := &WeChat{apiBase: "https://api.weixin.qq.com/sns"}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"snsapi_login"}
	}
	p.componentID = cfg.GetString("component.id")
	p.componentToken = cfg.GetString("component.token")
	if p.componentID != "" && p.componentToken == "" {
		return nil, invalidArgf("wechat: component.id set without component.token")
	}
	p.Engine = e
	return p, nil
}

func (*WeChat) Name() string         { return "wechat" }
func (*WeChat) AuthorizeURL() string { return "https://open.weixin.qq.com/connect/qrconnect" }

func (p *WeChat) TokenURL() string {
	if p.componentID != "" {
		return p.apiBase + "/oauth2/component/access_token"
	}
	return p.apiBase + "/oauth2/access_token"
}

// WithOpenID sets the openid for a direct UserFromToken call. The
// composed UserFromCode flow captures it from the token response.
func (p *WeChat) WithOpenID(openID string) *WeChat {
	p.openID = openID
	return p
}

func (p *WeChat) CodeFields(e *Engine) url.Values {
	f := url.Values{}
	f.Set("appid", e.ClientID())
	if e.RedirectURL() != "" {
		f.Set("redirect_uri", e.RedirectURL())
	}
	f.Set("response_type", "code")
	f.Set("scope", e.formatScopes())
	if p.componentID != "" {
		f.Set("component_appid", p.componentID)
	}
	return f
}

// RequestToken runs the exchange as a GET, the way this API expects.
func (p *WeChat) RequestToken(ctx context.Context, e *Engine, code string) ([]byte, error) {
	q := url.Values{}
	q.Set("appid", e.ClientID())
	q.Set("code", code)
	if p.componentID != "" {
		q.Set("component_appid", p.componentID)
		q.Set("component_access_token", p.componentToken)
		q.Set("grant_type", "authorization_code")
	} else {
		q.Set("secret", e.ClientSecret())
		q.Set("grant_type", "authorization_code")
	}
	return e.getJSON(ctx, p.TokenURL(), q, nil)
}

func (p *WeChat) UnwrapTokenResponse(raw map[string]any, body []byte) (map[string]any, error) {
	if intValue(raw["errcode"]) != 0 {
		return nil, &AuthorizeError{Reason: "wechat token error", Body: body}
	}
	if openID := stringValue(raw["openid"]); openID != "" {
		p.openID = openID
	}
	return raw, nil
}

func (p *WeChat) RawUser(ctx context.Context, token string) (map[string]any, error) {
	if p.openID == "" {
		return nil, invalidArgf("wechat: openid not set; call WithOpenID or use UserFromCode")
	}

	q := url.Values{}
	q.Set("access_token", token)
	q.Set("openid", p.openID)
	q.Set("lang", "zh_CN")

	body, err := p.getJSON(ctx, p.apiBase+"/userinfo", q, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	if intValue(raw["errcode"]) != 0 {
		return nil, &AuthorizeError{Reason: "wechat api error", Body: body}
	}
	return raw, nil
}

func (*WeChat) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["openid"]),
		"nickname": stringValue(raw["nickname"]),
		"name":     stringValue(raw["nickname"]),
		"avatar":   stringValue(raw["headimgurl"]),
	})
}
