package socialite

import (
	"context"
	"crypto/rsa"
	"net/url"
	"time"
)

// Alipay implements the Alipay open-platform login. Both exchanges are
// method calls against a single gateway, authenticated by an RSA2
// (SHA256-with-RSA) signature over the sorted request parameters; each
// response nests its payload under "<method>_response" with dots
// mapped to underscores.
type Alipay struct {
	*Engine
	gateway string
	key     *rsa.PrivateKey
	// now is stubbed in tests to pin the signed timestamp.
	now func() time.Time
}

// NewAlipay creates an Alipay provider. The "rsa_private_key" config
// key is required and parsed at construction.
func NewAlipay(cfg *Config) (*Alipay, error) {
	p := &Alipay{gateway: "https://openapi.alipay.com/gateway.do", now: time.Now}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	pemKey := cfg.GetString("rsa_private_key")
	if pemKey == "" {
		return nil, invalidArgf("alipay: missing rsa_private_key")
	}
	key, err := parseRSAPrivateKey(pemKey)
	if err != nil {
		return nil, invalidArgf("alipay: bad rsa_private_key: %v", err)
	}
	p.key = key
	if len(e.scopes) == 0 {
		e.scopes = []string{"auth_user"}
	}
	p.Engine = e
	return p, nil
}

func (*Alipay) Name() string { return "alipay" }
func (*Alipay) AuthorizeURL() string {
	return "https://openauth.alipay.com/oauth2/publicAppAuthorize.htm"
}
func (p *Alipay) TokenURL() string { return p.gateway }

func (p *Alipay) CodeFields(e *Engine) url.Values {
	f := url.Values{}
	f.Set("app_id", e.ClientID())
	if e.RedirectURL() != "" {
		f.Set("redirect_uri", e.RedirectURL())
	}
	f.Set("scope", e.formatScopes())
	return f
}

// publicParams builds the gateway parameters common to every method
// call, prior to signing.
func (p *Alipay) publicParams(method string) map[string]string {
	return map[string]string{
		"app_id":    p.ClientID(),
		"method":    method,
		"format":    "JSON",
		"charset":   "UTF-8",
		"sign_type": "RSA2",
		"timestamp": p.now().Format("2006-01-02 15:04:05"),
		"version":   "1.0",
	}
}

func (p *Alipay) signedForm(params map[string]string) (url.Values, error) {
	sig, err := signRSA256(canonicalQuery(params), p.key)
	if err != nil {
		return nil, err
	}
	f := url.Values{}
	for k, v := range params {
		f.Set(k, v)
	}
	f.Set("sign", sig)
	return f, nil
}

// RequestToken calls alipay.system.oauth.token on the gateway.
func (p *Alipay) RequestToken(ctx context.Context, e *Engine, code string) ([]byte, error) {
	params := p.publicParams("alipay.system.oauth.token")
	params["grant_type"] = "authorization_code"
	params["code"] = code

	form, err := p.signedForm(params)
	if err != nil {
		return nil, err
	}
	return e.postForm(ctx, p.gateway, form, nil)
}

func (p *Alipay) UnwrapTokenResponse(raw map[string]any, body []byte) (map[string]any, error) {
	if sub := subMap(raw, "error_response"); sub != nil {
		return nil, &AuthorizeError{Reason: "alipay gateway error", Body: body}
	}
	data := subMap(raw, "alipay_system_oauth_token_response")
	if data == nil {
		return nil, &AuthorizeError{Reason: "no token payload in response", Body: body}
	}
	return data, nil
}

// RawUser calls alipay.user.info.share with the auth token.
func (p *Alipay) RawUser(ctx context.Context, token string) (map[string]any, error) {
	params := p.publicParams("alipay.user.info.share")
	params["auth_token"] = token

	form, err := p.signedForm(params)
	if err != nil {
		return nil, err
	}
	body, err := p.postForm(ctx, p.gateway, form, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	if sub := subMap(raw, "error_response"); sub != nil {
		return nil, &AuthorizeError{Reason: "alipay gateway error", Body: body}
	}
	data := subMap(raw, "alipay_user_info_share_response")
	if data == nil {
		return nil, &AuthorizeError{Reason: "no user payload in response", Body: body}
	}
	if code := stringValue(data["code"]); code != "" && code != "10000" {
		return nil, &AuthorizeError{Reason: "alipay api error " + code, Body: body}
	}
	return data, nil
}

func (*Alipay) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["user_id"]),
		"nickname": stringValue(raw["nick_name"]),
		"name":     stringValue(raw["nick_name"]),
		"avatar":   stringValue(raw["avatar"]),
	})
}
