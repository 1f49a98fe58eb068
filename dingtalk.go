package socialite

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// DingTalk implements the DingTalk QR-code login. The authorization
// code is posted straight to the sns endpoint, authenticated by an
// HMAC-SHA256 signature of the request timestamp, so there is no
// user-level token step.
type DingTalk struct {
	*Engine
	apiBase string
	// now is stubbed in tests to pin the signed timestamp.
	now func() time.Time
}

// NewDingTalk creates a DingTalk provider.
func NewDingTalk(cfg *Config) (*DingTalk, error) {
	p := &DingTalk{apiBase: "https://oapi.dingtalk.com", now: time.Now}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"snsapi_login"}
	}
	p.Engine = e
	return p, nil
}

func (*DingTalk) Name() string           { return "dingtalk" }
func (p *DingTalk) AuthorizeURL() string { return p.apiBase + "/connect/qrconnect" }
func (*DingTalk) TokenURL() string       { return "" }

func (p *DingTalk) CodeFields(e *Engine) url.Values {
	f := url.Values{}
	f.Set("appid", e.ClientID())
	if e.RedirectURL() != "" {
		f.Set("redirect_uri", e.RedirectURL())
	}
	f.Set("response_type", "code")
	f.Set("scope", e.formatScopes())
	return f
}

// TokenFromCode is not part of this dialect; the code is consumed by
// the signed sns endpoint.
func (p *DingTalk) TokenFromCode(ctx context.Context, code string) (*Token, error) {
	return nil, notSupportedf("dingtalk: no user token exchange; use UserFromCode")
}

// UserFromToken is not part of this dialect.
func (p *DingTalk) UserFromToken(ctx context.Context, token string) (*User, error) {
	return nil, notSupportedf("dingtalk: no user token lookup; use UserFromCode")
}

func (p *DingTalk) RawUser(ctx context.Context, token string) (map[string]any, error) {
	return nil, notSupportedf("dingtalk: no user token lookup; use UserFromCode")
}

// ExchangeCodeForUser posts the temporary auth code to the signed
// endpoint. The signature is base64(HMAC-SHA256(timestamp, secret))
// over the millisecond timestamp also sent in the query.
func (p *DingTalk) ExchangeCodeForUser(ctx context.Context, e *Engine, code string) (*User, error) {
	ts := strconv.FormatInt(p.now().UnixMilli(), 10)

	q := url.Values{}
	q.Set("accessKey", e.ClientID())
	q.Set("timestamp", ts)
	q.Set("signature", signHMACSHA256(ts, e.ClientSecret()))

	u := p.apiBase + "/sns/getuserinfo_bycode?" + q.Encode()
	body, err := e.postJSON(ctx, u, map[string]string{"tmp_auth_code": code}, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	if intValue(raw["errcode"]) != 0 {
		return nil, &AuthorizeError{Reason: "dingtalk api error", Body: body}
	}
	info := subMap(raw, "user_info")
	if info == nil {
		return nil, &AuthorizeError{Reason: "no user_info in response", Body: body}
	}
	return p.MapUser(info).SetRaw(info), nil
}

func (*DingTalk) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["openid"]),
		"unionid":  stringValue(raw["unionid"]),
		"nickname": stringValue(raw["nick"]),
		"name":     stringValue(raw["nick"]),
	})
}
