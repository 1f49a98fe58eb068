package socialite

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// QCloud implements the Tencent Cloud account login. API calls carry
// Action/Timestamp/Nonce parameters and a base64 HMAC-SHA256 signature
// over the sorted query; responses nest their payload under "Response"
// with errors under "Response.Error". Token fields come back in
// CamelCase, so the engine is pointed at the provider's key names.
type QCloud struct {
	*Engine
	apiBase string
	// now is stubbed in tests to pin the signed timestamp.
	now func() time.Time
	// nonce is stubbed in tests for a deterministic signature.
	nonce func() string
}

// NewQCloud creates a QCloud provider.
func NewQCloud(cfg *Config) (*QCloud, error) {
	p := &QCloud{
		apiBase: "https://open.tencentcloudapi.com",
		now:     time.Now,
		nonce:   func() string { return uuid.NewString() },
	}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"login"}
	}
	e.accessTokenKey = "UserAccessToken"
	e.refreshTokenKey = "UserRefreshToken"
	e.expiresInKey = "ExpiresIn"
	p.Engine = e
	return p, nil
}

func (*QCloud) Name() string         { return "qcloud" }
func (*QCloud) AuthorizeURL() string { return "https://cloud.tencent.com/open/authorize" }
func (p *QCloud) TokenURL() string   { return p.apiBase }

func (p *QCloud) CodeFields(e *Engine) url.Values {
	f := url.Values{}
	f.Set("app_id", e.ClientID())
	if e.RedirectURL() != "" {
		f.Set("redirect_url", e.RedirectURL())
	}
	f.Set("scope", e.formatScopes())
	return f
}

// signedQuery completes the common API parameters and signs the sorted
// query with the client secret.
func (p *QCloud) signedQuery(action string, params map[string]string) url.Values {
	params["Action"] = action
	params["SecretId"] = p.ClientID()
	params["Timestamp"] = strconv.FormatInt(p.now().Unix(), 10)
	params["Nonce"] = p.nonce()
	params["Signature"] = signHMACSHA256(canonicalQuery(params, "Signature"), p.ClientSecret())

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return q
}

// RequestToken calls GetUserAccessToken with the authorization code.
func (p *QCloud) RequestToken(ctx context.Context, e *Engine, code string) ([]byte, error) {
	q := p.signedQuery("GetUserAccessToken", map[string]string{
		"UserAuthCode": code,
	})
	return e.getJSON(ctx, p.apiBase, q, nil)
}

func (p *QCloud) UnwrapTokenResponse(raw map[string]any, body []byte) (map[string]any, error) {
	data, err := p.unwrapResponse(raw, body)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (p *QCloud) RawUser(ctx context.Context, token string) (map[string]any, error) {
	q := p.signedQuery("GetUserBaseInfo", map[string]string{
		"UserAccessToken": token,
	})
	body, err := p.getJSON(ctx, p.apiBase, q, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	return p.unwrapResponse(raw, body)
}

func (p *QCloud) unwrapResponse(raw map[string]any, body []byte) (map[string]any, error) {
	data := subMap(raw, "Response")
	if data == nil {
		return nil, &AuthorizeError{Reason: "no Response payload", Body: body}
	}
	if apiErr := subMap(data, "Error"); apiErr != nil {
		return nil, &AuthorizeError{
			Reason: "qcloud api error " + stringValue(apiErr["Code"]),
			Body:   body,
		}
	}
	return data, nil
}

func (*QCloud) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["UserUin"]),
		"nickname": stringValue(raw["Nickname"]),
		"name":     stringValue(raw["Nickname"]),
	})
}
