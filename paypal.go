package socialite

import (
	"context"
	"encoding/base64"
	"net/url"
)

// PayPal implements Log in with PayPal. The token exchange
// authenticates with HTTP Basic (client id/secret) instead of body
// credentials.
type PayPal struct {
	*Engine
	apiBase string
}

// NewPayPal creates a PayPal provider. Set config "sandbox" to true to
// target the sandbox environment.
func NewPayPal(cfg *Config) (*PayPal, error) {
	p := &PayPal{apiBase: "https://api.paypal.com"}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.GetBool("sandbox") {
		p.apiBase = "https://api.sandbox.paypal.com"
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"openid", "profile", "email"}
	}
	e.scopeSeparator = " "
	p.Engine = e
	return p, nil
}

func (*PayPal) Name() string         { return "paypal" }
func (*PayPal) AuthorizeURL() string { return "https://www.paypal.com/connect" }
func (p *PayPal) TokenURL() string   { return p.apiBase + "/v1/oauth2/token" }

// RequestToken posts the code with Basic auth, PayPal's convention.
func (p *PayPal) RequestToken(ctx context.Context, e *Engine, code string) ([]byte, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)

	basic := base64.StdEncoding.EncodeToString([]byte(e.ClientID() + ":" + e.ClientSecret()))
	return e.postForm(ctx, p.TokenURL(), form, map[string]string{
		"Authorization": "Basic " + basic,
		"Accept":        "application/json",
	})
}

func (p *PayPal) RawUser(ctx context.Context, token string) (map[string]any, error) {
	q := url.Values{}
	q.Set("schema", "paypalv1.1")

	body, err := p.getJSON(ctx, p.apiBase+"/v1/identity/oauth2/userinfo", q, bearer(token))
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	return raw, nil
}

func (*PayPal) MapUser(raw map[string]any) *User {
	email := stringValue(raw["email"])
	if email == "" {
		if emails, ok := raw["emails"].([]any); ok {
			for _, el := range emails {
				m, _ := el.(map[string]any)
				if v := stringValue(m["value"]); v != "" {
					email = v
					break
				}
			}
		}
	}
	return NewUser(map[string]any{
		"id":     stringValue(raw["user_id"]),
		"name":   stringValue(raw["name"]),
		"email":  email,
		"avatar": stringValue(raw["picture"]),
	})
}
