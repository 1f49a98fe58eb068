package socialite

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Feishu implements the Feishu (Lark China) flow. Every exchange is
// authorized by an app_access_token the provider obtains with its own
// credentials; that token is memoized per instance, deduplicated with
// singleflight, and optionally shared across instances through an
// injected cache. All API responses wrap their payload in a
// {code, msg, data} envelope.
type Feishu struct {
	*Engine
	name    string
	baseURL string

	mu       sync.Mutex
	appToken string
	group    singleflight.Group
}

// NewFeishu creates a Feishu provider.
func NewFeishu(cfg *Config) (*Feishu, error) {
	p := &Feishu{name: "feishu", baseURL: "https://open.feishu.cn"}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	p.Engine = e
	return p, nil
}

func (p *Feishu) Name() string         { return p.name }
func (p *Feishu) AuthorizeURL() string { return p.baseURL + "/open-apis/authen/v1/index" }
func (p *Feishu) TokenURL() string     { return p.baseURL + "/open-apis/authen/v1/access_token" }

func (p *Feishu) CodeFields(e *Engine) url.Values {
	f := url.Values{}
	f.Set("app_id", e.ClientID())
	if e.RedirectURL() != "" {
		f.Set("redirect_uri", e.RedirectURL())
	}
	return f
}

// RequestToken exchanges the code under the app access token. The body
// is JSON, not a form.
func (p *Feishu) RequestToken(ctx context.Context, e *Engine, code string) ([]byte, error) {
	appToken, err := p.appAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	payload := map[string]string{
		"grant_type": "authorization_code",
		"code":       code,
	}
	return e.postJSON(ctx, p.TokenURL(), payload, bearer(appToken))
}

func (p *Feishu) UnwrapTokenResponse(raw map[string]any, body []byte) (map[string]any, error) {
	if intValue(raw["code"]) != 0 {
		return nil, &AuthorizeError{Reason: "feishu token error", Body: body}
	}
	data := subMap(raw, "data")
	if data == nil {
		return nil, &AuthorizeError{Reason: "no data in token response", Body: body}
	}
	return data, nil
}

func (p *Feishu) RawUser(ctx context.Context, token string) (map[string]any, error) {
	body, err := p.getJSON(ctx, p.baseURL+"/open-apis/authen/v1/user_info", nil, bearer(token))
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	if intValue(raw["code"]) != 0 {
		return nil, &AuthorizeError{Reason: "feishu api error", Body: body}
	}
	data := subMap(raw, "data")
	if data == nil {
		return nil, &AuthorizeError{Reason: "no data in user response", Body: body}
	}
	return data, nil
}

func (*Feishu) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["user_id"]),
		"nickname": stringValue(raw["name"]),
		"name":     stringValue(raw["name"]),
		"email":    stringValue(raw["email"]),
		"avatar":   stringValue(raw["avatar_url"]),
	})
}

// appAccessToken returns the app-level credential, fetching it at most
// once per instance. With an injected cache the token survives the
// instance and is shared across processes. Once memoized it is never
// refreshed for the lifetime of the instance; long-lived callers should
// inject a cache so expiry is honored through the TTL.
func (p *Feishu) appAccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.appToken != "" {
		tok := p.appToken
		p.mu.Unlock()
		return tok, nil
	}
	p.mu.Unlock()

	cacheKey := "socialite:" + p.name + ":app_access_token:" + p.ClientID()
	if c := p.cacheClient(); c != nil {
		if tok, err := c.Get(ctx, cacheKey); err == nil && tok != "" {
			p.mu.Lock()
			p.appToken = tok
			p.mu.Unlock()
			return tok, nil
		}
	}

	v, err, _ := p.group.Do(cacheKey, func() (any, error) {
		payload := map[string]string{
			"app_id":     p.ClientID(),
			"app_secret": p.ClientSecret(),
		}
		body, err := p.postJSON(ctx, p.baseURL+"/open-apis/auth/v3/app_access_token/internal/", payload, nil)
		if err != nil {
			return nil, err
		}
		raw, err := decodeJSONMap(body)
		if err != nil {
			return nil, &AuthorizeError{Reason: "invalid app token response", Body: body}
		}
		if intValue(raw["code"]) != 0 {
			return nil, &AuthorizeError{Reason: "feishu app token error", Body: body}
		}
		tok := stringValue(raw["app_access_token"])
		if tok == "" {
			return nil, &AuthorizeError{Reason: "no app_access_token in response", Body: body}
		}

		p.mu.Lock()
		p.appToken = tok
		p.mu.Unlock()

		if c := p.cacheClient(); c != nil {
			ttl := time.Duration(intValue(raw["expire"])) * time.Second
			if ttl > 2*time.Minute {
				ttl -= 2 * time.Minute // margen para no servir tokens al borde de expirar
			}
			if err := c.Set(ctx, cacheKey, tok, ttl); err != nil {
				return tok, nil // cache opcional: fallar en silencio
			}
		}
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
