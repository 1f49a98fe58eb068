package socialite

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// WeWork implements the WeCom (enterprise WeChat) member login. The
// flow has no user-level token: the authorization code is resolved
// directly against the corp API under a corp access token the provider
// obtains with corp_id/corp_secret. TokenFromCode and UserFromToken are
// therefore unsupported; use UserFromCode.
type WeWork struct {
	*Engine
	apiBase string
	agentID string

	mu        sync.Mutex
	corpToken string
	group     singleflight.Group
}

// NewWeWork creates a WeWork provider. The optional "agent_id" config
// key is forwarded on the authorize request.
func NewWeWork(cfg *Config) (*WeWork, error) {
	p := &WeWork{apiBase: "https://qyapi.weixin.qq.com"}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"snsapi_base"}
	}
	p.agentID = cfg.GetString("agent_id")
	p.Engine = e
	return p, nil
}

func (*WeWork) Name() string         { return "wework" }
func (*WeWork) AuthorizeURL() string { return "https://open.weixin.qq.com/connect/oauth2/authorize" }
func (*WeWork) TokenURL() string     { return "" }

func (p *WeWork) CodeFields(e *Engine) url.Values {
	f := url.Values{}
	f.Set("appid", e.ClientID())
	if e.RedirectURL() != "" {
		f.Set("redirect_uri", e.RedirectURL())
	}
	f.Set("response_type", "code")
	f.Set("scope", e.formatScopes())
	if p.agentID != "" {
		f.Set("agentid", p.agentID)
	}
	return f
}

// TokenFromCode is not part of this dialect; the code is consumed by
// the corp API directly.
func (p *WeWork) TokenFromCode(ctx context.Context, code string) (*Token, error) {
	return nil, notSupportedf("wework: no user token exchange; use UserFromCode")
}

// UserFromToken is not part of this dialect.
func (p *WeWork) UserFromToken(ctx context.Context, token string) (*User, error) {
	return nil, notSupportedf("wework: no user token lookup; use UserFromCode")
}

func (p *WeWork) RawUser(ctx context.Context, token string) (map[string]any, error) {
	return nil, notSupportedf("wework: no user token lookup; use UserFromCode")
}

// ExchangeCodeForUser resolves the code under the corp token, then
// pulls the full member record when the code belonged to a corp member.
func (p *WeWork) ExchangeCodeForUser(ctx context.Context, e *Engine, code string) (*User, error) {
	corpToken, err := p.corpAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("access_token", corpToken)
	q.Set("code", code)

	body, err := e.getJSON(ctx, p.apiBase+"/cgi-bin/user/getuserinfo", q, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	if intValue(raw["errcode"]) != 0 {
		return nil, &AuthorizeError{Reason: "wework api error", Body: body}
	}

	userID := stringValue(raw["UserId"])
	if userID == "" {
		userID = stringValue(raw["userid"])
	}
	if userID != "" {
		if detail, err := p.memberDetail(ctx, corpToken, userID); err == nil {
			detail["userid"] = userID
			return p.MapUser(detail).SetRaw(detail), nil
		}
		// el detalle es mejor-esfuerzo; la identidad ya la tenemos
		raw["userid"] = userID
	}
	return p.MapUser(raw).SetRaw(raw), nil
}

func (p *WeWork) memberDetail(ctx context.Context, corpToken, userID string) (map[string]any, error) {
	q := url.Values{}
	q.Set("access_token", corpToken)
	q.Set("userid", userID)

	body, err := p.getJSON(ctx, p.apiBase+"/cgi-bin/user/get", q, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid member response", Body: body}
	}
	if intValue(raw["errcode"]) != 0 {
		return nil, &AuthorizeError{Reason: "wework member lookup error", Body: body}
	}
	return raw, nil
}

func (*WeWork) MapUser(raw map[string]any) *User {
	id := stringValue(raw["userid"])
	if id == "" {
		id = stringValue(raw["OpenId"])
	}
	return NewUser(map[string]any{
		"id":     id,
		"name":   stringValue(raw["name"]),
		"email":  stringValue(raw["email"]),
		"avatar": stringValue(raw["avatar"]),
	})
}

// corpAccessToken returns the corp-level credential, fetched at most
// once per instance and shared across instances through the injected
// cache when one is present.
func (p *WeWork) corpAccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.corpToken != "" {
		tok := p.corpToken
		p.mu.Unlock()
		return tok, nil
	}
	p.mu.Unlock()

	cacheKey := "socialite:wework:corp_access_token:" + p.ClientID()
	if c := p.cacheClient(); c != nil {
		if tok, err := c.Get(ctx, cacheKey); err == nil && tok != "" {
			p.mu.Lock()
			p.corpToken = tok
			p.mu.Unlock()
			return tok, nil
		}
	}

	v, err, _ := p.group.Do(cacheKey, func() (any, error) {
		q := url.Values{}
		q.Set("corpid", p.ClientID())
		q.Set("corpsecret", p.ClientSecret())

		body, err := p.getJSON(ctx, p.apiBase+"/cgi-bin/gettoken", q, nil)
		if err != nil {
			return nil, err
		}
		raw, err := decodeJSONMap(body)
		if err != nil {
			return nil, &AuthorizeError{Reason: "invalid corp token response", Body: body}
		}
		if intValue(raw["errcode"]) != 0 {
			return nil, &AuthorizeError{Reason: "wework corp token error", Body: body}
		}
		tok := stringValue(raw["access_token"])
		if tok == "" {
			return nil, &AuthorizeError{Reason: "no access_token in response", Body: body}
		}

		p.mu.Lock()
		p.corpToken = tok
		p.mu.Unlock()

		if c := p.cacheClient(); c != nil {
			ttl := time.Duration(intValue(raw["expires_in"])) * time.Second
			if ttl > 2*time.Minute {
				ttl -= 2 * time.Minute
			}
			_ = c.Set(ctx, cacheKey, tok, ttl)
		}
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
