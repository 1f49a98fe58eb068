package socialite

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// OpenWeWork implements the WeCom third-party service-provider login.
// Exchanges run under a suite access token obtained with
// suite_id/suite_secret plus the suite_ticket WeCom pushes to the
// service provider. Like WeWork, the flow has no user-level token.
type OpenWeWork struct {
	*Engine
	apiBase string

	mu         sync.Mutex
	suiteToken string
	group      singleflight.Group
}

// NewOpenWeWork creates an OpenWeWork provider. The "suite_ticket"
// config key is required; suite_id/suite_secret stand in for
// client_id/client_secret.
func NewOpenWeWork(cfg *Config) (*OpenWeWork, error) {
	p := &OpenWeWork{apiBase: "https://qyapi.weixin.qq.com"}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.Has("suite_ticket") {
		return nil, invalidArgf("open-wework: missing suite_ticket")
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"snsapi_base"}
	}
	p.Engine = e
	return p, nil
}

func (*OpenWeWork) Name() string { return "open-wework" }
func (*OpenWeWork) AuthorizeURL() string {
	return "https://open.weixin.qq.com/connect/oauth2/authorize"
}
func (*OpenWeWork) TokenURL() string { return "" }

func (p *OpenWeWork) CodeFields(e *Engine) url.Values {
	f := url.Values{}
	f.Set("appid", e.ClientID())
	if e.RedirectURL() != "" {
		f.Set("redirect_uri", e.RedirectURL())
	}
	f.Set("response_type", "code")
	f.Set("scope", e.formatScopes())
	return f
}

// TokenFromCode is not part of this dialect.
func (p *OpenWeWork) TokenFromCode(ctx context.Context, code string) (*Token, error) {
	return nil, notSupportedf("open-wework: no user token exchange; use UserFromCode")
}

// UserFromToken is not part of this dialect.
func (p *OpenWeWork) UserFromToken(ctx context.Context, token string) (*User, error) {
	return nil, notSupportedf("open-wework: no user token lookup; use UserFromCode")
}

func (p *OpenWeWork) RawUser(ctx context.Context, token string) (map[string]any, error) {
	return nil, notSupportedf("open-wework: no user token lookup; use UserFromCode")
}

// ExchangeCodeForUser resolves the code under the suite token, then
// upgrades to the member detail when WeCom granted a user_ticket.
func (p *OpenWeWork) ExchangeCodeForUser(ctx context.Context, e *Engine, code string) (*User, error) {
	suiteToken, err := p.suiteAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("suite_access_token", suiteToken)
	q.Set("code", code)

	body, err := e.getJSON(ctx, p.apiBase+"/cgi-bin/service/getuserinfo3rd", q, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	if intValue(raw["errcode"]) != 0 {
		return nil, &AuthorizeError{Reason: "open-wework api error", Body: body}
	}

	if ticket := stringValue(raw["user_ticket"]); ticket != "" {
		if detail, err := p.userDetail(ctx, suiteToken, ticket); err == nil {
			if detail["userid"] == nil {
				detail["userid"] = raw["UserId"]
			}
			detail["corpid"] = raw["CorpId"]
			return p.MapUser(detail).SetRaw(detail), nil
		}
	}
	return p.MapUser(raw).SetRaw(raw), nil
}

func (p *OpenWeWork) userDetail(ctx context.Context, suiteToken, userTicket string) (map[string]any, error) {
	u := p.apiBase + "/cgi-bin/service/getuserdetail3rd?suite_access_token=" + url.QueryEscape(suiteToken)
	body, err := p.postJSON(ctx, u, map[string]string{"user_ticket": userTicket}, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid member response", Body: body}
	}
	if intValue(raw["errcode"]) != 0 {
		return nil, &AuthorizeError{Reason: "open-wework member lookup error", Body: body}
	}
	return raw, nil
}

func (*OpenWeWork) MapUser(raw map[string]any) *User {
	id := stringValue(raw["userid"])
	if id == "" {
		id = stringValue(raw["UserId"])
	}
	if id == "" {
		id = stringValue(raw["OpenId"])
	}
	return NewUser(map[string]any{
		"id":     id,
		"name":   stringValue(raw["name"]),
		"avatar": stringValue(raw["avatar"]),
		"corpid": stringValue(raw["corpid"]),
	})
}

// suiteAccessToken returns the suite-level credential, fetched at most
// once per instance and shared through the injected cache when present.
func (p *OpenWeWork) suiteAccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.suiteToken != "" {
		tok := p.suiteToken
		p.mu.Unlock()
		return tok, nil
	}
	p.mu.Unlock()

	cacheKey := "socialite:open-wework:suite_access_token:" + p.ClientID()
	if c := p.cacheClient(); c != nil {
		if tok, err := c.Get(ctx, cacheKey); err == nil && tok != "" {
			p.mu.Lock()
			p.suiteToken = tok
			p.mu.Unlock()
			return tok, nil
		}
	}

	v, err, _ := p.group.Do(cacheKey, func() (any, error) {
		payload := map[string]string{
			"suite_id":     p.ClientID(),
			"suite_secret": p.ClientSecret(),
			"suite_ticket": p.Config().GetString("suite_ticket"),
		}
		body, err := p.postJSON(ctx, p.apiBase+"/cgi-bin/service/get_suite_token", payload, nil)
		if err != nil {
			return nil, err
		}
		raw, err := decodeJSONMap(body)
		if err != nil {
			return nil, &AuthorizeError{Reason: "invalid suite token response", Body: body}
		}
		if intValue(raw["errcode"]) != 0 {
			return nil, &AuthorizeError{Reason: "open-wework suite token error", Body: body}
		}
		tok := stringValue(raw["suite_access_token"])
		if tok == "" {
			return nil, &AuthorizeError{Reason: "no suite_access_token in response", Body: body}
		}

		p.mu.Lock()
		p.suiteToken = tok
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
