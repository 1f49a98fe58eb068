package socialite

import (
	"context"
	"net/url"
	"strings"
)

// Facebook implements the Graph API login flow. The token exchange is a
// GET with query parameters, not a form POST, and the avatar is a
// deterministic Graph URL rather than a payload field.
type Facebook struct {
	*Engine
	graphBase string
	version   string
	fields    []string
}

// NewFacebook creates a Facebook provider. The Graph version can be set
// with the "graph_version" config key.
func NewFacebook(cfg *Config) (*Facebook, error) {
	p := &Facebook{
		graphBase: "https://graph.facebook.com",
		version:   "v3.3",
		fields:    []string{"id", "first_name", "last_name", "email", "gender", "verified", "picture"},
	}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if v := cfg.GetString("graph_version"); v != "" {
		p.version = v
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"email"}
	}
	p.Engine = e
	return p, nil
}

func (*Facebook) Name() string { return "facebook" }

func (p *Facebook) AuthorizeURL() string {
	return "https://www.facebook.com/" + p.version + "/dialog/oauth"
}

func (p *Facebook) TokenURL() string {
	return p.graphBase + "/" + p.version + "/oauth/access_token"
}

// RequestToken exchanges the code via GET, the Graph API convention.
func (p *Facebook) RequestToken(ctx context.Context, e *Engine, code string) ([]byte, error) {
	q := url.Values{}
	q.Set("client_id", e.ClientID())
	q.Set("client_secret", e.ClientSecret())
	q.Set("code", code)
	if e.RedirectURL() != "" {
		q.Set("redirect_uri", e.RedirectURL())
	}
	return e.getJSON(ctx, p.TokenURL(), q, map[string]string{"Accept": "application/json"})
}

func (p *Facebook) RawUser(ctx context.Context, token string) (map[string]any, error) {
	q := url.Values{}
	q.Set("access_token", token)
	q.Set("fields", strings.Join(p.fields, ","))

	body, err := p.getJSON(ctx, p.graphBase+"/"+p.version+"/me", q, nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	if _, failed := raw["error"]; failed {
		return nil, &AuthorizeError{Reason: "graph api error", Body: body}
	}
	return raw, nil
}

func (p *Facebook) MapUser(raw map[string]any) *User {
	id := stringValue(raw["id"])
	name := strings.TrimSpace(stringValue(raw["first_name"]) + " " + stringValue(raw["last_name"]))

	avatar := ""
	if id != "" {
		avatar = p.graphBase + "/" + p.version + "/" + id + "/picture?type=normal"
	}

	return NewUser(map[string]any{
		"id":     id,
		"name":   name,
		"email":  stringValue(raw["email"]),
		"avatar": avatar,
	})
}
