package socialite

import (
	"context"
	"encoding/json"
)

// GitHub implements OAuth 2.0 against github.com. GitHub has no OIDC
// userinfo endpoint, so the profile comes from the REST API and the
// email may need a second, best-effort call: some users keep their
// email private, which hides it from /user.
type GitHub struct {
	*Engine
	authURL  string
	tokenURL string
	apiBase  string
}

// NewGitHub creates a GitHub provider. Requires client_id and
// client_secret; scopes default to user:email + read:user.
func NewGitHub(cfg *Config) (*GitHub, error) {
	p := &GitHub{
		authURL:  "https://github.com/login/oauth/authorize",
		tokenURL: "https://github.com/login/oauth/access_token",
		apiBase:  "https://api.github.com",
	}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"user:email", "read:user"}
	}
	p.Engine = e
	return p, nil
}

func (*GitHub) Name() string           { return "github" }
func (p *GitHub) AuthorizeURL() string { return p.authURL }
func (p *GitHub) TokenURL() string     { return p.tokenURL }

func (p *GitHub) RawUser(ctx context.Context, token string) (map[string]any, error) {
	body, err := p.getJSON(ctx, p.apiBase+"/user", nil, bearer(token))
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}

	// GitHub sometimes returns an empty email in /user; fetch the
	// primary one from /user/emails. Best effort: a failure here means
	// no email, not a failed login.
	if stringValue(raw["email"]) == "" {
		if email := p.primaryEmail(ctx, token); email != "" {
			raw["email"] = email
		}
	}
	return raw, nil
}

func (p *GitHub) primaryEmail(ctx context.Context, token string) string {
	body, err := p.getJSON(ctx, p.apiBase+"/user/emails", nil, bearer(token))
	if err != nil {
		return ""
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.Unmarshal(body, &emails); err != nil {
		return ""
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email
		}
	}
	if len(emails) > 0 {
		return emails[0].Email
	}
	return ""
}

func (*GitHub) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["id"]),
		"nickname": stringValue(raw["login"]),
		"name":     stringValue(raw["name"]),
		"email":    stringValue(raw["email"]),
		"avatar":   stringValue(raw["avatar_url"]),
	})
}
