package socialite

import (
	"context"
	"net/url"
)

// Outlook implements Microsoft identity platform login against the
// common endpoint, resolving the profile from Microsoft Graph.
type Outlook struct {
	*Engine
	name      string
	loginBase string
	tenant    string
}

// NewOutlook creates an Outlook provider on the "common" tenant.
func NewOutlook(cfg *Config) (*Outlook, error) {
	return newMicrosoft(cfg, "outlook", "common")
}

// Azure is Outlook with a caller-configured directory tenant.
type Azure struct {
	*Outlook
}

// NewAzure creates an Azure AD provider; the "tenant" config key
// selects the directory (default "common").
func NewAzure(cfg *Config) (*Azure, error) {
	tenant := "common"
	if cfg != nil && cfg.Has("tenant") {
		tenant = cfg.GetString("tenant")
	}
	inner, err := newMicrosoft(cfg, "azure", tenant)
	if err != nil {
		return nil, err
	}
	return &Azure{Outlook: inner}, nil
}

func newMicrosoft(cfg *Config, name, tenant string) (*Outlook, error) {
	p := &Outlook{
		name:      name,
		loginBase: "https://login.microsoftonline.com",
		tenant:    tenant,
	}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"User.Read"}
	}
	e.scopeSeparator = " "
	p.Engine = e
	return p, nil
}

func (p *Outlook) Name() string { return p.name }

func (p *Outlook) AuthorizeURL() string {
	return p.loginBase + "/" + p.tenant + "/oauth2/v2.0/authorize"
}

func (p *Outlook) TokenURL() string {
	return p.loginBase + "/" + p.tenant + "/oauth2/v2.0/token"
}

// TokenFields adds grant_type, which the v2.0 endpoint requires.
func (*Outlook) TokenFields(e *Engine, code string) url.Values {
	f := url.Values{}
	f.Set("client_id", e.ClientID())
	f.Set("client_secret", e.ClientSecret())
	f.Set("code", code)
	f.Set("grant_type", "authorization_code")
	if e.RedirectURL() != "" {
		f.Set("redirect_uri", e.RedirectURL())
	}
	return f
}

func (p *Outlook) RawUser(ctx context.Context, token string) (map[string]any, error) {
	body, err := p.getJSON(ctx, "https://graph.microsoft.com/v1.0/me", nil, bearer(token))
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}
	return raw, nil
}

func (*Outlook) MapUser(raw map[string]any) *User {
	email := stringValue(raw["mail"])
	if email == "" {
		email = stringValue(raw["userPrincipalName"])
	}
	return NewUser(map[string]any{
		"id":       stringValue(raw["id"]),
		"nickname": stringValue(raw["displayName"]),
		"name":     stringValue(raw["displayName"]),
		"email":    email,
	})
}
