package socialite

import (
	"context"
	"net/url"
	"strings"
)

// LinkedIn implements the v2 API login flow. The profile and the email
// address live on separate endpoints, names are localized maps keyed by
// locale, and the avatar hides several levels deep in a displayimage
// projection.
type LinkedIn struct {
	*Engine
	apiBase string
}

// NewLinkedIn creates a LinkedIn provider with the lite-profile scopes.
func NewLinkedIn(cfg *Config) (*LinkedIn, error) {
	p := &LinkedIn{apiBase: "https://api.linkedin.com/v2"}
	e, err := newEngine(p, cfg)
	if err != nil {
		return nil, err
	}
	if len(e.scopes) == 0 {
		e.scopes = []string{"r_liteprofile", "r_emailaddress"}
	}
	e.scopeSeparator = " "
	p.Engine = e
	return p, nil
}

func (*LinkedIn) Name() string         { return "linkedin" }
func (*LinkedIn) AuthorizeURL() string { return "https://www.linkedin.com/oauth/v2/authorization" }
func (*LinkedIn) TokenURL() string     { return "https://www.linkedin.com/oauth/v2/accessToken" }

// TokenFields adds grant_type, which LinkedIn requires.
func (*LinkedIn) TokenFields(e *Engine, code string) url.Values {
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

func (p *LinkedIn) RawUser(ctx context.Context, token string) (map[string]any, error) {
	q := url.Values{}
	q.Set("projection", "(id,firstName,lastName,profilePicture(displayImage~:playableStreams))")

	body, err := p.getJSON(ctx, p.apiBase+"/me", q, bearer(token))
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return nil, &AuthorizeError{Reason: "invalid user response", Body: body}
	}

	// Email lives on its own endpoint. Best effort: missing email is
	// absent data, not a failed login.
	if email := p.emailAddress(ctx, token); email != "" {
		raw["emailAddress"] = email
	}
	return raw, nil
}

func (p *LinkedIn) emailAddress(ctx context.Context, token string) string {
	q := url.Values{}
	q.Set("q", "members")
	q.Set("projection", "(elements*(handle~))")

	body, err := p.getJSON(ctx, p.apiBase+"/emailAddress", q, bearer(token))
	if err != nil {
		return ""
	}
	raw, err := decodeJSONMap(body)
	if err != nil {
		return ""
	}

	elements, _ := raw["elements"].([]any)
	for _, el := range elements {
		m, _ := el.(map[string]any)
		if handle := subMap(m, "handle~"); handle != nil {
			if email := stringValue(handle["emailAddress"]); email != "" {
				return email
			}
		}
	}
	return ""
}

func (p *LinkedIn) MapUser(raw map[string]any) *User {
	name := strings.TrimSpace(localizedName(subMap(raw, "firstName")) + " " + localizedName(subMap(raw, "lastName")))

	return NewUser(map[string]any{
		"id":     stringValue(raw["id"]),
		"name":   name,
		"email":  stringValue(raw["emailAddress"]),
		"avatar": linkedinAvatar(raw),
	})
}

// localizedName picks the preferred-locale variant from a localized
// name map, falling back to any available variant.
func localizedName(field map[string]any) string {
	if field == nil {
		return ""
	}
	localized := subMap(field, "localized")
	if localized == nil {
		return ""
	}

	if pref := subMap(field, "preferredLocale"); pref != nil {
		key := stringValue(pref["language"]) + "_" + stringValue(pref["country"])
		if v := stringValue(localized[key]); v != "" {
			return v
		}
	}
	for _, v := range localized {
		if s := stringValue(v); s != "" {
			return s
		}
	}
	return ""
}

// linkedinAvatar digs the largest displayimage identifier out of the
// profilePicture projection.
func linkedinAvatar(raw map[string]any) string {
	picture := subMap(raw, "profilePicture")
	if picture == nil {
		return ""
	}
	display := subMap(picture, "displayImage~")
	if display == nil {
		return ""
	}
	elements, _ := display["elements"].([]any)
	var avatar string
	for _, el := range elements {
		m, _ := el.(map[string]any)
		identifiers, _ := m["identifiers"].([]any)
		for _, idEl := range identifiers {
			idm, _ := idEl.(map[string]any)
			if v := stringValue(idm["identifier"]); v != "" {
				avatar = v // keep the last (largest) stream
			}
		}
	}
	return avatar
}
