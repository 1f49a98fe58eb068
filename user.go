package socialite

import "encoding/json"

// User is the normalized authenticated user: an attribute bag built in
// two phases. The dialect maps the provider payload onto the common
// schema (id, name, nickname, email, avatar), then the engine attaches
// token metadata through the setters. Accessors return zero values when
// the provider did not supply a field; absence is never an error.
type User struct {
	attrs map[string]any
}

// NewUser creates a User from mapped attributes.
func NewUser(attrs map[string]any) *User {
	if attrs == nil {
		attrs = map[string]any{}
	}
	return &User{attrs: attrs}
}

// Get returns an arbitrary attribute, or nil when absent.
func (u *User) Get(key string) any { return u.attrs[key] }

// ID returns the provider's unique user identifier.
func (u *User) ID() string { return stringValue(u.attrs["id"]) }

// Name returns the display name, falling back to the nickname.
func (u *User) Name() string {
	if v := stringValue(u.attrs["name"]); v != "" {
		return v
	}
	return stringValue(u.attrs["nickname"])
}

// Nickname returns the nickname, falling back to the name.
func (u *User) Nickname() string {
	if v := stringValue(u.attrs["nickname"]); v != "" {
		return v
	}
	return stringValue(u.attrs["name"])
}

// Email returns the email address, if the provider supplied one.
func (u *User) Email() string { return stringValue(u.attrs["email"]) }

// Avatar returns the avatar URL, if the provider supplied one.
func (u *User) Avatar() string { return stringValue(u.attrs["avatar"]) }

// AccessToken returns the access token this user was resolved with.
func (u *User) AccessToken() string { return stringValue(u.attrs["access_token"]) }

// RefreshToken returns the refresh token from the token exchange, if any.
func (u *User) RefreshToken() string { return stringValue(u.attrs["refresh_token"]) }

// ExpiresIn returns the token lifetime in seconds, 0 when unknown.
func (u *User) ExpiresIn() int { return intValue(u.attrs["expires_in"]) }

// Raw returns the unmodified provider profile payload.
func (u *User) Raw() map[string]any {
	m, _ := u.attrs["raw"].(map[string]any)
	return m
}

// TokenResponse returns the normalized token-endpoint response this
// user was built from, when UserFromCode produced it.
func (u *User) TokenResponse() map[string]any {
	m, _ := u.attrs["token_response"].(map[string]any)
	return m
}

// SetRaw attaches the unmodified profile payload.
func (u *User) SetRaw(raw map[string]any) *User {
	u.attrs["raw"] = raw
	return u
}

// SetAccessToken attaches the access token.
func (u *User) SetAccessToken(token string) *User {
	u.attrs["access_token"] = token
	return u
}

// SetRefreshToken attaches the refresh token. Empty values are kept out
// of the attribute map so they serialize as absent.
func (u *User) SetRefreshToken(token string) *User {
	if token != "" {
		u.attrs["refresh_token"] = token
	}
	return u
}

// SetExpiresIn attaches the token lifetime in seconds.
func (u *User) SetExpiresIn(seconds int) *User {
	u.attrs["expires_in"] = seconds
	return u
}

// SetTokenResponse attaches the full normalized token response.
func (u *User) SetTokenResponse(resp map[string]any) *User {
	u.attrs["token_response"] = resp
	return u
}

// MarshalJSON serializes the user as exactly its attribute map.
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.attrs)
}
