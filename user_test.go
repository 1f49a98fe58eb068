package socialite

import (
	"encoding/json"
	"testing"
)

func TestUser_NameNicknameFallbacks(t *testing.T) {
	u := NewUser(map[string]any{"nickname": "octo"})
	if got := u.Name(); got != "octo" {
		t.Fatalf("Name fallback: got %q", got)
	}

	u = NewUser(map[string]any{"name": "Octo Cat"})
	if got := u.Nickname(); got != "Octo Cat" {
		t.Fatalf("Nickname fallback: got %q", got)
	}

	u = NewUser(nil)
	if u.ID() != "" || u.Email() != "" || u.Avatar() != "" {
		t.Fatalf("empty user should return zero values")
	}
}

func TestUser_NumericIDRendersAsString(t *testing.T) {
	u := NewUser(map[string]any{"id": float64(12345)})
	if got := u.ID(); got != "12345" {
		t.Fatalf("ID: got %q", got)
	}
}

func TestUser_SettersChainAndSkipEmptyRefresh(t *testing.T) {
	raw := map[string]any{"login": "octo"}
	tokenResp := map[string]any{"access_token": "tok"}

	u := NewUser(map[string]any{"id": "1"}).
		SetRaw(raw).
		SetAccessToken("tok").
		SetRefreshToken("").
		SetExpiresIn(3600).
		SetTokenResponse(tokenResp)

	if u.AccessToken() != "tok" {
		t.Fatalf("AccessToken: got %q", u.AccessToken())
	}
	if u.RefreshToken() != "" {
		t.Fatalf("empty refresh token must stay absent")
	}
	if _, present := u.attrs["refresh_token"]; present {
		t.Fatalf("refresh_token key must not exist when empty")
	}
	if u.ExpiresIn() != 3600 {
		t.Fatalf("ExpiresIn: got %d", u.ExpiresIn())
	}
	if u.Raw()["login"] != "octo" {
		t.Fatalf("Raw not attached")
	}
	if u.TokenResponse()["access_token"] != "tok" {
		t.Fatalf("TokenResponse not attached")
	}

	u.SetRefreshToken("refresco")
	if u.RefreshToken() != "refresco" {
		t.Fatalf("RefreshToken: got %q", u.RefreshToken())
	}
}

func TestUser_MarshalJSONIsAttributeMap(t *testing.T) {
	u := NewUser(map[string]any{"id": "1", "nickname": "octo"}).SetAccessToken("tok")

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if out["id"] != "1" || out["nickname"] != "octo" || out["access_token"] != "tok" {
		t.Fatalf("unexpected serialization: %v", out)
	}
}
