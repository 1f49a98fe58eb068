package socialite

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestWeChat_RedirectUsesAppid(t *testing.T) {
	p, err := NewWeChat(NewConfig(map[string]any{
		"appid":        "wx123",
		"secret":       "s",
		"redirect_url": "http://localhost/cb",
	}))
	if err != nil {
		t.Fatalf("NewWeChat: %v", err)
	}

	got, err := p.Redirect("")
	if err != nil {
		t.Fatalf("Redirect: %v", err)
	}
	u, _ := url.Parse(got)
	q := u.Query()
	if q.Get("appid") != "wx123" {
		t.Fatalf("appid: got %q", q.Get("appid"))
	}
	if q.Has("client_id") {
		t.Fatalf("wechat must not send client_id")
	}
	if q.Get("scope") != "snsapi_login" {
		t.Fatalf("scope: got %q", q.Get("scope"))
	}
}

func TestWeChat_RedirectCarriesExtraParams(t *testing.T) {
	p, err := NewWeChat(NewConfig(map[string]any{
		"appid":        "wx123",
		"secret":       "s",
		"redirect_url": "http://localhost/cb",
	}))
	if err != nil {
		t.Fatalf("NewWeChat: %v", err)
	}
	p.With(map[string]string{
		"forcePopup": "true",
		"appid":      "pisado", // las claves del dialecto no se pisan
	})

	got, err := p.Redirect("")
	if err != nil {
		t.Fatalf("Redirect: %v", err)
	}
	u, _ := url.Parse(got)
	q := u.Query()
	if q.Get("forcePopup") != "true" {
		t.Fatalf("forcePopup: got %q", q.Get("forcePopup"))
	}
	if q.Get("appid") != "wx123" {
		t.Fatalf("appid: got %q", q.Get("appid"))
	}
}

func TestWeChat_UserFromCodeThreadsOpenID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/access_token", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("appid") != "wx123" || q.Get("secret") != "s" {
			t.Errorf("credentials: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"wx-token","expires_in":7200,"refresh_token":"wx-refresh","openid":"OPENID","scope":"snsapi_login"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("openid") != "OPENID" {
			t.Errorf("openid not threaded: %q", q.Get("openid"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"openid":"OPENID","nickname":"Wei","headimgurl":"https://a.test/w.png"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := NewWeChat(NewConfig(map[string]any{"appid": "wx123", "secret": "s"}))
	if err != nil {
		t.Fatalf("NewWeChat: %v", err)
	}
	p.apiBase = srv.URL

	u, err := p.UserFromCode(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("UserFromCode: %v", err)
	}
	if u.ID() != "OPENID" || u.Nickname() != "Wei" {
		t.Fatalf("user: %q %q", u.ID(), u.Nickname())
	}
	if u.RefreshToken() != "wx-refresh" {
		t.Fatalf("refresh: got %q", u.RefreshToken())
	}
}

func TestWeChat_UserFromTokenRequiresOpenID(t *testing.T) {
	p, err := NewWeChat(NewConfig(map[string]any{"appid": "wx123", "secret": "s"}))
	if err != nil {
		t.Fatalf("NewWeChat: %v", err)
	}
	if _, err := p.UserFromToken(context.Background(), "tok"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestWeChat_ComponentMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("component_appid") != "comp-id" {
			t.Errorf("component_appid: %q", q.Get("component_appid"))
		}
		if q.Get("component_access_token") != "comp-token" {
			t.Errorf("component_access_token: %q", q.Get("component_access_token"))
		}
		if q.Has("secret") {
			t.Errorf("component mode must not send the app secret")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"wx-token","openid":"OPENID","expires_in":7200}`))
	}))
	defer srv.Close()

	p, err := NewWeChat(NewConfig(map[string]any{
		"appid":  "wx123",
		"secret": "s",
		"component": map[string]any{
			"id":    "comp-id",
			"token": "comp-token",
		},
	}))
	if err != nil {
		t.Fatalf("NewWeChat: %v", err)
	}
	p.apiBase = srv.URL

	tok, err := p.TokenFromCode(context.Background(), "c")
	if err != nil {
		t.Fatalf("TokenFromCode: %v", err)
	}
	if tok.AccessToken != "wx-token" {
		t.Fatalf("token: %q", tok.AccessToken)
	}

	// en modo component el authorize lleva el component_appid
	got, err := p.Redirect("http://localhost/cb")
	if err != nil {
		t.Fatalf("Redirect: %v", err)
	}
	u, _ := url.Parse(got)
	if u.Query().Get("component_appid") != "comp-id" {
		t.Fatalf("authorize component_appid missing")
	}

	// component.id sin token es un error de configuracion
	if _, err := NewWeChat(NewConfig(map[string]any{
		"appid":     "wx123",
		"secret":    "s",
		"component": map[string]any{"id": "comp-id"},
	})); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}
