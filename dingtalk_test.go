package socialite

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestDingTalk_RedirectUsesQRConnect(t *testing.T) {
	p, err := NewDingTalk(NewConfig(map[string]any{
		"client_id":     "appid",
		"client_secret": "secret",
		"redirect_url":  "http://localhost/cb",
	}))
	if err != nil {
		t.Fatalf("NewDingTalk: %v", err)
	}

	got, err := p.Redirect("")
	if err != nil {
		t.Fatalf("Redirect: %v", err)
	}
	u, _ := url.Parse(got)
	if u.Path != "/connect/qrconnect" {
		t.Fatalf("path: got %q", u.Path)
	}
	q := u.Query()
	if q.Get("appid") != "appid" {
		t.Fatalf("appid: got %q", q.Get("appid"))
	}
	if q.Get("scope") != "snsapi_login" {
		t.Fatalf("scope: got %q", q.Get("scope"))
	}
}

func TestDingTalk_UserFromCodeSignsRequest(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("accessKey") != "appid" {
			t.Errorf("accessKey: %q", q.Get("accessKey"))
		}
		if q.Get("timestamp") != "1700000000000" {
			t.Errorf("timestamp: %q", q.Get("timestamp"))
		}
		want := signHMACSHA256("1700000000000", "secret")
		if q.Get("signature") != want {
			t.Errorf("signature: got %q want %q", q.Get("signature"), want)
		}

		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("body: %v", err)
		}
		if payload["tmp_auth_code"] != "the-code" {
			t.Errorf("tmp_auth_code: %q", payload["tmp_auth_code"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errcode":0,"user_info":{"nick":"Ding","openid":"OID","unionid":"UID"}}`))
	}))
	defer srv.Close()

	p, err := NewDingTalk(NewConfig(map[string]any{
		"client_id":     "appid",
		"client_secret": "secret",
	}))
	if err != nil {
		t.Fatalf("NewDingTalk: %v", err)
	}
	p.apiBase = srv.URL
	p.now = func() time.Time { return fixed }

	u, err := p.UserFromCode(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("UserFromCode: %v", err)
	}
	if u.ID() != "OID" || u.Nickname() != "Ding" {
		t.Fatalf("user: %q %q", u.ID(), u.Nickname())
	}
	if u.Get("unionid") != "UID" {
		t.Fatalf("unionid: %v", u.Get("unionid"))
	}
}

func TestDingTalk_ErrcodeAndUnsupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errcode":40078,"errmsg":"invalid tmp_auth_code"}`))
	}))
	defer srv.Close()

	p, err := NewDingTalk(NewConfig(map[string]any{"client_id": "appid", "client_secret": "s"}))
	if err != nil {
		t.Fatalf("NewDingTalk: %v", err)
	}
	p.apiBase = srv.URL

	if _, err := p.UserFromCode(context.Background(), "stale"); !errors.Is(err, ErrAuthorizeFailed) {
		t.Fatalf("want ErrAuthorizeFailed, got %v", err)
	}
	if _, err := p.TokenFromCode(context.Background(), "c"); !errors.Is(err, ErrMethodNotSupported) {
		t.Fatalf("want ErrMethodNotSupported, got %v", err)
	}
	if _, err := p.UserFromToken(context.Background(), "t"); !errors.Is(err, ErrMethodNotSupported) {
		t.Fatalf("want ErrMethodNotSupported, got %v", err)
	}
}
