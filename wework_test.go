package socialite

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestWeWork_UnsupportedOperations(t *testing.T) {
	p, err := NewWeWork(NewConfig(map[string]any{
		"corp_id":     "corp",
		"corp_secret": "secret",
	}))
	if err != nil {
		t.Fatalf("NewWeWork: %v", err)
	}

	if _, err := p.TokenFromCode(context.Background(), "c"); !errors.Is(err, ErrMethodNotSupported) {
		t.Fatalf("TokenFromCode: want ErrMethodNotSupported, got %v", err)
	}
	if _, err := p.UserFromToken(context.Background(), "t"); !errors.Is(err, ErrMethodNotSupported) {
		t.Fatalf("UserFromToken: want ErrMethodNotSupported, got %v", err)
	}
}

func TestWeWork_UserFromCodeWithMemberDetail(t *testing.T) {
	var tokenFetches int32

	mux := http.NewServeMux()
	mux.HandleFunc("/cgi-bin/gettoken", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenFetches, 1)
		q := r.URL.Query()
		if q.Get("corpid") != "corp" || q.Get("corpsecret") != "secret" {
			t.Errorf("corp credentials: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errcode":0,"access_token":"corp-token","expires_in":7200}`))
	})
	mux.HandleFunc("/cgi-bin/user/getuserinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "corp-token" {
			t.Errorf("corp token not used")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errcode":0,"UserId":"zhangsan"}`))
	})
	mux.HandleFunc("/cgi-bin/user/get", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("userid") != "zhangsan" {
			t.Errorf("userid: %q", r.URL.Query().Get("userid"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errcode":0,"name":"Zhang San","email":"zs@corp.test","avatar":"https://a.test/z.png"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := NewWeWork(NewConfig(map[string]any{
		"corp_id":     "corp",
		"corp_secret": "secret",
	}))
	if err != nil {
		t.Fatalf("NewWeWork: %v", err)
	}
	p.apiBase = srv.URL

	u, err := p.UserFromCode(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("UserFromCode: %v", err)
	}
	if u.ID() != "zhangsan" || u.Name() != "Zhang San" || u.Email() != "zs@corp.test" {
		t.Fatalf("user: %q %q %q", u.ID(), u.Name(), u.Email())
	}

	// segunda resolucion: el corp token queda memoizado
	if _, err := p.UserFromCode(context.Background(), "code-2"); err != nil {
		t.Fatalf("second UserFromCode: %v", err)
	}
	if n := atomic.LoadInt32(&tokenFetches); n != 1 {
		t.Fatalf("corp token fetched %d times, want 1", n)
	}
}

func TestWeWork_APIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cgi-bin/gettoken", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errcode":40001,"errmsg":"invalid credential"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := NewWeWork(NewConfig(map[string]any{"corp_id": "corp", "corp_secret": "bad"}))
	if err != nil {
		t.Fatalf("NewWeWork: %v", err)
	}
	p.apiBase = srv.URL

	if _, err := p.UserFromCode(context.Background(), "c"); !errors.Is(err, ErrAuthorizeFailed) {
		t.Fatalf("want ErrAuthorizeFailed, got %v", err)
	}
}
