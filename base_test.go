package socialite

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// stubDialect is a minimal provider dialect for exercising the engine.
type stubDialect struct {
	name     string
	authURL  string
	tokenURL string
	rawUser  map[string]any
	rawErr   error
}

func (d *stubDialect) Name() string         { return d.name }
func (d *stubDialect) AuthorizeURL() string { return d.authURL }
func (d *stubDialect) TokenURL() string     { return d.tokenURL }

func (d *stubDialect) RawUser(context.Context, string) (map[string]any, error) {
	return d.rawUser, d.rawErr
}

func (d *stubDialect) MapUser(raw map[string]any) *User {
	return NewUser(map[string]any{
		"id":       stringValue(raw["id"]),
		"nickname": stringValue(raw["login"]),
	})
}

// statefulDialect emits its own state field; the engine must not add a
// second one.
type statefulDialect struct {
	stubDialect
}

func (d *statefulDialect) CodeFields(e *Engine) url.Values {
	f := url.Values{}
	f.Set("client_id", e.ClientID())
	f.Set("response_type", "code")
	f.Set("state", "dialect-state")
	return f
}

func testEngine(t *testing.T, d Dialect, values map[string]any) *Engine {
	t.Helper()
	e, err := newEngine(d, NewConfig(values))
	if err != nil {
		t.Fatalf("newEngine: %v", err)
	}
	return e
}

func TestNewEngine_AliasesAndMissingClientID(t *testing.T) {
	d := &stubDialect{name: "stub"}

	e := testEngine(t, d, map[string]any{
		"app_id":     "alias-id",
		"app_secret": "alias-secret",
		"redirect":   "http://localhost/cb",
	})
	if e.ClientID() != "alias-id" || e.ClientSecret() != "alias-secret" {
		t.Fatalf("aliases not applied: %q / %q", e.ClientID(), e.ClientSecret())
	}
	if e.RedirectURL() != "http://localhost/cb" {
		t.Fatalf("redirect alias not applied: %q", e.RedirectURL())
	}

	if _, err := newEngine(d, NewConfig(map[string]any{"client_secret": "s"})); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("missing client_id: want ErrInvalidArgument, got %v", err)
	}
}

func TestRedirect_DefaultFields(t *testing.T) {
	d := &stubDialect{name: "stub", authURL: "https://stub.test/oauth/authorize"}
	e := testEngine(t, d, map[string]any{
		"client_id":    "fake_client_id",
		"redirect_url": "http://localhost/callback",
		"scopes":       []any{"info"},
	})

	got, err := e.Redirect("")
	if err != nil {
		t.Fatalf("Redirect: %v", err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("client_id") != "fake_client_id" {
		t.Fatalf("client_id: got %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "http://localhost/callback" {
		t.Fatalf("redirect_uri: got %q", q.Get("redirect_uri"))
	}
	if q.Get("scope") != "info" {
		t.Fatalf("scope: got %q", q.Get("scope"))
	}
	if q.Get("response_type") != "code" {
		t.Fatalf("response_type: got %q", q.Get("response_type"))
	}
	if q.Has("state") {
		t.Fatalf("no state was set; none should appear")
	}
}

func TestRedirect_OverrideScopesSeparatorStateAndExtra(t *testing.T) {
	d := &stubDialect{name: "stub", authURL: "https://stub.test/authorize?from=app"}
	e := testEngine(t, d, map[string]any{"client_id": "id"})

	e.WithScopes("a", "b").
		WithScopeSeparator(" ").
		WithState("anti-forgery").
		With(map[string]string{"prompt": "consent"})

	got, err := e.Redirect("http://localhost/other")
	if err != nil {
		t.Fatalf("Redirect: %v", err)
	}
	u, _ := url.Parse(got)
	q := u.Query()
	if q.Get("scope") != "a b" {
		t.Fatalf("scope separator: got %q", q.Get("scope"))
	}
	if q.Get("state") != "anti-forgery" {
		t.Fatalf("state: got %q", q.Get("state"))
	}
	if q.Get("prompt") != "consent" {
		t.Fatalf("extra param: got %q", q.Get("prompt"))
	}
	if q.Get("from") != "app" {
		t.Fatalf("existing query on authorize URL must survive: got %q", q.Get("from"))
	}
	if q.Get("redirect_uri") != "http://localhost/other" {
		t.Fatalf("redirectTo override: got %q", q.Get("redirect_uri"))
	}
}

func TestRedirect_StateAppearsExactlyOnce(t *testing.T) {
	d := &statefulDialect{stubDialect{name: "stub", authURL: "https://stub.test/authorize"}}
	e := testEngine(t, d, map[string]any{"client_id": "id"})
	e.WithState("engine-state")

	got, err := e.Redirect("")
	if err != nil {
		t.Fatalf("Redirect: %v", err)
	}
	u, _ := url.Parse(got)
	states := u.Query()["state"]
	if len(states) != 1 {
		t.Fatalf("state count: got %d (%v)", len(states), states)
	}
	// el hook del dialecto manda
	if states[0] != "dialect-state" {
		t.Fatalf("state value: got %q", states[0])
	}
}

func TestRedirect_MalformedAuthorizeEndpoint(t *testing.T) {
	d := &stubDialect{name: "stub", authURL: "://broken"}
	e := testEngine(t, d, map[string]any{"client_id": "id"})
	if _, err := e.Redirect(""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestTokenFromCode_NormalizesJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("code") != "the-code" {
			t.Errorf("code: got %q", r.PostForm.Get("code"))
		}
		if r.PostForm.Get("client_id") != "fake_client_id" {
			t.Errorf("client_id: got %q", r.PostForm.Get("client_id"))
		}
		w.Header().Set("Content-Type", "application/json")
		// expires_in llega como string: debe coercionarse a int
		w.Write([]byte(`{"access_token":"fake_access_token","token_type":"bearer","expires_in":"3600","refresh_token":"fake_refresh"}`))
	}))
	defer srv.Close()

	d := &stubDialect{name: "stub", tokenURL: srv.URL}
	e := testEngine(t, d, map[string]any{
		"client_id":     "fake_client_id",
		"client_secret": "fake_secret",
	})

	tok, err := e.TokenFromCode(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("TokenFromCode: %v", err)
	}
	if tok.AccessToken != "fake_access_token" {
		t.Fatalf("access token: got %q", tok.AccessToken)
	}
	if tok.RefreshToken != "fake_refresh" {
		t.Fatalf("refresh token: got %q", tok.RefreshToken)
	}
	if tok.ExpiresIn != 3600 {
		t.Fatalf("expires_in: got %d", tok.ExpiresIn)
	}
	// las claves originales sobreviven junto a las canonicas
	if tok.Raw["token_type"] != "bearer" {
		t.Fatalf("original keys must survive: %v", tok.Raw)
	}
	if tok.Raw["expires_in"] != 3600 {
		t.Fatalf("canonical expires_in must be int: %v", tok.Raw["expires_in"])
	}
}

func TestTokenFromCode_MissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"bad_verification_code"}`))
	}))
	defer srv.Close()

	d := &stubDialect{name: "stub", tokenURL: srv.URL}
	e := testEngine(t, d, map[string]any{"client_id": "id", "client_secret": "s"})

	_, err := e.TokenFromCode(context.Background(), "stale-code")
	if !errors.Is(err, ErrAuthorizeFailed) {
		t.Fatalf("want ErrAuthorizeFailed, got %v", err)
	}
	var authErr *AuthorizeError
	if !errors.As(err, &authErr) {
		t.Fatalf("want *AuthorizeError, got %T", err)
	}
	if len(authErr.Body) == 0 {
		t.Fatalf("error must carry the raw body")
	}
}

func TestTokenFromCode_QueryFormatResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("access_token=query-token&expires_in=7200"))
	}))
	defer srv.Close()

	d := &stubDialect{name: "stub", tokenURL: srv.URL}
	e := testEngine(t, d, map[string]any{"client_id": "id", "client_secret": "s"})
	e.tokenFormat = formatQuery

	tok, err := e.TokenFromCode(context.Background(), "c")
	if err != nil {
		t.Fatalf("TokenFromCode: %v", err)
	}
	if tok.AccessToken != "query-token" || tok.ExpiresIn != 7200 {
		t.Fatalf("unexpected token: %+v", tok)
	}
}

func TestTokenFromCode_NoTokenEndpoint(t *testing.T) {
	d := &stubDialect{name: "stub"}
	e := testEngine(t, d, map[string]any{"client_id": "id"})
	if _, err := e.TokenFromCode(context.Background(), "c"); !errors.Is(err, ErrMethodNotSupported) {
		t.Fatalf("want ErrMethodNotSupported, got %v", err)
	}
}

func TestNormalizeTokenResponse_Idempotent(t *testing.T) {
	d := &stubDialect{name: "stub"}
	e := testEngine(t, d, map[string]any{"client_id": "id"})

	body := []byte(`{"access_token":"tok","refresh_token":"r","expires_in":3600}`)
	first, err := e.normalizeTokenResponse(body)
	if err != nil {
		t.Fatalf("first: %v", err)
	}

	again, err := e.normalizeTokenResponse(body)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.AccessToken != again.AccessToken ||
		first.RefreshToken != again.RefreshToken ||
		first.ExpiresIn != again.ExpiresIn {
		t.Fatalf("normalization must be idempotent: %+v vs %+v", first, again)
	}
}

func TestUserFromToken_AttachesRawAndToken(t *testing.T) {
	d := &stubDialect{
		name:    "stub",
		rawUser: map[string]any{"id": float64(42), "login": "octo"},
	}
	e := testEngine(t, d, map[string]any{"client_id": "id"})

	u, err := e.UserFromToken(context.Background(), "tok")
	if err != nil {
		t.Fatalf("UserFromToken: %v", err)
	}
	if u.ID() != "42" || u.Nickname() != "octo" {
		t.Fatalf("mapped user: id=%q nickname=%q", u.ID(), u.Nickname())
	}
	if u.AccessToken() != "tok" {
		t.Fatalf("access token not attached: %q", u.AccessToken())
	}
	if u.Raw()["login"] != "octo" {
		t.Fatalf("raw payload not attached")
	}
}

func TestUserFromCode_ComposesAndThreadsTokenMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","refresh_token":"r","expires_in":3600}`))
	}))
	defer srv.Close()

	d := &stubDialect{
		name:     "stub",
		tokenURL: srv.URL,
		rawUser:  map[string]any{"id": "7", "login": "octo"},
	}
	e := testEngine(t, d, map[string]any{"client_id": "id", "client_secret": "s"})

	u, err := e.UserFromCode(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("UserFromCode: %v", err)
	}
	if u.ID() != "7" {
		t.Fatalf("id: got %q", u.ID())
	}
	if u.AccessToken() != "tok" || u.RefreshToken() != "r" || u.ExpiresIn() != 3600 {
		t.Fatalf("token metadata not threaded: %q %q %d", u.AccessToken(), u.RefreshToken(), u.ExpiresIn())
	}
	if u.TokenResponse()["access_token"] != "tok" {
		t.Fatalf("token response not attached")
	}
}

func TestDo_TransportErrorOnHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	d := &stubDialect{name: "stub", tokenURL: srv.URL}
	e := testEngine(t, d, map[string]any{"client_id": "id", "client_secret": "s"})

	_, err := e.TokenFromCode(context.Background(), "c")
	if err == nil {
		t.Fatalf("want transport error")
	}
	// un fallo de transporte no es un fallo de autorizacion
	if errors.Is(err, ErrAuthorizeFailed) {
		t.Fatalf("status errors must stay plain: %v", err)
	}
}
