package socialite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropDatabas3/socialite/cache"
	"github.com/dropDatabas3/socialite/internal/observability/logger"
)

// responseFormat declares how a dialect's token endpoint encodes its
// response body.
type responseFormat int

const (
	formatJSON  responseFormat = iota // JSON object (default)
	formatQuery                       // application/x-www-form-urlencoded string (qq)
)

const defaultTimeout = 10 * time.Second

// Engine is the shared authorization-code exchange state machine. A
// concrete provider embeds an *Engine and implements Dialect (plus any
// optional upgrades); the engine drives redirect-URL construction, the
// code→token and token→user exchanges, and response normalization.
//
// The fluent mutators configure per-flow state (state token, scopes,
// extra parameters) in place. One engine serves one logical login flow
// at a time; construct one instance per flow for concurrent use.
type Engine struct {
	dialect Dialect
	config  *Config

	redirectURL    string
	state          string
	scopes         []string
	scopeSeparator string
	extra          url.Values

	// Token-response key names the dialect uses for the three canonical
	// fields. Defaults are the OAuth2 names.
	accessTokenKey  string
	refreshTokenKey string
	expiresInKey    string
	tokenFormat     responseFormat

	httpClient *http.Client
	credCache  cache.Client
}

// newEngine builds an engine for the dialect, normalizing the config in
// place: app_id/appid/client_key alias to client_id, app_secret/secret
// to client_secret, redirect to redirect_url.
func newEngine(d Dialect, cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = NewConfig(nil)
	}

	if !cfg.Has("client_id") {
		for _, alias := range []string{"app_id", "appid", "client_key", "corp_id", "suite_id"} {
			if cfg.Has(alias) {
				cfg.Set("client_id", cfg.Get(alias, nil))
				break
			}
		}
	}
	if !cfg.Has("client_secret") {
		for _, alias := range []string{"app_secret", "secret", "corp_secret", "suite_secret"} {
			if cfg.Has(alias) {
				cfg.Set("client_secret", cfg.Get(alias, nil))
				break
			}
		}
	}
	if !cfg.Has("redirect_url") && cfg.Has("redirect") {
		cfg.Set("redirect_url", cfg.Get("redirect", nil))
	}

	if !cfg.Has("client_id") {
		return nil, invalidArgf("%s: missing client_id", d.Name())
	}

	e := &Engine{
		dialect:         d,
		config:          cfg,
		redirectURL:     cfg.GetString("redirect_url"),
		scopes:          toStringSlice(cfg.Get("scopes", nil)),
		scopeSeparator:  ",",
		extra:           url.Values{},
		accessTokenKey:  "access_token",
		refreshTokenKey: "refresh_token",
		expiresInKey:    "expires_in",
	}
	return e, nil
}

// Name returns the dialect's provider identifier.
func (e *Engine) Name() string { return e.dialect.Name() }

// Config returns the provider configuration.
func (e *Engine) Config() *Config { return e.config }

// ClientID returns the configured client id.
func (e *Engine) ClientID() string { return e.config.GetString("client_id") }

// ClientSecret returns the configured client secret.
func (e *Engine) ClientSecret() string { return e.config.GetString("client_secret") }

// RedirectURL returns the redirect URL currently in effect.
func (e *Engine) RedirectURL() string { return e.redirectURL }

// State returns the anti-forgery state token, if one was set.
func (e *Engine) State() string { return e.state }

// Scopes returns the scopes currently in effect.
func (e *Engine) Scopes() []string { return e.scopes }

// WithScopes replaces the scope set for subsequent calls.
func (e *Engine) WithScopes(scopes ...string) *Engine {
	e.scopes = scopes
	return e
}

// WithScopeSeparator replaces the join character used when formatting
// the scope parameter.
func (e *Engine) WithScopeSeparator(sep string) *Engine {
	e.scopeSeparator = sep
	return e
}

// WithState sets the anti-forgery state token for the next Redirect.
func (e *Engine) WithState(state string) *Engine {
	e.state = state
	return e
}

// WithRedirectURL replaces the redirect URL for subsequent calls.
func (e *Engine) WithRedirectURL(u string) *Engine {
	e.redirectURL = u
	return e
}

// With merges extra authorization query parameters.
func (e *Engine) With(params map[string]string) *Engine {
	for k, v := range params {
		e.extra.Set(k, v)
	}
	return e
}

// WithHTTPClient injects the HTTP client used for all exchanges.
// Timeout and cancellation policy belong entirely to this client (and
// the per-call context); the engine adds none of its own.
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	e.httpClient = c
	return e
}

// WithCache injects a credential cache shared across instances.
// Only delegated-token dialects (wework, openwework, feishu) consult it.
func (e *Engine) WithCache(c cache.Client) *Engine {
	e.credCache = c
	return e
}

func (e *Engine) cacheClient() cache.Client { return e.credCache }

// HTTPClient returns the injected client, lazily building a default one
// (timeout from the "timeout" config key in seconds, 10s otherwise).
func (e *Engine) HTTPClient() *http.Client {
	if e.httpClient == nil {
		timeout := defaultTimeout
		if secs := e.config.GetInt("timeout", 0); secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
		e.httpClient = &http.Client{Timeout: timeout}
	}
	return e.httpClient
}

// Redirect builds the authorization URL. A non-empty redirectTo
// replaces the configured redirect URL for this and subsequent calls.
func (e *Engine) Redirect(redirectTo string) (string, error) {
	if redirectTo != "" {
		e.redirectURL = redirectTo
	}

	base := e.dialect.AuthorizeURL()
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" {
		return "", invalidArgf("%s: malformed authorize endpoint %q", e.Name(), base)
	}

	q := u.Query()
	for k, vs := range e.codeFields() {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (e *Engine) codeFields() url.Values {
	var fields url.Values
	if d, ok := e.dialect.(codeFielder); ok {
		fields = d.CodeFields(e)
		// Caller extras ride along; keys the dialect set itself win.
		for k, vs := range e.extra {
			if _, taken := fields[k]; taken {
				continue
			}
			for _, v := range vs {
				fields.Set(k, v)
			}
		}
	} else {
		fields = url.Values{}
		fields.Set("client_id", e.ClientID())
		if e.redirectURL != "" {
			fields.Set("redirect_uri", e.redirectURL)
		}
		fields.Set("scope", e.formatScopes())
		fields.Set("response_type", "code")
		for k, vs := range e.extra {
			for _, v := range vs {
				fields.Set(k, v)
			}
		}
	}
	if e.state != "" && fields.Get("state") == "" {
		fields.Set("state", e.state)
	}
	return fields
}

func (e *Engine) formatScopes() string {
	return strings.Join(e.scopes, e.scopeSeparator)
}

// TokenFromCode exchanges an authorization code for a normalized token
// response.
func (e *Engine) TokenFromCode(ctx context.Context, code string) (*Token, error) {
	start := time.Now()
	body, err := e.requestToken(ctx, code)
	if err != nil {
		observeExchange(e.Name(), opToken, resultError, time.Since(start))
		return nil, err
	}
	tok, err := e.normalizeTokenResponse(body)
	if err != nil {
		observeExchange(e.Name(), opToken, resultFailed, time.Since(start))
		logger.From(ctx).Warn("token exchange rejected",
			logger.Component("socialite"), logger.Provider(e.Name()), logger.Err(err))
		return nil, err
	}
	observeExchange(e.Name(), opToken, resultOK, time.Since(start))
	return tok, nil
}

func (e *Engine) requestToken(ctx context.Context, code string) ([]byte, error) {
	if d, ok := e.dialect.(tokenRequester); ok {
		return d.RequestToken(ctx, e, code)
	}
	tokenURL := e.dialect.TokenURL()
	if tokenURL == "" {
		return nil, notSupportedf("%s: no token endpoint", e.Name())
	}
	return e.postForm(ctx, tokenURL, e.tokenFields(code), map[string]string{"Accept": "application/json"})
}

func (e *Engine) tokenFields(code string) url.Values {
	if d, ok := e.dialect.(tokenFielder); ok {
		return d.TokenFields(e, code)
	}
	f := url.Values{}
	f.Set("client_id", e.ClientID())
	f.Set("client_secret", e.ClientSecret())
	f.Set("code", code)
	if e.redirectURL != "" {
		f.Set("redirect_uri", e.redirectURL)
	}
	return f
}

// normalizeTokenResponse decodes a raw token-endpoint body and re-keys
// the dialect's field names onto the canonical access_token /
// refresh_token / expires_in, keeping the provider's original keys
// alongside. Missing expiry is 0, never an error. Idempotent: feeding a
// response that already carries canonical keys changes nothing.
func (e *Engine) normalizeTokenResponse(body []byte) (*Token, error) {
	raw, err := e.decodeTokenBody(body)
	if err != nil || raw == nil {
		return nil, &AuthorizeError{Reason: "invalid token response", Body: body}
	}

	if d, ok := e.dialect.(tokenUnwrapper); ok {
		raw, err = d.UnwrapTokenResponse(raw, body)
		if err != nil {
			return nil, err
		}
	}

	access := stringValue(raw[e.accessTokenKey])
	if access == "" {
		return nil, &AuthorizeError{
			Reason: fmt.Sprintf("no %s in token response", e.accessTokenKey),
			Body:   body,
		}
	}

	tok := &Token{
		AccessToken:  access,
		RefreshToken: stringValue(raw[e.refreshTokenKey]),
		ExpiresIn:    intValue(raw[e.expiresInKey]),
		Raw:          raw,
	}

	// Superset: canonical aliases live alongside the dialect's own keys.
	raw["access_token"] = tok.AccessToken
	if tok.RefreshToken != "" {
		raw["refresh_token"] = tok.RefreshToken
	}
	raw["expires_in"] = tok.ExpiresIn
	return tok, nil
}

func (e *Engine) decodeTokenBody(body []byte) (map[string]any, error) {
	if e.tokenFormat == formatQuery {
		vals, err := url.ParseQuery(strings.TrimSpace(string(body)))
		if err != nil {
			return nil, err
		}
		m := make(map[string]any, len(vals))
		for k := range vals {
			m[k] = vals.Get(k)
		}
		return m, nil
	}
	return decodeJSONMap(body)
}

// UserFromToken fetches the profile endpoint with the token, maps it
// through the dialect, and attaches the raw payload and access token.
func (e *Engine) UserFromToken(ctx context.Context, token string) (*User, error) {
	start := time.Now()
	raw, err := e.dialect.RawUser(ctx, token)
	if err != nil {
		observeExchange(e.Name(), opUser, resultError, time.Since(start))
		return nil, err
	}
	observeExchange(e.Name(), opUser, resultOK, time.Since(start))
	return e.dialect.MapUser(raw).SetRaw(raw).SetAccessToken(token), nil
}

// UserFromCode composes the token and user exchanges, then threads
// refresh token, expiry and the token response onto the User. Dialects
// with no token step override the whole flow.
func (e *Engine) UserFromCode(ctx context.Context, code string) (*User, error) {
	if d, ok := e.dialect.(codeUserExchanger); ok {
		return d.ExchangeCodeForUser(ctx, e, code)
	}

	tok, err := e.TokenFromCode(ctx, code)
	if err != nil {
		return nil, err
	}
	user, err := e.UserFromToken(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}
	return user.
		SetRefreshToken(tok.RefreshToken).
		SetExpiresIn(tok.ExpiresIn).
		SetTokenResponse(tok.Raw), nil
}

// ---- transport helpers -------------------------------------------------
//
// The engine never inspects status codes for provider-level errors
// (those hide in 2xx payloads); a non-2xx status is a transport-level
// failure and propagates as a plain error.

func (e *Engine) getJSON(ctx context.Context, rawurl string, query url.Values, headers map[string]string) ([]byte, error) {
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(rawurl, "?") {
			sep = "&"
		}
		rawurl += sep + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, err
	}
	return e.do(req, headers)
}

func (e *Engine) postForm(ctx context.Context, rawurl string, form url.Values, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawurl, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, headers)
}

func (e *Engine) postJSON(ctx context.Context, rawurl string, payload any, headers map[string]string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawurl, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, headers)
}

func (e *Engine) do(req *http.Request, headers map[string]string) ([]byte, error) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.HTTPClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	logger.From(req.Context()).Debug("provider exchange",
		logger.Component("socialite"),
		logger.Provider(e.Name()),
		logger.Endpoint(req.URL.Host+req.URL.Path),
		logger.Status(resp.StatusCode),
	)

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("socialite: %s %s: status %d: %s",
			req.Method, req.URL.Host+req.URL.Path, resp.StatusCode, body)
	}
	return body, nil
}
