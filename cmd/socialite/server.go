package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/socialite"
	"github.com/dropDatabas3/socialite/cache"
	"github.com/dropDatabas3/socialite/internal/config"
	"github.com/dropDatabas3/socialite/internal/observability/logger"
)

// server es el demo login server: /auth/{provider} arma el redirect y
// /callback/{provider} resuelve el code a un usuario normalizado.
type server struct {
	cfg      *config.Config
	registry *socialite.Registry
	signer   *socialite.StateSigner
	creds    cache.Client
}

func newServer(cfg *config.Config) (*server, error) {
	creds, err := cache.New(cache.Config{
		Driver:   cfg.Cache.Driver,
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		Prefix:   cfg.Cache.Prefix,
	})
	if err != nil {
		return nil, err
	}
	return &server{
		cfg:      cfg,
		registry: socialite.New(),
		signer:   socialite.NewStateSigner(cfg.State.Secret, cfg.State.TTL),
		creds:    creds,
	}, nil
}

// provider instancia el provider configurado. Cada flow usa su propia
// instancia; el cache comparte los tokens delegados entre ellas.
func (s *server) provider(name string) (socialite.Provider, error) {
	values, ok := s.cfg.Providers[name]
	if !ok {
		return nil, socialite.ErrProviderNotFound
	}

	pcfg := socialite.NewConfig(values)
	if !pcfg.Has("redirect_url") && !pcfg.Has("redirect") {
		pcfg.Set("redirect_url", s.cfg.RedirectURL(name))
	}

	p, err := s.registry.Create(name, pcfg)
	if err != nil {
		return nil, err
	}
	if c, ok := p.(interface {
		WithCache(cache.Client) *socialite.Engine
	}); ok {
		c.WithCache(s.creds)
	}
	return p, nil
}

func (s *server) authorizeURL(name string) (string, error) {
	p, err := s.provider(name)
	if err != nil {
		return "", err
	}
	state, err := s.signer.Sign(socialite.StateClaims{Provider: name})
	if err != nil {
		return "", err
	}
	if e, ok := p.(interface {
		WithState(string) *socialite.Engine
	}); ok {
		e.WithState(state)
	}
	return p.Redirect("")
}

func runServer(cfg *config.Config) error {
	s, err := newServer(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.creds.Close() }()

	if err := socialite.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
		logger.L().Warn("metrics registration failed", logger.Component("server"), logger.Err(err))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/providers", s.listProviders)
	r.Get("/auth/{provider}", s.authRedirect)
	r.Get("/callback/{provider}", s.authCallback)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("demo login server listening",
			logger.Component("server"), logger.String("addr", cfg.Server.Addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.L().Info("shutting down", logger.Component("server"), logger.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(ctx)
	}
}

func (s *server) listProviders(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(s.cfg.Providers))
	for _, n := range s.registry.Names() {
		if _, ok := s.cfg.Providers[n]; ok {
			names = append(names, n)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": names})
}

func (s *server) authRedirect(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")

	url, err := s.authorizeURL(name)
	if err != nil {
		s.writeProviderErr(w, r, name, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (s *server) authCallback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")

	claims, err := s.signer.Parse(r.URL.Query().Get("state"))
	if err != nil {
		writeErr(w, "invalid_state", "state token is missing, invalid or expired", http.StatusBadRequest)
		return
	}
	if claims.Provider != name {
		writeErr(w, "provider_mismatch", "state was issued for another provider", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeErr(w, "missing_code", "authorization code is missing", http.StatusBadRequest)
		return
	}

	p, err := s.provider(name)
	if err != nil {
		s.writeProviderErr(w, r, name, err)
		return
	}

	user, err := p.UserFromCode(r.Context(), code)
	if err != nil {
		s.writeProviderErr(w, r, name, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *server) writeProviderErr(w http.ResponseWriter, r *http.Request, name string, err error) {
	logger.From(r.Context()).Warn("provider error",
		logger.Component("server"), logger.Provider(name), logger.Err(err))

	switch {
	case errors.Is(err, socialite.ErrProviderNotFound):
		writeErr(w, "unknown_provider", "provider is not configured", http.StatusNotFound)
	case errors.Is(err, socialite.ErrInvalidArgument):
		writeErr(w, "bad_provider_config", "provider configuration is invalid", http.StatusInternalServerError)
	case errors.Is(err, socialite.ErrAuthorizeFailed):
		writeErr(w, "authorize_failed", "provider rejected the authorization", http.StatusBadGateway)
	case errors.Is(err, socialite.ErrMethodNotSupported):
		writeErr(w, "unsupported_flow", "operation not supported by this provider", http.StatusBadRequest)
	default:
		writeErr(w, "exchange_failed", "could not complete the exchange", http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code, desc string, status int) {
	writeJSON(w, status, map[string]any{
		"error": code, "error_description": desc,
	})
}
