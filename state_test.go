package socialite

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestStateSigner_RoundTrip(t *testing.T) {
	s := NewStateSigner("super-secreto", time.Minute)

	tok, err := s.Sign(StateClaims{Provider: "github", Redirect: "https://app.test/cb"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Provider != "github" {
		t.Fatalf("provider: got %q", claims.Provider)
	}
	if claims.Redirect != "https://app.test/cb" {
		t.Fatalf("redirect: got %q", claims.Redirect)
	}
	if claims.Nonce == "" {
		t.Fatalf("nonce must be auto-filled")
	}
}

func TestStateSigner_Expired(t *testing.T) {
	s := NewStateSigner("super-secreto", time.Minute)
	s.ttl = -time.Minute // emitir ya vencido

	tok, err := s.Sign(StateClaims{Provider: "github"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := s.Parse(tok); !errors.Is(err, ErrStateExpired) {
		t.Fatalf("want ErrStateExpired, got %v", err)
	}
}

func TestStateSigner_WrongSecretAndGarbage(t *testing.T) {
	s := NewStateSigner("secreto-a", time.Minute)
	tok, err := s.Sign(StateClaims{Provider: "github"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	other := NewStateSigner("secreto-b", time.Minute)
	if _, err := other.Parse(tok); !errors.Is(err, ErrStateInvalid) {
		t.Fatalf("want ErrStateInvalid, got %v", err)
	}
	if _, err := s.Parse("garbage.token.here"); !errors.Is(err, ErrStateInvalid) {
		t.Fatalf("want ErrStateInvalid for garbage, got %v", err)
	}
}

func TestRandomState(t *testing.T) {
	a := RandomState()
	if len(a) != 32 || strings.Contains(a, "-") {
		t.Fatalf("unexpected state format: %q", a)
	}
	if a == RandomState() {
		t.Fatalf("states must not repeat")
	}
}
