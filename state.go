package socialite

import (
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StateClaims binds a state token to the provider and flow that issued
// it, so a callback can be validated against forgery and provider
// mix-ups.
type StateClaims struct {
	Provider string
	Redirect string
	Nonce    string
}

// Errors for state operations.
var (
	ErrStateInvalid = errors.New("socialite: invalid state token")
	ErrStateExpired = errors.New("socialite: state token expired")
)

const stateAudience = "socialite-state"

// StateSigner signs and validates JWT state tokens (HS256). Callers
// that keep server-side state can skip this and pass any opaque value
// to WithState; the signer exists for stateless callback handlers.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewStateSigner creates a signer. ttl <= 0 defaults to 10 minutes.
func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateSigner{secret: []byte(secret), ttl: ttl}
}

// Sign issues a state JWT. An empty Nonce gets a random one.
func (s *StateSigner) Sign(claims StateClaims) (string, error) {
	now := time.Now().UTC()
	nonce := claims.Nonce
	if nonce == "" {
		nonce = RandomState()
	}

	mapClaims := jwtv5.MapClaims{
		"aud":      stateAudience,
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
		"provider": claims.Provider,
		"nonce":    nonce,
	}
	if claims.Redirect != "" {
		mapClaims["redir"] = claims.Redirect
	}

	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, mapClaims).SignedString(s.secret)
}

// Parse validates a state JWT and extracts its claims.
func (s *StateSigner) Parse(token string) (*StateClaims, error) {
	tk, err := jwtv5.Parse(token, func(*jwtv5.Token) (any, error) { return s.secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithAudience(stateAudience),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrStateExpired
		}
		return nil, ErrStateInvalid
	}

	mapClaims, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok || !tk.Valid {
		return nil, ErrStateInvalid
	}

	return &StateClaims{
		Provider: claimString(mapClaims, "provider"),
		Redirect: claimString(mapClaims, "redir"),
		Nonce:    claimString(mapClaims, "nonce"),
	}, nil
}

func claimString(m jwtv5.MapClaims, key string) string {
	v, _ := m[key].(string)
	return v
}

// RandomState returns a random opaque state/nonce value.
func RandomState() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
