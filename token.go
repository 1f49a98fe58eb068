package socialite

// Token is a normalized token-endpoint response. The canonical fields
// are re-keyed from whatever names the provider uses; Raw holds the
// superset of the provider's original keys plus the canonical aliases,
// so downstream code can rely on either.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	Raw          map[string]any
}
