package socialite

// Toutiao rides the ByteDance open platform on the snssdk host.
type Toutiao struct {
	*Douyin
}

// NewToutiao creates a Toutiao provider.
func NewToutiao(cfg *Config) (*Toutiao, error) {
	inner, err := NewDouyin(cfg)
	if err != nil {
		return nil, err
	}
	inner.name = "toutiao"
	inner.baseURL = "https://open.snssdk.com"
	return &Toutiao{Douyin: inner}, nil
}
