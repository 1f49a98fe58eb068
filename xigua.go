package socialite

// XiguaVideo rides the ByteDance open platform on the ixigua host.
type XiguaVideo struct {
	*Douyin
}

// NewXiguaVideo creates a Xigua Video provider.
func NewXiguaVideo(cfg *Config) (*XiguaVideo, error) {
	inner, err := NewDouyin(cfg)
	if err != nil {
		return nil, err
	}
	inner.name = "xigua"
	inner.baseURL = "https://open-api.ixigua.com"
	return &XiguaVideo{Douyin: inner}, nil
}
