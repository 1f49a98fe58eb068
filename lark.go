package socialite

// Lark is the international Feishu deployment on open.larksuite.com.
type Lark struct {
	*Feishu
}

// NewLark creates a Lark provider.
func NewLark(cfg *Config) (*Lark, error) {
	inner, err := NewFeishu(cfg)
	if err != nil {
		return nil, err
	}
	inner.name = "lark"
	inner.baseURL = "https://open.larksuite.com"
	return &Lark{Feishu: inner}, nil
}
