package socialite

import (
	"fmt"
	"sort"
	"sync"
)

// FactoryFunc builds a provider from a configuration.
type FactoryFunc func(cfg *Config) (Provider, error)

// Registry maps provider names to factories. Its lifecycle belongs to
// the composition root — there is no package-level mutable state.
// Register replaces an existing factory, so callers can override a
// built-in dialect with their own.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FactoryFunc
}

// New creates a registry with every built-in provider registered.
func New() *Registry {
	r := &Registry{factories: map[string]FactoryFunc{}}

	builtins := map[string]FactoryFunc{
		"alipay":      func(cfg *Config) (Provider, error) { return NewAlipay(cfg) },
		"azure":       func(cfg *Config) (Provider, error) { return NewAzure(cfg) },
		"baidu":       func(cfg *Config) (Provider, error) { return NewBaidu(cfg) },
		"dingtalk":    func(cfg *Config) (Provider, error) { return NewDingTalk(cfg) },
		"douban":      func(cfg *Config) (Provider, error) { return NewDouban(cfg) },
		"douyin":      func(cfg *Config) (Provider, error) { return NewDouyin(cfg) },
		"facebook":    func(cfg *Config) (Provider, error) { return NewFacebook(cfg) },
		"feishu":      func(cfg *Config) (Provider, error) { return NewFeishu(cfg) },
		"figma":       func(cfg *Config) (Provider, error) { return NewFigma(cfg) },
		"gitee":       func(cfg *Config) (Provider, error) { return NewGitee(cfg) },
		"github":      func(cfg *Config) (Provider, error) { return NewGitHub(cfg) },
		"google":      func(cfg *Config) (Provider, error) { return NewGoogle(cfg) },
		"lark":        func(cfg *Config) (Provider, error) { return NewLark(cfg) },
		"line":        func(cfg *Config) (Provider, error) { return NewLine(cfg) },
		"linkedin":    func(cfg *Config) (Provider, error) { return NewLinkedIn(cfg) },
		"open-wework": func(cfg *Config) (Provider, error) { return NewOpenWeWork(cfg) },
		"outlook":     func(cfg *Config) (Provider, error) { return NewOutlook(cfg) },
		"paypal":      func(cfg *Config) (Provider, error) { return NewPayPal(cfg) },
		"qcloud":      func(cfg *Config) (Provider, error) { return NewQCloud(cfg) },
		"qq":          func(cfg *Config) (Provider, error) { return NewQQ(cfg) },
		"taobao":      func(cfg *Config) (Provider, error) { return NewTaobao(cfg) },
		"toutiao":     func(cfg *Config) (Provider, error) { return NewToutiao(cfg) },
		"wechat":      func(cfg *Config) (Provider, error) { return NewWeChat(cfg) },
		"weibo":       func(cfg *Config) (Provider, error) { return NewWeibo(cfg) },
		"wework":      func(cfg *Config) (Provider, error) { return NewWeWork(cfg) },
		"xigua":       func(cfg *Config) (Provider, error) { return NewXiguaVideo(cfg) },
	}
	for name, f := range builtins {
		r.factories[name] = f
	}
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f FactoryFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Create instantiates the named provider with the given configuration.
func (r *Registry) Create(name string, cfg *Config) (Provider, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	return f(cfg)
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
