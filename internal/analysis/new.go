package analysis

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Providers.
const (
	ProviderNone     = "none"
	ProviderEndpoint = "endpoint"
	ProviderOpenAI   = "openai"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 60 * time.Second

// Config selects and configures the analyzer chain.
type Config struct {
	Provider   string
	Endpoint   string
	BaseURL    string
	Model      string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int

	// RedisAddr enables the Redis cache. Without it a positive CacheTTL
	// selects the in-process cache.
	RedisAddr string
	CacheTTL  time.Duration
}

// New builds the analyzer described by cfg. An OpenAI provider without an API
// key degrades to the fallback analyzer, which is never cached.
func New(cfg Config, logger *zap.Logger) (Analyzer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var base Analyzer
	switch cfg.Provider {
	case "", ProviderNone:
		return FallbackAnalyzer{}, nil
	case ProviderEndpoint:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("analysis provider %q requires an endpoint", cfg.Provider)
		}
		base = NewEndpointClient(cfg.Endpoint, timeout, logger)
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			logger.Warn("no API key for the openai analysis provider, using fallback analysis",
				zap.String("op", "analysis.New"),
			)
			return FallbackAnalyzer{}, nil
		}
		retries := cfg.MaxRetries
		if retries == 0 {
			retries = defaultChatMaxRetries
		}
		base = NewChatClient(cfg.BaseURL, cfg.APIKey, cfg.Model, timeout, retries, logger)
	default:
		return nil, fmt.Errorf("unknown analysis provider %q", cfg.Provider)
	}

	switch {
	case cfg.RedisAddr != "":
		logger.Info("caching analyses in redis",
			zap.String("op", "analysis.New"),
			zap.String("addr", cfg.RedisAddr),
			zap.Duration("ttl", cfg.CacheTTL),
		)
		return NewCachedAnalyzer(base, NewRedisCache(cfg.RedisAddr, cfg.CacheTTL), logger), nil
	case cfg.CacheTTL > 0:
		return NewCachedAnalyzer(base, NewMemoryCache(cfg.CacheTTL), logger), nil
	default:
		return base, nil
	}
}
