package classifier

import (
	"context"
	"fmt"
	"time"

	"sales-assistant/internal/common/config"
	"sales-assistant/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// New builds the configured provider, wrapped in the Redis extraction cache when rdb is set and cache_ttl > 0.
func New(ctx context.Context, cfg config.ClassifierConfig, rdb *redis.Client, log logger.Logger) (Port, error) {
	var (
		port Port
		err  error
	)

	switch cfg.Provider {
	case "http", "":
		port = NewHTTPProvider(HTTPConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Timeout:    config.GetDuration(cfg.Timeout),
			MaxRetries: cfg.MaxRetries,
		}, log)
	case "gemini":
		port, err = NewGeminiProvider(ctx, GeminiConfig{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Timeout:    config.GetDuration(cfg.Timeout),
			MaxRetries: cfg.MaxRetries,
		}, log)
	case "static":
		port = NewStatic(`{"filters":[]}`)
	default:
		err = fmt.Errorf("unsupported classifier provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if rdb != nil && cfg.CacheTTL > 0 {
		port = NewCachedPort(port, rdb, time.Duration(cfg.CacheTTL)*time.Second, log)
	}
	return port, nil
}
