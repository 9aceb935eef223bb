package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HerbHall/brandkit/internal/store"
	"github.com/HerbHall/brandkit/pkg/models"
)

// CacheKey is the fixed key the last-known-good config is cached under.
const CacheKey = "app_settings"

// Tier names the persistence tier that produced a config.
type Tier string

const (
	TierRemote  Tier = "remote"
	TierLocal   Tier = "local"
	TierDefault Tier = "default"
)

// Source is one tier of the fetch chain.
type Source interface {
	Tier() Tier
	Load(ctx context.Context) (models.ThemeConfig, error)
}

// RemoteService is the subset of the config service client the gateway uses.
type RemoteService interface {
	GetSettings(ctx context.Context) (models.ThemeConfig, error)
	UpdateSettings(ctx context.Context, patch models.ThemePatch) (models.ThemeConfig, error)
}

// KV is the local durable cache.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// RemoteSource loads from the config service.
type RemoteSource struct {
	Service RemoteService
}

func (RemoteSource) Tier() Tier { return TierRemote }

func (s RemoteSource) Load(ctx context.Context) (models.ThemeConfig, error) {
	cfg, err := s.Service.GetSettings(ctx)
	if err != nil {
		return models.ThemeConfig{}, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	return cfg, nil
}

// LocalSource loads the last-known-good config from the cache.
type LocalSource struct {
	Cache KV
}

func (LocalSource) Tier() Tier { return TierLocal }

func (s LocalSource) Load(ctx context.Context) (models.ThemeConfig, error) {
	raw, err := s.Cache.Get(ctx, CacheKey)
	if errors.Is(err, store.ErrCacheMiss) {
		return models.ThemeConfig{}, ErrNoCachedConfig
	}
	if err != nil {
		return models.ThemeConfig{}, fmt.Errorf("read cache: %w", err)
	}
	return decodeConfig(raw)
}

// DefaultSource yields the compiled-in defaults and never fails.
type DefaultSource struct{}

func (DefaultSource) Tier() Tier { return TierDefault }

func (DefaultSource) Load(context.Context) (models.ThemeConfig, error) {
	return models.DefaultTheme(), nil
}

func decodeConfig(raw string) (models.ThemeConfig, error) {
	var cfg models.ThemeConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return models.ThemeConfig{}, fmt.Errorf("%w: %v", ErrMalformedStoredConfig, err)
	}
	if !cfg.Colors().Complete() && cfg.AppName == "" && cfg.ID == "" {
		return models.ThemeConfig{}, fmt.Errorf("%w: empty record", ErrMalformedStoredConfig)
	}
	return cfg, nil
}

func encodeConfig(cfg models.ThemeConfig) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}
