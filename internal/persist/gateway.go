// Package persist reads and writes the branding config across three tiers:
// the remote config service, the local durable cache, and compiled-in
// defaults, tried in that order.
package persist

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/HerbHall/brandkit/internal/color"
	"github.com/HerbHall/brandkit/internal/metrics"
	"github.com/HerbHall/brandkit/pkg/models"
)

// Gateway owns the in-memory config and the fetch/write policy.
type Gateway struct {
	remote  RemoteService
	cache   KV
	sources []Source
	logger  *zap.Logger

	// opMu serializes Fetch and Write so two operations never race to set
	// the cache. mu guards current only.
	opMu    sync.Mutex
	mu      sync.RWMutex
	current *models.ThemeConfig
}

// NewGateway builds a gateway with the remote, local, default chain.
func NewGateway(remote RemoteService, cache KV, logger *zap.Logger) *Gateway {
	return &Gateway{
		remote: remote,
		cache:  cache,
		sources: []Source{
			RemoteSource{Service: remote},
			LocalSource{Cache: cache},
			DefaultSource{},
		},
		logger: logger,
	}
}

// Sources returns the fetch chain in precedence order.
func (g *Gateway) Sources() []Source {
	out := make([]Source, len(g.sources))
	copy(out, g.sources)
	return out
}

// Current returns the in-memory config and whether one has been loaded.
func (g *Gateway) Current() (models.ThemeConfig, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return models.ThemeConfig{}, false
	}
	return *g.current, true
}

// Fetch walks the source chain and returns the first config that loads,
// together with the tier that served it. The result is cached locally
// whichever tier produced it.
func (g *Gateway) Fetch(ctx context.Context) (models.ThemeConfig, Tier) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	var (
		cfg  models.ThemeConfig
		tier = TierDefault
	)
	for _, src := range g.sources {
		loaded, err := src.Load(ctx)
		if err != nil {
			g.logger.Warn("config tier failed, falling back",
				zap.String("tier", string(src.Tier())),
				zap.Error(err),
			)
			continue
		}
		cfg, tier = loaded, src.Tier()
		break
	}
	if tier == TierDefault && cfg.ID == "" {
		cfg = models.DefaultTheme()
	}

	cfg = g.normalize(cfg)
	if err := g.store(ctx, cfg); err != nil {
		g.logger.Warn("cache last-known-good config", zap.Error(err))
	}
	g.setCurrent(cfg)

	metrics.FetchTotal.WithLabelValues(string(tier)).Inc()
	g.logger.Info("config loaded",
		zap.String("tier", string(tier)),
		zap.String("id", cfg.ID),
	)
	return cfg, tier
}

// Write merges patch onto the current config and sends it to the remote
// service. On success the service's answer becomes the current config. On
// remote failure the merged config is still cached and made current, and a
// *DegradedWriteError is returned alongside it. If the cache also fails the
// merged config is kept in memory and the error matches ErrNotPersisted.
func (g *Gateway) Write(ctx context.Context, patch models.ThemePatch) (models.ThemeConfig, error) {
	g.opMu.Lock()
	defer g.opMu.Unlock()

	base, ok := g.Current()
	if !ok {
		base = models.DefaultTheme()
	}
	patch = g.canonical(patch)

	saved, remoteErr := g.remote.UpdateSettings(ctx, patch)
	if remoteErr == nil {
		cfg := g.normalize(saved)
		if err := g.store(ctx, cfg); err != nil {
			g.logger.Warn("cache authoritative config", zap.Error(err))
		}
		g.setCurrent(cfg)
		metrics.WriteTotal.WithLabelValues(metrics.OutcomeAuthoritative).Inc()
		return cfg, nil
	}
	remoteErr = fmt.Errorf("%w: %w", ErrRemoteUnavailable, remoteErr)

	merged := g.normalize(base.Merge(patch))
	g.setCurrent(merged)

	if err := g.store(ctx, merged); err != nil {
		metrics.WriteTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		g.logger.Error("write not persisted anywhere",
			zap.NamedError("remote_error", remoteErr),
			zap.NamedError("cache_error", err),
		)
		return merged, fmt.Errorf("%w: %w; %w", ErrNotPersisted, remoteErr, err)
	}

	metrics.WriteTotal.WithLabelValues(metrics.OutcomeDegraded).Inc()
	g.logger.Warn("remote write failed, saved locally", zap.Error(remoteErr))
	return merged, &DegradedWriteError{Cause: remoteErr}
}

// canonical rewrites patch colors as triples and drops those that parse as
// neither hex nor triple, so the service only ever receives triples.
func (g *Gateway) canonical(patch models.ThemePatch) models.ThemePatch {
	patch.PrimaryColor = g.patchColor("primary_color", patch.PrimaryColor)
	patch.AccentColor = g.patchColor("accent_color", patch.AccentColor)
	patch.SidebarColor = g.patchColor("sidebar_color", patch.SidebarColor)
	return patch
}

func (g *Gateway) patchColor(field string, v *string) *string {
	if v == nil {
		return nil
	}
	triple, err := color.ToTriple(*v)
	if err != nil {
		g.logger.Warn("dropping invalid color from write",
			zap.String("field", field),
			zap.String("value", *v),
			zap.Error(err),
		)
		return nil
	}
	return &triple
}

func (g *Gateway) setCurrent(cfg models.ThemeConfig) {
	g.mu.Lock()
	g.current = &cfg
	g.mu.Unlock()
}

func (g *Gateway) store(ctx context.Context, cfg models.ThemeConfig) error {
	raw, err := encodeConfig(cfg)
	if err != nil {
		return err
	}
	return g.cache.Set(ctx, CacheKey, raw)
}

// normalize fills identity fields and replaces invalid or missing colors
// with the last known-good value, or the default when there is none.
func (g *Gateway) normalize(cfg models.ThemeConfig) models.ThemeConfig {
	if cfg.ID == "" {
		cfg.ID = models.DefaultThemeID
	}
	if cfg.AppName == "" {
		cfg.AppName = models.DefaultAppName
	}

	good := models.DefaultColors()
	if cur, ok := g.Current(); ok {
		good = cur.Colors()
	}
	cfg.PrimaryColor = g.validColor("primary_color", cfg.PrimaryColor, good.Primary)
	cfg.AccentColor = g.validColor("accent_color", cfg.AccentColor, good.Accent)
	cfg.SidebarColor = g.validColor("sidebar_color", cfg.SidebarColor, good.Sidebar)
	return cfg
}

func (g *Gateway) validColor(field, value, fallback string) string {
	if value == "" {
		return fallback
	}
	triple, err := color.ToTriple(value)
	if err != nil {
		g.logger.Warn("invalid color, keeping last known-good",
			zap.String("field", field),
			zap.String("value", value),
			zap.Error(err),
		)
		return fallback
	}
	return triple
}
