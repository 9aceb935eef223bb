// Package settings is the branding facade the rest of the application uses,
// plus its HTTP handlers.
package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/HerbHall/brandkit/internal/autosave"
	"github.com/HerbHall/brandkit/internal/color"
	"github.com/HerbHall/brandkit/internal/event"
	"github.com/HerbHall/brandkit/internal/persist"
	"github.com/HerbHall/brandkit/internal/remote"
	"github.com/HerbHall/brandkit/pkg/models"
)

// ErrNotLoaded is returned before the first fetch completes.
var ErrNotLoaded = errors.New("branding not loaded yet")

// Gateway is the persistence chain.
type Gateway interface {
	Fetch(ctx context.Context) (models.ThemeConfig, persist.Tier)
	Write(ctx context.Context, patch models.ThemePatch) (models.ThemeConfig, error)
}

// Applier writes a config onto the styling surface.
type Applier interface {
	Apply(cfg models.ThemeConfig)
}

// Uploader stores logo and favicon binaries on the config service.
type Uploader interface {
	UploadLogo(ctx context.Context, filename string, r io.Reader) (remote.UploadResult, error)
	UploadFavicon(ctx context.Context, filename string, r io.Reader) (remote.UploadResult, error)
}

// Editor receives draft color edits.
type Editor interface {
	Edit(colors models.ColorSet)
	State() autosave.State
}

// Compile-time interface guards.
var (
	_ Gateway        = (*persist.Gateway)(nil)
	_ Uploader       = (*remote.Client)(nil)
	_ Editor         = (*autosave.Controller)(nil)
	_ autosave.Saver = (*Provider)(nil)
)

// Provider holds the active branding and keeps the styling surface in step
// with it.
type Provider struct {
	gateway  Gateway
	writer   Applier
	uploader Uploader
	bus      event.Publisher
	logger   *zap.Logger

	refreshGroup singleflight.Group

	// opMu serializes update and Refresh end to end.
	opMu sync.Mutex

	mu       sync.RWMutex
	current  *models.ThemeConfig
	draft    *models.ThemeConfig
	autosave Editor
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithPublisher publishes theme.loaded and theme.saved events.
func WithPublisher(p event.Publisher) ProviderOption {
	return func(pr *Provider) { pr.bus = p }
}

// WithUploader enables logo and favicon uploads.
func WithUploader(u Uploader) ProviderOption {
	return func(pr *Provider) { pr.uploader = u }
}

// NewProvider creates a Provider. Call Init before serving.
func NewProvider(gateway Gateway, writer Applier, logger *zap.Logger, opts ...ProviderOption) *Provider {
	p := &Provider{
		gateway: gateway,
		writer:  writer,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetAutosave attaches the controller that Preview feeds. The controller
// usually saves through this provider, so it is attached after construction.
func (p *Provider) SetAutosave(e Editor) {
	p.mu.Lock()
	p.autosave = e
	p.mu.Unlock()
}

// AutosaveState reports the attached controller's state, or "" without one.
func (p *Provider) AutosaveState() string {
	p.mu.RLock()
	e := p.autosave
	p.mu.RUnlock()
	if e == nil {
		return ""
	}
	return e.State().String()
}

// Init performs the startup fetch and apply.
func (p *Provider) Init(ctx context.Context) (models.ThemeConfig, persist.Tier) {
	return p.Refresh(ctx)
}

// Get returns the active config, or false before the first fetch completes.
func (p *Provider) Get() (models.ThemeConfig, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return models.ThemeConfig{}, false
	}
	return *p.current, true
}

type refreshResult struct {
	cfg  models.ThemeConfig
	tier persist.Tier
}

// Refresh re-runs the fetch chain and applies the result. Concurrent calls
// share one fetch.
func (p *Provider) Refresh(ctx context.Context) (models.ThemeConfig, persist.Tier) {
	v, _, _ := p.refreshGroup.Do("refresh", func() (any, error) {
		p.opMu.Lock()
		defer p.opMu.Unlock()

		cfg, tier := p.gateway.Fetch(ctx)
		p.writer.Apply(cfg)
		p.setCurrent(cfg, true)
		p.publish(ctx, event.TopicThemeLoaded, event.ThemeLoaded{Config: cfg, Tier: string(tier)})
		return refreshResult{cfg: cfg, tier: tier}, nil
	})
	res := v.(refreshResult)
	return res.cfg, res.tier
}

// Update persists patch and applies the result, even when the write was
// degraded. The error is nil for an authoritative save, matches
// persist.ErrDegradedWrite when only the local cache recorded it, and
// matches persist.ErrNotPersisted when nothing did.
func (p *Provider) Update(ctx context.Context, patch models.ThemePatch) (models.ThemeConfig, error) {
	return p.update(ctx, patch, event.SourceManual)
}

// SaveColors persists the three colors on behalf of the autosave controller.
func (p *Provider) SaveColors(ctx context.Context, colors models.ColorSet) error {
	_, err := p.update(ctx, colors.Patch(), event.SourceAutosave)
	return err
}

// Reset restores the default colors.
func (p *Provider) Reset(ctx context.Context) (models.ThemeConfig, error) {
	return p.Update(ctx, models.DefaultColors().Patch())
}

// Preview merges patch onto the working draft without persisting it, applies
// the draft and hands its colors to the autosave controller. The draft starts
// from the active config and is discarded by Refresh and by manual updates.
func (p *Provider) Preview(patch models.ThemePatch) models.ThemeConfig {
	patch = p.canonical(patch)

	p.mu.Lock()
	base := models.DefaultTheme()
	switch {
	case p.draft != nil:
		base = *p.draft
	case p.current != nil:
		base = *p.current
	}
	draft := base.Merge(patch)
	p.draft = &draft
	e := p.autosave
	p.mu.Unlock()

	p.writer.Apply(draft)
	if e != nil {
		e.Edit(draft.Colors())
	}
	return draft
}

// Draft returns the working draft, or false when there are no unsaved
// previews.
func (p *Provider) Draft() (models.ThemeConfig, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.draft == nil {
		return models.ThemeConfig{}, false
	}
	return *p.draft, true
}

// UploadLogo stores a logo on the config service and points the config at it.
func (p *Provider) UploadLogo(ctx context.Context, filename string, r io.Reader) (models.ThemeConfig, error) {
	if p.uploader == nil {
		return models.ThemeConfig{}, errors.New("uploads not configured")
	}
	res, err := p.uploader.UploadLogo(ctx, filename, r)
	if err != nil {
		return models.ThemeConfig{}, fmt.Errorf("upload logo: %w", err)
	}
	return p.Update(ctx, models.ThemePatch{LogoURL: models.String(res.LogoURL)})
}

// UploadFavicon stores a favicon on the config service and points the
// config at it.
func (p *Provider) UploadFavicon(ctx context.Context, filename string, r io.Reader) (models.ThemeConfig, error) {
	if p.uploader == nil {
		return models.ThemeConfig{}, errors.New("uploads not configured")
	}
	res, err := p.uploader.UploadFavicon(ctx, filename, r)
	if err != nil {
		return models.ThemeConfig{}, fmt.Errorf("upload favicon: %w", err)
	}
	return p.Update(ctx, models.ThemePatch{FaviconURL: models.String(res.FaviconURL)})
}

func (p *Provider) update(ctx context.Context, patch models.ThemePatch, source string) (models.ThemeConfig, error) {
	patch = p.canonical(patch)

	p.opMu.Lock()
	defer p.opMu.Unlock()

	cfg, err := p.gateway.Write(ctx, patch)
	p.writer.Apply(cfg)
	p.setCurrent(cfg, source == event.SourceManual)
	p.publish(ctx, event.TopicThemeSaved, event.ThemeSaved{
		Config:   cfg,
		Source:   source,
		Degraded: err != nil,
	})
	if err != nil {
		p.logger.Warn("branding update not saved remotely",
			zap.String("source", source),
			zap.Bool("local_only", persist.IsDegraded(err)),
			zap.Error(err),
		)
	}
	return cfg, err
}

// canonical converts hex colors in patch to triples and drops colors that
// parse as neither, so the stored record only ever holds triples.
func (p *Provider) canonical(patch models.ThemePatch) models.ThemePatch {
	patch.PrimaryColor = p.canonicalColor("primary_color", patch.PrimaryColor)
	patch.AccentColor = p.canonicalColor("accent_color", patch.AccentColor)
	patch.SidebarColor = p.canonicalColor("sidebar_color", patch.SidebarColor)
	return patch
}

func (p *Provider) canonicalColor(field string, v *string) *string {
	if v == nil {
		return nil
	}
	triple, err := color.ToTriple(*v)
	if err != nil {
		p.logger.Warn("dropping invalid color from update",
			zap.String("field", field),
			zap.String("value", *v),
		)
		return nil
	}
	return &triple
}

// setCurrent replaces the active config. dropDraft discards unsaved
// previews.
func (p *Provider) setCurrent(cfg models.ThemeConfig, dropDraft bool) {
	p.mu.Lock()
	p.current = &cfg
	if dropDraft {
		p.draft = nil
	}
	p.mu.Unlock()
}

func (p *Provider) publish(ctx context.Context, topic string, payload any) {
	if p.bus == nil {
		return
	}
	_ = p.bus.Publish(ctx, event.Event{Topic: topic, Source: "settings", Payload: payload})
}
