package settings_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/HerbHall/brandkit/internal/autosave"
	"github.com/HerbHall/brandkit/internal/event"
	"github.com/HerbHall/brandkit/internal/persist"
	"github.com/HerbHall/brandkit/internal/remote"
	"github.com/HerbHall/brandkit/internal/settings"
	"github.com/HerbHall/brandkit/internal/style"
	"github.com/HerbHall/brandkit/internal/testutil"
	"github.com/HerbHall/brandkit/pkg/models"
)

type env struct {
	svc      *testutil.ConfigService
	doc      *style.Document
	bus      *event.Bus
	provider *settings.Provider
	autosave *autosave.Controller
}

func newEnv(t *testing.T, record *models.ThemeConfig) *env {
	t.Helper()
	logger := zaptest.NewLogger(t)
	svc := testutil.NewConfigService(t, record)
	client := remote.NewClient(svc.URL(), time.Second)
	gateway := persist.NewGateway(client, testutil.NewCache(t), logger)

	bus := event.NewBus(logger)
	doc := style.NewDocument()
	writer := style.NewWriter(doc, logger, style.WithPublisher(bus))
	provider := settings.NewProvider(gateway, writer, logger,
		settings.WithPublisher(bus),
		settings.WithUploader(client),
	)
	ctl := autosave.New(provider, autosave.WithQuietPeriod(time.Hour))
	ctl.Subscribe(bus)
	provider.SetAutosave(ctl)
	t.Cleanup(ctl.Stop)

	return &env{svc: svc, doc: doc, bus: bus, provider: provider, autosave: ctl}
}

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) handle(_ context.Context, e event.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Topic)
	}
	return out
}

func TestGetBeforeInit(t *testing.T) {
	e := newEnv(t, nil)
	_, ok := e.provider.Get()
	assert.False(t, ok)
}

func TestInitAppliesFetchedConfig(t *testing.T) {
	rec := testutil.NewTheme(testutil.WithAppName("Acme CRM"), testutil.WithCustomCSS(".x{}"))
	e := newEnv(t, &rec)
	var r recorder
	e.bus.SubscribeAll(r.handle)

	cfg, tier := e.provider.Init(context.Background())
	assert.Equal(t, persist.TierRemote, tier)
	assert.Equal(t, rec, cfg)

	got, ok := e.provider.Get()
	require.True(t, ok)
	assert.Equal(t, rec, got)

	snap := e.doc.Snapshot()
	assert.Equal(t, "Acme CRM", snap.Title)
	assert.Equal(t, 1, snap.NodeCount(style.CustomNodeID))
	assert.Equal(t, []string{event.TopicStyleApplied, event.TopicThemeLoaded}, r.topics())

	base, ok := e.autosave.Baseline()
	require.True(t, ok)
	assert.Equal(t, rec.Colors(), base)
}

func TestUpdateHealthyRemoteScenario(t *testing.T) {
	e := newEnv(t, nil)
	e.provider.Init(context.Background())

	cfg, err := e.provider.Update(context.Background(), models.ThemePatch{
		AccentColor:  models.String("45 90% 50%"),
		PrimaryColor: models.String("152 45% 28%"),
		SidebarColor: models.String("152 35% 15%"),
	})
	require.NoError(t, err)

	got, _ := e.provider.Get()
	assert.Equal(t, cfg, got)
	assert.Equal(t, "152 45% 28%", got.PrimaryColor)
	assert.Equal(t, "45 90% 50%", got.AccentColor)
	assert.Equal(t, "152 35% 15%", got.SidebarColor)

	vars := e.doc.Snapshot().Variables
	for _, name := range []string{style.VarGradientPrimary, style.VarGradientAccent, style.VarGradientSidebar} {
		assert.NotEmpty(t, vars[name], name)
	}
}

func TestUpdateDegradedStillApplies(t *testing.T) {
	rec := testutil.NewTheme()
	e := newEnv(t, &rec)
	e.provider.Init(context.Background())
	e.svc.SetFailing(true)

	cfg, err := e.provider.Update(context.Background(), models.ThemePatch{PrimaryColor: models.String("0 0% 0%")})
	require.Error(t, err)
	assert.ErrorIs(t, err, persist.ErrDegradedWrite)
	assert.Equal(t, "0 0% 0%", cfg.PrimaryColor)

	got, _ := e.provider.Get()
	assert.Equal(t, "0 0% 0%", got.PrimaryColor)
	assert.Equal(t, "0 0% 0%", e.doc.Snapshot().Variables[style.VarPrimary])

	base, _ := e.autosave.Baseline()
	assert.Equal(t, rec.PrimaryColor, base.Primary, "degraded save does not move the autosave baseline")
}

func TestUpdateConvertsHexToTriple(t *testing.T) {
	e := newEnv(t, nil)
	e.provider.Init(context.Background())

	cfg, err := e.provider.Update(context.Background(), models.ThemePatch{PrimaryColor: models.String("#000000")})
	require.NoError(t, err)
	assert.Equal(t, "0 0% 0%", cfg.PrimaryColor)

	puts := e.svc.Puts()
	require.Len(t, puts, 1)
	assert.Equal(t, "0 0% 0%", *puts[0].PrimaryColor, "hex never reaches the service")
}

func TestRefreshRecoversAfterDegradedWrite(t *testing.T) {
	rec := testutil.NewTheme()
	e := newEnv(t, &rec)
	e.provider.Init(context.Background())

	e.svc.SetFailing(true)
	_, err := e.provider.Update(context.Background(), models.ThemePatch{AppName: models.String("Offline edit")})
	require.True(t, persist.IsDegraded(err))

	e.svc.SetFailing(false)
	cfg, tier := e.provider.Refresh(context.Background())
	assert.Equal(t, persist.TierRemote, tier)
	assert.Equal(t, rec.AppName, cfg.AppName, "no silent retry; the service record wins")
}

func TestReset(t *testing.T) {
	rec := testutil.NewTheme(testutil.WithColors("1 1% 1%", "2 2% 2%", "3 3% 3%"))
	e := newEnv(t, &rec)
	e.provider.Init(context.Background())

	cfg, err := e.provider.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultColors(), cfg.Colors())
	assert.Equal(t, rec.AppName, cfg.AppName)
}

func TestPreviewAppliesWithoutPersisting(t *testing.T) {
	rec := testutil.NewTheme()
	e := newEnv(t, &rec)
	e.provider.Init(context.Background())

	draft := e.provider.Preview(models.ThemePatch{AccentColor: models.String("#ff0000")})
	assert.Equal(t, "0 100% 50%", draft.AccentColor)
	assert.Equal(t, "0 100% 50%", e.doc.Snapshot().Variables[style.VarAccent])

	got, _ := e.provider.Get()
	assert.Equal(t, rec.AccentColor, got.AccentColor)
	assert.Empty(t, e.svc.Puts())

	assert.Equal(t, autosave.StatePendingChange, e.autosave.State())
	assert.Equal(t, "pending_change", e.provider.AutosaveState())
	assert.Equal(t, draft.Colors(), e.autosave.Draft())
}

func TestPreviewAccumulatesDraft(t *testing.T) {
	rec := testutil.NewTheme()
	e := newEnv(t, &rec)
	e.provider.Init(context.Background())

	e.provider.Preview(models.ThemePatch{PrimaryColor: models.String("10 10% 10%")})
	draft := e.provider.Preview(models.ThemePatch{AccentColor: models.String("20 20% 20%")})

	assert.Equal(t, "10 10% 10%", draft.PrimaryColor, "earlier preview kept")
	assert.Equal(t, "20 20% 20%", draft.AccentColor)
	assert.Equal(t, rec.SidebarColor, draft.SidebarColor)
	assert.Equal(t, "10 10% 10%", e.doc.Snapshot().Variables[style.VarPrimary])
	assert.Equal(t, models.ColorSet{
		Primary: "10 10% 10%", Accent: "20 20% 20%", Sidebar: rec.SidebarColor,
	}, e.autosave.Draft())

	got, ok := e.provider.Draft()
	require.True(t, ok)
	assert.Equal(t, draft, got)
}

func TestManualUpdateDiscardsDraft(t *testing.T) {
	rec := testutil.NewTheme()
	e := newEnv(t, &rec)
	e.provider.Init(context.Background())

	e.provider.Preview(models.ThemePatch{PrimaryColor: models.String("10 10% 10%")})
	_, err := e.provider.Update(context.Background(), models.ThemePatch{AccentColor: models.String("20 20% 20%")})
	require.NoError(t, err)

	_, ok := e.provider.Draft()
	assert.False(t, ok)

	draft := e.provider.Preview(models.ThemePatch{SidebarColor: models.String("30 30% 30%")})
	assert.Equal(t, rec.PrimaryColor, draft.PrimaryColor, "next draft starts from the saved config")
	assert.Equal(t, "20 20% 20%", draft.AccentColor)
}

func TestRefreshDiscardsDraft(t *testing.T) {
	e := newEnv(t, nil)
	e.provider.Init(context.Background())
	e.provider.Preview(models.ThemePatch{PrimaryColor: models.String("10 10% 10%")})

	e.provider.Refresh(context.Background())
	_, ok := e.provider.Draft()
	assert.False(t, ok)
}

// storeGateway merges writes into an in-memory record and signals each one.
type storeGateway struct {
	mu      sync.Mutex
	cfg     models.ThemeConfig
	written chan string
}

func (g *storeGateway) Fetch(context.Context) (models.ThemeConfig, persist.Tier) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg, persist.TierRemote
}

func (g *storeGateway) Write(_ context.Context, patch models.ThemePatch) (models.ThemeConfig, error) {
	g.mu.Lock()
	g.cfg = g.cfg.Merge(patch)
	cfg := g.cfg
	g.mu.Unlock()
	g.written <- cfg.AppName
	return cfg, nil
}

// slowApplier stalls applying the named app and records the last config.
type slowApplier struct {
	slowFor string
	mu      sync.Mutex
	last    models.ThemeConfig
}

func (a *slowApplier) Apply(cfg models.ThemeConfig) {
	if cfg.AppName == a.slowFor {
		time.Sleep(50 * time.Millisecond)
	}
	a.mu.Lock()
	a.last = cfg
	a.mu.Unlock()
}

func TestConcurrentUpdatesEndOnStoredConfig(t *testing.T) {
	gw := &storeGateway{cfg: models.DefaultTheme(), written: make(chan string, 2)}
	applier := &slowApplier{slowFor: "A"}
	p := settings.NewProvider(gw, applier, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = p.Update(context.Background(), models.ThemePatch{AppName: models.String("A")})
	}()
	require.Equal(t, "A", <-gw.written)
	go func() {
		defer wg.Done()
		_, _ = p.Update(context.Background(), models.ThemePatch{AppName: models.String("B")})
	}()
	wg.Wait()
	require.Equal(t, "B", <-gw.written)

	stored, _ := gw.Fetch(context.Background())
	got, ok := p.Get()
	require.True(t, ok)
	assert.Equal(t, stored, got)
	assert.Equal(t, "B", got.AppName)

	applier.mu.Lock()
	defer applier.mu.Unlock()
	assert.Equal(t, stored, applier.last, "surface matches the stored config")
}

func TestSaveColorsPublishesAutosaveSource(t *testing.T) {
	e := newEnv(t, nil)
	e.provider.Init(context.Background())

	var saved []event.ThemeSaved
	e.bus.Subscribe(event.TopicThemeSaved, func(_ context.Context, ev event.Event) {
		saved = append(saved, ev.Payload.(event.ThemeSaved))
	})

	require.NoError(t, e.provider.SaveColors(context.Background(), models.ColorSet{
		Primary: "10 10% 10%", Accent: "20 20% 20%", Sidebar: "30 30% 30%",
	}))
	require.Len(t, saved, 1)
	assert.Equal(t, event.SourceAutosave, saved[0].Source)
	assert.False(t, saved[0].Degraded)
}

func TestUploadLogo(t *testing.T) {
	e := newEnv(t, nil)
	e.provider.Init(context.Background())

	cfg, err := e.provider.UploadLogo(context.Background(), "logo.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/logo/logo.png", cfg.LogoURL)
	assert.Equal(t, cfg.LogoURL, e.svc.Record().LogoURL)
}

func TestUploadFaviconUpdatesSurface(t *testing.T) {
	e := newEnv(t, nil)
	e.provider.Init(context.Background())

	_, err := e.provider.UploadFavicon(context.Background(), "icon.ico", strings.NewReader("ico"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/favicon/icon.ico", e.doc.Snapshot().FaviconURL)
}

func TestUploadWithoutUploader(t *testing.T) {
	gateway := persist.NewGateway(remote.NewClient("http://127.0.0.1:1", time.Second), testutil.NewCache(t), zap.NewNop())
	p := settings.NewProvider(gateway, style.NewWriter(style.NewDocument(), zap.NewNop()), zap.NewNop())
	_, err := p.UploadLogo(context.Background(), "x.png", strings.NewReader("x"))
	assert.Error(t, err)
}
