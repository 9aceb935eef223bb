package style

import (
	"context"
	"fmt"
	"sync"

	"github.com/HerbHall/brandkit/internal/color"
	"github.com/HerbHall/brandkit/internal/event"
	"github.com/HerbHall/brandkit/internal/metrics"
	"github.com/HerbHall/brandkit/pkg/models"
	"go.uber.org/zap"
)

// Custom property names written on the surface root.
const (
	VarPrimary         = "--primary"
	VarAccent          = "--accent"
	VarSidebar         = "--sidebar"
	VarGradientPrimary = "--gradient-primary"
	VarGradientAccent  = "--gradient-accent"
	VarGradientSidebar = "--gradient-sidebar"
)

// sidebarDarkenPoints is how much darker the sidebar gradient's end stop is.
const sidebarDarkenPoints = 5

// Writer owns the styling surface. Apply is the only way branding reaches
// the surface, which keeps the two managed style nodes singletons.
type Writer struct {
	surface Surface
	logger  *zap.Logger
	bus     event.Publisher

	mu       sync.Mutex
	lastGood models.ColorSet
}

// Option configures a Writer.
type Option func(*Writer)

// WithPublisher publishes a style.applied event with the surface snapshot
// after every Apply, when the surface implements Snapshotter.
func WithPublisher(p event.Publisher) Option {
	return func(w *Writer) { w.bus = p }
}

// NewWriter creates a Writer for surface.
func NewWriter(surface Surface, logger *zap.Logger, opts ...Option) *Writer {
	w := &Writer{
		surface:  surface,
		logger:   logger,
		lastGood: models.DefaultColors(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Surface returns the surface the writer drives.
func (w *Writer) Surface() Surface {
	return w.surface
}

// Apply writes cfg to the surface. Every step runs even when an earlier one
// fails; failures are logged and counted, never returned.
func (w *Writer) Apply(cfg models.ThemeConfig) {
	w.mu.Lock()
	colors := w.resolve(cfg.Colors())

	w.step("variables", func() error {
		return w.setAll(
			VarPrimary, colors.Primary,
			VarAccent, colors.Accent,
			VarSidebar, colors.Sidebar,
			VarGradientPrimary, gradient(135, colors.Primary, colors.Primary),
			VarGradientAccent, gradient(135, colors.Accent, colors.Accent),
		)
	})
	w.step("sidebar_gradient", func() error {
		darker, err := color.Darken(colors.Sidebar, sidebarDarkenPoints)
		if err != nil {
			return err
		}
		return w.surface.SetProperty(VarGradientSidebar, gradient(180, colors.Sidebar, darker))
	})
	w.step("override_stylesheet", func() error {
		return w.surface.ReplaceStyleNode(OverrideNodeID, Stylesheet(colors))
	})
	w.step("force_refresh", func() error {
		return w.surface.ForceVisualRefresh(OverrideSelectors())
	})
	w.step("favicon", func() error {
		if cfg.FaviconURL == "" {
			return nil
		}
		return w.surface.SetFavicon(cfg.FaviconURL)
	})
	w.step("title", func() error {
		title := cfg.AppName
		if title == "" {
			title = models.DefaultAppName
		}
		return w.surface.SetTitle(title)
	})
	w.step("custom_css", func() error {
		if cfg.CustomCSS == "" {
			return w.surface.RemoveStyleNode(CustomNodeID)
		}
		// Injected verbatim, unsanitized.
		return w.surface.ReplaceStyleNode(CustomNodeID, cfg.CustomCSS)
	})

	metrics.ApplyTotal.Inc()
	w.mu.Unlock()

	w.publish()
}

// LastGood returns the colors most recently accepted by Apply.
func (w *Writer) LastGood() models.ColorSet {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastGood
}

// resolve replaces missing or invalid colors with the last known-good value
// and records the valid ones. Must be called with w.mu held.
func (w *Writer) resolve(in models.ColorSet) models.ColorSet {
	out := models.ColorSet{
		Primary: w.resolveOne("primary", in.Primary, w.lastGood.Primary),
		Accent:  w.resolveOne("accent", in.Accent, w.lastGood.Accent),
		Sidebar: w.resolveOne("sidebar", in.Sidebar, w.lastGood.Sidebar),
	}
	w.lastGood = out
	return out
}

func (w *Writer) resolveOne(field, value, fallback string) string {
	if value == "" {
		return fallback
	}
	c, err := color.ParseTriple(value)
	if err != nil {
		w.logger.Warn("invalid color, keeping last known-good value",
			zap.String("field", field),
			zap.String("value", value),
			zap.String("fallback", fallback),
		)
		return fallback
	}
	return c.String()
}

func (w *Writer) setAll(kv ...string) error {
	var first error
	for i := 0; i+1 < len(kv); i += 2 {
		if err := w.surface.SetProperty(kv[i], kv[i+1]); err != nil && first == nil {
			first = fmt.Errorf("set %s: %w", kv[i], err)
		}
	}
	return first
}

// step runs fn, containing both errors and panics.
func (w *Writer) step(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ApplyStepFailures.WithLabelValues(name).Inc()
			w.logger.Error("apply step panicked", zap.String("step", name), zap.Any("panic", r))
		}
	}()
	if err := fn(); err != nil {
		metrics.ApplyStepFailures.WithLabelValues(name).Inc()
		w.logger.Warn("apply step failed", zap.String("step", name), zap.Error(err))
	}
}

func (w *Writer) publish() {
	if w.bus == nil {
		return
	}
	snap, ok := w.surface.(Snapshotter)
	if !ok {
		return
	}
	_ = w.bus.Publish(context.Background(), event.Event{
		Topic:   event.TopicStyleApplied,
		Source:  "style",
		Payload: snap.Snapshot(),
	})
}
