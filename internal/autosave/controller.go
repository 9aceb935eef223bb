// Package autosave debounces color edits and persists them once the editor
// goes quiet, skipping saves that would not change anything.
package autosave

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/brandkit/internal/event"
	"github.com/HerbHall/brandkit/internal/metrics"
	"github.com/HerbHall/brandkit/pkg/models"
)

// DefaultQuietPeriod is the debounce window used when none is configured.
const DefaultQuietPeriod = 1500 * time.Millisecond

// State is the controller's position in the save cycle.
type State int

const (
	StateIdle State = iota
	StatePendingChange
	StateSaving
	StateSaveFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePendingChange:
		return "pending_change"
	case StateSaving:
		return "saving"
	case StateSaveFailed:
		return "save_failed"
	default:
		return "unknown"
	}
}

// Saver persists the three base colors.
type Saver interface {
	SaveColors(ctx context.Context, colors models.ColorSet) error
}

// Timer is a pending debounce expiry.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. It matches time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Controller.
type Option func(*Controller)

// WithQuietPeriod sets the debounce window.
func WithQuietPeriod(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.quiet = d
		}
	}
}

// WithAfterFunc replaces the timer source.
func WithAfterFunc(fn AfterFunc) Option {
	return func(c *Controller) { c.afterFunc = fn }
}

// WithSaveTimeout bounds each save call.
func WithSaveTimeout(d time.Duration) Option {
	return func(c *Controller) { c.saveTimeout = d }
}

// WithFailureNotice registers a callback for failed saves. It runs outside
// the controller lock.
func WithFailureNotice(fn func(colors models.ColorSet, err error)) Option {
	return func(c *Controller) { c.onFailure = fn }
}

// WithLogger sets the controller logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller is the autosave state machine. Only one save is in flight at a
// time; an edit arriving mid-save is queued and debounced after it.
type Controller struct {
	saver       Saver
	quiet       time.Duration
	saveTimeout time.Duration
	afterFunc   AfterFunc
	onFailure   func(models.ColorSet, error)
	logger      *zap.Logger

	mu          sync.Mutex
	state       State
	draft       models.ColorSet
	baseline    models.ColorSet
	hasBaseline bool
	baselineGen uint64
	timer       Timer
	queued      bool
	stopped     bool
	inflight    sync.WaitGroup
}

// New creates a controller in the Idle state.
func New(saver Saver, opts ...Option) *Controller {
	c := &Controller{
		saver:       saver,
		quiet:       DefaultQuietPeriod,
		saveTimeout: 15 * time.Second,
		afterFunc:   realAfterFunc,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns the most recent edit.
func (c *Controller) Draft() models.ColorSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Baseline returns the last persisted colors and whether one is known.
func (c *Controller) Baseline() (models.ColorSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseline, c.hasBaseline
}

// Edit records a change to the color fields. Edits with any empty color are
// ignored. Each accepted edit restarts the debounce window.
func (c *Controller) Edit(colors models.ColorSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || !colors.Complete() {
		return
	}
	c.draft = colors
	if c.state == StateSaving {
		c.queued = true
		return
	}
	c.state = StatePendingChange
	c.restartTimerLocked()
}

// SetBaseline records colors as the last persisted snapshot. A save that
// started before the call does not overwrite it on completion.
func (c *Controller) SetBaseline(colors models.ColorSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseline = colors
	c.hasBaseline = true
	c.baselineGen++
	if c.state == StateSaveFailed {
		c.state = StateIdle
	}
}

// Subscribe resets the baseline on theme.loaded and on non-degraded manual
// theme.saved events. Returns a function that removes both subscriptions.
func (c *Controller) Subscribe(sub event.Subscriber) (unsubscribe func()) {
	unLoaded := sub.Subscribe(event.TopicThemeLoaded, func(_ context.Context, e event.Event) {
		if p, ok := e.Payload.(event.ThemeLoaded); ok {
			c.SetBaseline(p.Config.Colors())
		}
	})
	unSaved := sub.Subscribe(event.TopicThemeSaved, func(_ context.Context, e event.Event) {
		p, ok := e.Payload.(event.ThemeSaved)
		if !ok || p.Source != event.SourceManual || p.Degraded {
			return
		}
		c.SetBaseline(p.Config.Colors())
	})
	return func() {
		unLoaded()
		unSaved()
	}
}

// Stop cancels any pending debounce and waits for an in-flight save. Later
// edits are ignored.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.inflight.Wait()
}

func (c *Controller) restartTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	var t Timer
	t = c.afterFunc(c.quiet, func() { c.expire(t) })
	c.timer = t
}

// expire runs when the debounce window closes. t identifies the timer so a
// stale expiry racing with a restart is dropped.
func (c *Controller) expire(t Timer) {
	c.mu.Lock()
	if c.stopped || c.timer != t || c.state != StatePendingChange {
		c.mu.Unlock()
		return
	}
	c.timer = nil

	if c.hasBaseline && c.draft == c.baseline {
		c.state = StateIdle
		c.mu.Unlock()
		metrics.AutosaveTotal.WithLabelValues(metrics.AutosaveSuppressed).Inc()
		c.logger.Debug("autosave suppressed, colors unchanged")
		return
	}

	colors := c.draft
	gen := c.baselineGen
	c.state = StateSaving
	c.inflight.Add(1)
	c.mu.Unlock()
	defer c.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), c.saveTimeout)
	err := c.saver.SaveColors(ctx, colors)
	cancel()

	c.mu.Lock()
	if err == nil {
		if gen == c.baselineGen {
			c.baseline = colors
			c.hasBaseline = true
		}
		c.state = StateIdle
	} else {
		c.state = StateSaveFailed
	}
	if c.queued {
		c.queued = false
		if !c.stopped {
			c.state = StatePendingChange
			c.restartTimerLocked()
		}
	}
	c.mu.Unlock()

	if err != nil {
		metrics.AutosaveTotal.WithLabelValues(metrics.AutosaveFailed).Inc()
		c.logger.Warn("autosave failed", zap.Error(err))
		if c.onFailure != nil {
			c.onFailure(colors, err)
		}
		// SaveFailed lasts until the notice has fired.
		c.mu.Lock()
		if c.state == StateSaveFailed {
			c.state = StateIdle
		}
		c.mu.Unlock()
		return
	}
	metrics.AutosaveTotal.WithLabelValues(metrics.AutosaveSaved).Inc()
	c.logger.Debug("autosave saved", zap.Any("colors", colors))
}
