// Package testutil holds shared fixtures for brandkit tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/HerbHall/brandkit/internal/store"
	"github.com/HerbHall/brandkit/pkg/models"
)

// NewTheme returns a ThemeConfig with a random ID and the default colors.
// Override individual fields with options.
func NewTheme(opts ...func(*models.ThemeConfig)) models.ThemeConfig {
	cfg := models.DefaultTheme()
	cfg.ID = uuid.New().String()
	cfg.AppName = "Test CRM"
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithColors sets the three base colors.
func WithColors(primary, accent, sidebar string) func(*models.ThemeConfig) {
	return func(c *models.ThemeConfig) {
		c.PrimaryColor = primary
		c.AccentColor = accent
		c.SidebarColor = sidebar
	}
}

// WithAppName sets the application name.
func WithAppName(name string) func(*models.ThemeConfig) {
	return func(c *models.ThemeConfig) { c.AppName = name }
}

// WithCustomCSS sets the custom stylesheet.
func WithCustomCSS(css string) func(*models.ThemeConfig) {
	return func(c *models.ThemeConfig) { c.CustomCSS = css }
}

// NewStore opens a SQLite store in a temporary directory, closed on cleanup.
func NewStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// NewCache returns a migrated cache on a temporary store.
func NewCache(t *testing.T) *store.Cache {
	t.Helper()
	c, err := store.NewCache(context.Background(), NewStore(t))
	if err != nil {
		t.Fatalf("store.NewCache: %v", err)
	}
	return c
}
