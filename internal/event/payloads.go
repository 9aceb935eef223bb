package event

import "github.com/HerbHall/brandkit/pkg/models"

// Save origins carried by ThemeSaved.
const (
	SourceManual   = "manual"
	SourceAutosave = "autosave"
)

// ThemeLoaded is the payload of TopicThemeLoaded.
type ThemeLoaded struct {
	Config models.ThemeConfig
	Tier   string
}

// ThemeSaved is the payload of TopicThemeSaved.
type ThemeSaved struct {
	Config   models.ThemeConfig
	Source   string
	Degraded bool
}
