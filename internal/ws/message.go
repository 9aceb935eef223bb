package ws

import (
	"time"

	"github.com/HerbHall/brandkit/pkg/models"
)

// MessageType discriminates WebSocket messages.
type MessageType string

const (
	MessageSurfaceSnapshot MessageType = "surface.snapshot"
	MessageStyleApplied    MessageType = "style.applied"
	MessageThemeLoaded     MessageType = "theme.loaded"
	MessageThemeSaved      MessageType = "theme.saved"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      MessageType `json:"type"`
	Seq       uint64      `json:"seq"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}

// ThemeLoadedData is the payload for theme.loaded messages.
type ThemeLoadedData struct {
	Config models.ThemeConfig `json:"config"`
	Tier   string             `json:"tier"`
}

// ThemeSavedData is the payload for theme.saved messages.
type ThemeSavedData struct {
	Config   models.ThemeConfig `json:"config"`
	Source   string             `json:"source"`
	Degraded bool               `json:"degraded"`
}
