package models

// Compiled-in defaults. These are the last tier of the persistence chain and
// the values a reset restores.
const (
	DefaultThemeID      = "default"
	DefaultAppName      = "Workspace CRM"
	DefaultPrimaryColor = "152 45% 28%"
	DefaultAccentColor  = "45 90% 50%"
	DefaultSidebarColor = "152 35% 15%"
)

// ThemeConfig is the persisted branding record. Colors are stored as
// "<hue> <saturation>% <lightness>%" triples; hex is only an input format.
type ThemeConfig struct {
	ID           string `json:"id" example:"default"`
	AppName      string `json:"app_name" example:"Workspace CRM"`
	LogoURL      string `json:"logo_url,omitempty" example:"https://cdn.example.com/logo.png"`
	FaviconURL   string `json:"favicon_url,omitempty" example:"https://cdn.example.com/favicon.ico"`
	PrimaryColor string `json:"primary_color" example:"152 45% 28%"`
	AccentColor  string `json:"accent_color" example:"45 90% 50%"`
	SidebarColor string `json:"sidebar_color" example:"152 35% 15%"`
	CustomCSS    string `json:"custom_css,omitempty" example:".card { border-radius: 0; }"`
}

// DefaultTheme returns the compiled-in branding.
func DefaultTheme() ThemeConfig {
	return ThemeConfig{
		ID:           DefaultThemeID,
		AppName:      DefaultAppName,
		PrimaryColor: DefaultPrimaryColor,
		AccentColor:  DefaultAccentColor,
		SidebarColor: DefaultSidebarColor,
	}
}

// Colors returns the three base colors of the config.
func (c ThemeConfig) Colors() ColorSet {
	return ColorSet{
		Primary: c.PrimaryColor,
		Accent:  c.AccentColor,
		Sidebar: c.SidebarColor,
	}
}

// Merge returns a copy of c with every non-nil field of p applied.
func (c ThemeConfig) Merge(p ThemePatch) ThemeConfig {
	if p.AppName != nil {
		c.AppName = *p.AppName
	}
	if p.LogoURL != nil {
		c.LogoURL = *p.LogoURL
	}
	if p.FaviconURL != nil {
		c.FaviconURL = *p.FaviconURL
	}
	if p.PrimaryColor != nil {
		c.PrimaryColor = *p.PrimaryColor
	}
	if p.AccentColor != nil {
		c.AccentColor = *p.AccentColor
	}
	if p.SidebarColor != nil {
		c.SidebarColor = *p.SidebarColor
	}
	if p.CustomCSS != nil {
		c.CustomCSS = *p.CustomCSS
	}
	return c
}

// ThemePatch is a partial ThemeConfig. Nil fields are left untouched; a
// pointer to "" clears an optional field.
type ThemePatch struct {
	AppName      *string `json:"app_name,omitempty"`
	LogoURL      *string `json:"logo_url,omitempty"`
	FaviconURL   *string `json:"favicon_url,omitempty"`
	PrimaryColor *string `json:"primary_color,omitempty"`
	AccentColor  *string `json:"accent_color,omitempty"`
	SidebarColor *string `json:"sidebar_color,omitempty"`
	CustomCSS    *string `json:"custom_css,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ThemePatch) IsEmpty() bool {
	return p.AppName == nil && p.LogoURL == nil && p.FaviconURL == nil &&
		p.PrimaryColor == nil && p.AccentColor == nil && p.SidebarColor == nil &&
		p.CustomCSS == nil
}

// ColorSet holds the three editable base colors.
type ColorSet struct {
	Primary string `json:"primary_color"`
	Accent  string `json:"accent_color"`
	Sidebar string `json:"sidebar_color"`
}

// Complete reports whether all three colors are non-empty.
func (s ColorSet) Complete() bool {
	return s.Primary != "" && s.Accent != "" && s.Sidebar != ""
}

// Patch converts the color set into a patch touching only the colors.
func (s ColorSet) Patch() ThemePatch {
	return ThemePatch{
		PrimaryColor: String(s.Primary),
		AccentColor:  String(s.Accent),
		SidebarColor: String(s.Sidebar),
	}
}

// DefaultColors returns the compiled-in color triples.
func DefaultColors() ColorSet {
	return DefaultTheme().Colors()
}

// String returns a pointer to s, for building patches.
func String(s string) *string {
	return &s
}
