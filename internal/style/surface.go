// Package style applies a ThemeConfig to the styling surface: root custom
// properties, a generated override stylesheet, the favicon, the title and
// the operator's custom CSS.
package style

// Identifiers of the two managed style nodes. At most one node with each ID
// exists on a surface.
const (
	OverrideNodeID = "brandkit-theme-overrides"
	CustomNodeID   = "brandkit-custom-css"
)

// Surface is the rendering environment the writer drives. Implementations
// must locate-and-replace style nodes by ID rather than append.
type Surface interface {
	// SetProperty writes a custom property (e.g. "--primary") on the root.
	SetProperty(name, value string) error
	// ReplaceStyleNode sets the content of the node with the given ID,
	// creating it if absent.
	ReplaceStyleNode(id, css string) error
	// RemoveStyleNode removes the node with the given ID if present.
	RemoveStyleNode(id string) error
	// SetFavicon points the single favicon link at href, creating it if absent.
	SetFavicon(href string) error
	// SetTitle sets the document title.
	SetTitle(title string) error
	// ForceVisualRefresh makes already rendered elements matching selectors
	// pick up new property values. Reactive surfaces may treat it as a no-op.
	ForceVisualRefresh(selectors []string) error
}

// Snapshotter is implemented by surfaces that can report their state.
type Snapshotter interface {
	Snapshot() Snapshot
}
