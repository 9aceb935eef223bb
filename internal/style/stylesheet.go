package style

import (
	"fmt"
	"strings"

	"github.com/HerbHall/brandkit/pkg/models"
)

// slot names the color a rule is bound to.
type slot int

const (
	slotPrimary slot = iota
	slotAccent
	slotSidebar
)

type rule struct {
	selector string
	// target is the element class the forced refresh toggles; it is the
	// selector without pseudo-classes.
	target   string
	property string
	slot     slot
	// alpha < 1 renders a translucent hover variant.
	alpha float64
}

const sidebarSelector = ".sidebar"

// overrideRules is the fixed set of utility classes that must reflect the
// current branding regardless of static styling.
var overrideRules = []rule{
	// surfaces
	{".bg-primary", ".bg-primary", "background-color", slotPrimary, 1},
	{".bg-accent", ".bg-accent", "background-color", slotAccent, 1},
	{".bg-sidebar", ".bg-sidebar", "background-color", slotSidebar, 1},
	{".btn-primary", ".btn-primary", "background-color", slotPrimary, 1},
	// text
	{".text-primary", ".text-primary", "color", slotPrimary, 1},
	{".text-accent", ".text-accent", "color", slotAccent, 1},
	// borders
	{".border-primary", ".border-primary", "border-color", slotPrimary, 1},
	{".border-accent", ".border-accent", "border-color", slotAccent, 1},
	// interactive states
	{".ring-primary", ".ring-primary", "--tw-ring-color", slotPrimary, 1},
	{".focus\\:ring-primary:focus", ".focus\\:ring-primary", "--tw-ring-color", slotPrimary, 1},
	{".focus-visible\\:outline-primary:focus-visible", ".focus-visible\\:outline-primary", "outline-color", slotPrimary, 1},
	// badges
	{".badge-primary", ".badge-primary", "background-color", slotPrimary, 1},
	{".badge-accent", ".badge-accent", "background-color", slotAccent, 1},
	// navigation highlight
	{".nav-item-active", ".nav-item-active", "background-color", slotAccent, 1},
	{".nav-item-active", ".nav-item-active", "color", slotSidebar, 1},
	// hover variants
	{".hover\\:bg-primary:hover", ".hover\\:bg-primary", "background-color", slotPrimary, 0.9},
	{".hover\\:bg-accent:hover", ".hover\\:bg-accent", "background-color", slotAccent, 0.9},
	{".hover\\:text-primary:hover", ".hover\\:text-primary", "color", slotPrimary, 1},
	{".btn-primary:hover", ".btn-primary", "background-color", slotPrimary, 0.9},
}

// OverrideSelectors returns the distinct element selectors covered by the
// override stylesheet, in declaration order.
func OverrideSelectors() []string {
	seen := make(map[string]bool, len(overrideRules))
	out := make([]string, 0, len(overrideRules))
	for _, r := range overrideRules {
		if seen[r.target] {
			continue
		}
		seen[r.target] = true
		out = append(out, r.target)
	}
	return append(out, sidebarSelector)
}

// Stylesheet renders the override fragment for colors. Every declaration is
// !important so it wins over static styling.
func Stylesheet(colors models.ColorSet) string {
	var b strings.Builder
	b.WriteString("/* generated by brandkit; replaced on every apply */\n")
	for _, r := range overrideRules {
		fmt.Fprintf(&b, "%s { %s: %s !important; }\n", r.selector, r.property, hslValue(pick(colors, r.slot), r.alpha))
	}
	fmt.Fprintf(&b, "%s { background: var(--gradient-sidebar) !important; }\n", sidebarSelector)
	return b.String()
}

func pick(colors models.ColorSet, s slot) string {
	switch s {
	case slotAccent:
		return colors.Accent
	case slotSidebar:
		return colors.Sidebar
	default:
		return colors.Primary
	}
}

func hslValue(triple string, alpha float64) string {
	if alpha < 1 {
		return fmt.Sprintf("hsl(%s / %g)", triple, alpha)
	}
	return fmt.Sprintf("hsl(%s)", triple)
}

func gradient(angle int, from, to string) string {
	return fmt.Sprintf("linear-gradient(%ddeg, hsl(%s) 0%%, hsl(%s) 100%%)", angle, from, to)
}
