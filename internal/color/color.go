// Package color converts between hex colors and the "<h> <s>% <l>%" triples
// used as the stored color representation.
package color

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Fallback values returned when an input cannot be parsed.
const (
	FallbackTriple = "215 80% 35%"
	FallbackHex    = "#3b82f6"
)

// ErrInvalidColor is returned by the Parse helpers for malformed input.
var ErrInvalidColor = errors.New("invalid color")

var hexPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)

// HSL is a parsed color triple. H is in degrees, S and L in percent.
type HSL struct {
	H, S, L float64
}

// String formats the triple canonically, keeping at most two decimals.
func (c HSL) String() string {
	return fmt.Sprintf("%s %s%% %s%%", formatComponent(c.H), formatComponent(c.S), formatComponent(c.L))
}

// HexToHSL converts a six digit hex color, with or without the leading '#',
// into a triple. Malformed input yields FallbackTriple.
func HexToHSL(hex string) string {
	c, err := ParseHex(hex)
	if err != nil {
		return FallbackTriple
	}
	h, s, l := c.Hsl()
	exact := HSL{H: h, S: s * 100, L: l * 100}

	// Use the fewest decimals that still encode back to the same hex, so
	// common colors come out as whole numbers.
	want := c.Hex()
	for prec := 0; prec < maxDecimals; prec++ {
		t := exact.round(prec)
		if t.rgb().Clamped().Hex() == want {
			return t.String()
		}
	}
	return exact.String()
}

// HSLToHex converts a triple into a lowercase "#rrggbb" string. Input that does
// not split into three numeric parts yields FallbackHex.
func HSLToHex(triple string) string {
	c, err := splitTriple(triple)
	if err != nil {
		return FallbackHex
	}
	return c.rgb().Clamped().Hex()
}

// ParseHex parses a six digit hex color.
func ParseHex(hex string) (colorful.Color, error) {
	m := hexPattern.FindStringSubmatch(strings.TrimSpace(hex))
	if m == nil {
		return colorful.Color{}, fmt.Errorf("%w: %q is not a 6-digit hex color", ErrInvalidColor, hex)
	}
	c, err := colorful.Hex("#" + strings.ToLower(m[1]))
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	return c, nil
}

// ParseTriple parses and range checks a triple: hue within [0, 360],
// saturation and lightness within [0, 100].
func ParseTriple(triple string) (HSL, error) {
	c, err := splitTriple(triple)
	if err != nil {
		return HSL{}, err
	}
	if c.H < 0 || c.H > 360 || c.S < 0 || c.S > 100 || c.L < 0 || c.L > 100 {
		return HSL{}, fmt.Errorf("%w: %q out of range", ErrInvalidColor, triple)
	}
	return c, nil
}

// IsTriple reports whether s is a valid triple.
func IsTriple(s string) bool {
	_, err := ParseTriple(s)
	return err == nil
}

// ToTriple accepts either a hex color or a triple and returns the canonical
// triple form.
func ToTriple(s string) (string, error) {
	s = strings.TrimSpace(s)
	if hexPattern.MatchString(s) {
		return HexToHSL(s), nil
	}
	c, err := ParseTriple(s)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// Darken lowers the lightness of a triple by points percentage points,
// clamping at zero.
func Darken(triple string, points float64) (string, error) {
	c, err := ParseTriple(triple)
	if err != nil {
		return "", err
	}
	c.L = math.Max(0, c.L-points)
	return c.String(), nil
}

func splitTriple(triple string) (HSL, error) {
	parts := strings.Fields(triple)
	if len(parts) != 3 {
		return HSL{}, fmt.Errorf("%w: %q does not have three parts", ErrInvalidColor, triple)
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return HSL{}, fmt.Errorf("%w: %q is not numeric", ErrInvalidColor, p)
		}
		vals[i] = v
	}
	return HSL{H: vals[0], S: vals[1], L: vals[2]}, nil
}

// rgb uses the chroma decomposition c = (1-|2l-1|)*s, x = c*(1-|(h/60 mod 2)-1|),
// m = l-c/2 and picks the channel order from the 60 degree sector of h.
func (c HSL) rgb() colorful.Color {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	s := clamp01(c.S / 100)
	l := clamp01(c.L / 100)

	chroma := (1 - math.Abs(2*l-1)) * s
	x := chroma * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - chroma/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = chroma, x, 0
	case h < 120:
		r, g, b = x, chroma, 0
	case h < 180:
		r, g, b = 0, chroma, x
	case h < 240:
		r, g, b = 0, x, chroma
	case h < 300:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}
	return colorful.Color{R: r + m, G: g + m, B: b + m}
}

const maxDecimals = 2

func (c HSL) round(prec int) HSL {
	return HSL{H: roundTo(c.H, prec), S: roundTo(c.S, prec), L: roundTo(c.L, prec)}
}

func roundTo(v float64, prec int) float64 {
	p := math.Pow10(prec)
	return math.Round(v*p) / p
}

func formatComponent(v float64) string {
	v = roundTo(v, maxDecimals)
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
