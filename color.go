// FILE: tunable/color.go
package tunable

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is the canonical in-memory color: four channels normalized to [0,1].
type Color struct {
	R, G, B, A float64
}

// NRGBA builds a Color from 0-255 channels and a [0,1] alpha.
func NRGBA(r, g, b uint8, a float64) Color {
	return Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
		A: clamp01(a),
	}
}

// ParseColor parses a color in one of the supported encodings:
//
//	#RRGGBB or #RRGGBBAA
//	r,g,b[,a]        all values <= 1 are normalized, otherwise r,g,b are 0-255
//	rgb(r,g,b) / rgba(r,g,b,a)
//
// A trailing ", Alpha: 0.500" annotation, as written by older exports,
// overrides the alpha channel.
func ParseColor(text string) (Color, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Color{}, &ColorParseError{Text: text, Reason: "empty"}
	}
	if !utf8.ValidString(s) {
		return Color{}, &ColorParseError{Text: text, Reason: "invalid UTF-8"}
	}

	if idx := lastIndexFold(s, "alpha:"); idx >= 0 {
		head := strings.TrimSuffix(strings.TrimSpace(s[:idx]), ",")
		alpha, err := parseChannel(s[idx+len("alpha:"):])
		if err != nil {
			return Color{}, &ColorParseError{Text: text, Reason: "bad alpha annotation"}
		}
		c, err := parseColorBody(head)
		if err != nil {
			return Color{}, &ColorParseError{Text: text, Reason: reasonOf(err)}
		}
		c.A = clamp01(alpha)
		return c, nil
	}

	c, err := parseColorBody(s)
	if err != nil {
		return Color{}, &ColorParseError{Text: text, Reason: reasonOf(err)}
	}
	return c, nil
}

// MustParseColor is like ParseColor but panics on error.
func MustParseColor(text string) Color {
	c, err := ParseColor(text)
	if err != nil {
		panic(err)
	}
	return c
}

func parseColorBody(s string) (Color, error) {
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s)
	case isNumericList(s):
		return parseComponentList(s)
	case len(s) >= 3 && strings.EqualFold(s[:3], "rgb"):
		return parseFunctional(s)
	}
	return Color{}, fmt.Errorf("no matching color grammar")
}

// parseHexColor handles #RRGGBB and #RRGGBBAA.
func parseHexColor(s string) (Color, error) {
	if len(s) != 7 && len(s) != 9 {
		return Color{}, fmt.Errorf("hex color must be #RRGGBB or #RRGGBBAA")
	}
	for _, r := range s[1:] {
		if !isHexDigit(r) {
			return Color{}, fmt.Errorf("invalid hex digit %q", r)
		}
	}

	rgb, err := colorful.Hex(s[:7])
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color: %w", err)
	}

	r, g, b := rgb.RGB255()
	c := NRGBA(r, g, b, 1)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex alpha: %w", err)
		}
		c.A = float64(a) / 255.0
	}
	return c, nil
}

// parseComponentList handles "r,g,b[,a]". If every value is at most 1 the
// list is already normalized; otherwise r,g,b are 0-255 and alpha stays [0,1].
func parseComponentList(s string) (Color, error) {
	vals, err := parseNumbers(s)
	if err != nil {
		return Color{}, err
	}

	normalized := true
	for _, v := range vals {
		if v > 1.0 {
			normalized = false
			break
		}
	}

	alpha := 1.0
	if len(vals) == 4 {
		alpha = vals[3]
	}
	if normalized {
		return Color{R: clamp01(vals[0]), G: clamp01(vals[1]), B: clamp01(vals[2]), A: clamp01(alpha)}, nil
	}
	return Color{R: clamp255(vals[0]), G: clamp255(vals[1]), B: clamp255(vals[2]), A: clamp01(alpha)}, nil
}

// parseFunctional handles rgb(r,g,b) and rgba(r,g,b,a).
func parseFunctional(s string) (Color, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Color{}, fmt.Errorf("unterminated functional color")
	}

	name := strings.ToLower(strings.TrimSpace(s[:open]))
	vals, err := parseNumbers(s[open+1 : len(s)-1])
	if err != nil {
		return Color{}, err
	}

	switch {
	case name == "rgb" && len(vals) == 3:
		vals = append(vals, 1)
	case name == "rgba" && len(vals) == 4:
	default:
		return Color{}, fmt.Errorf("%s() takes %d channels, got %d", name, functionalArity(name), len(vals))
	}

	return Color{R: clamp255(vals[0]), G: clamp255(vals[1]), B: clamp255(vals[2]), A: clamp01(vals[3])}, nil
}

func functionalArity(name string) int {
	if name == "rgba" {
		return 4
	}
	return 3
}

func parseNumbers(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return nil, fmt.Errorf("expected 3 or 4 channels, got %d", len(parts))
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := parseChannel(p)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func parseChannel(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("malformed number %q", s)
	}
	return v, nil
}

// isNumericList reports whether s looks like a bare comma-separated list.
func isNumericList(s string) bool {
	if !strings.Contains(s, ",") {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9') && !strings.ContainsRune(",.-+eE \t", r) {
			return false
		}
	}
	return true
}

// lastIndexFold is a case-insensitive strings.LastIndex. The index refers
// to s itself.
func lastIndexFold(s, substr string) int {
	for i := len(s) - len(substr); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func reasonOf(err error) string {
	if cpe, ok := err.(*ColorParseError); ok {
		return cpe.Reason
	}
	return err.Error()
}

// String returns the canonical form, e.g. "rgba(57,204,204,1.000)".
func (c Color) String() string {
	return FormatColor(c)
}

// FormatColor renders c as rgba() with integer 0-255 channels and a
// three-decimal alpha. The output does not depend on the input grammar.
func FormatColor(c Color) string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", r, g, b, clamp01(c.A))
}

// RGB255 returns the color channels rounded to 0-255.
func (c Color) RGB255() (r, g, b uint8) {
	return c.colorful().Clamped().RGB255()
}

// Hex returns "#RRGGBBAA".
func (c Color) Hex() string {
	return fmt.Sprintf("%s%02X", strings.ToUpper(c.colorful().Clamped().Hex()), uint8(math.Round(clamp01(c.A)*255)))
}

// Representations returns the color in every display encoding the tuning
// export has historically emitted: hex, 0-255 list and 0-1 list, each with an
// alpha annotation, followed by the canonical rgba form.
func (c Color) Representations() []string {
	r, g, b := c.RGB255()
	cc := c.colorful().Clamped()
	alpha := clamp01(c.A)
	return []string{
		fmt.Sprintf("%s, Alpha: %.3f", strings.ToUpper(cc.Hex()), alpha),
		fmt.Sprintf("%d, %d, %d, Alpha: %.3f", r, g, b, alpha),
		fmt.Sprintf("%.3f, %.3f, %.3f, Alpha: %.3f", cc.R, cc.G, cc.B, alpha),
		FormatColor(c),
	}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func clamp255(v float64) float64 {
	return clamp01(v / 255.0)
}
