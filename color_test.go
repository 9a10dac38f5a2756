// FILE: tunable/color_test.go
package tunable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColorGrammars(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"Hex", "#39CCCC", "rgba(57,204,204,1.000)"},
		{"HexLower", "#39cccc", "rgba(57,204,204,1.000)"},
		{"HexAlpha", "#39CCCC80", "rgba(57,204,204,0.502)"},
		{"List255", "57,204,204", "rgba(57,204,204,1.000)"},
		{"List255Alpha", "45, 124, 100, 0.5", "rgba(45,124,100,0.500)"},
		{"ListNormalized", "0.58, 0., 0.28, 1", "rgba(148,0,71,1.000)"},
		{"ListNormalizedNoAlpha", "1,0,0", "rgba(255,0,0,1.000)"},
		{"Rgba", "rgba(57,204,204,1)", "rgba(57,204,204,1.000)"},
		{"RgbaSpaces", " rgba( 255, 0, 0, 0.3 ) ", "rgba(255,0,0,0.300)"},
		{"Rgb", "rgb(57,204,204)", "rgba(57,204,204,1.000)"},
		{"LegacyHexAnnotation", "#717C64, Alpha: 0.250", "rgba(113,124,100,0.250)"},
		{"LegacyListAnnotation", "0.444, 0.486, 0.392, Alpha: 1.000", "rgba(113,124,100,1.000)"},
		{"OutOfRangeClamped", "300,0,0", "rgba(255,0,0,1.000)"},
		{"UpperCaseFunctional", "RGBA(57,204,204,1)", "rgba(57,204,204,1.000)"},
		{"UpperCaseAnnotation", "#717C64, ALPHA: 0.250", "rgba(113,124,100,0.250)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseColor(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatColor(c))
		})
	}
}

func TestParseColorEquivalentEncodings(t *testing.T) {
	hex, err := ParseColor("#39CCCC")
	require.NoError(t, err)
	list, err := ParseColor("57,204,204")
	require.NoError(t, err)
	fn, err := ParseColor("rgba(57,204,204,1)")
	require.NoError(t, err)

	assert.Equal(t, hex, list)
	assert.Equal(t, hex, fn)
	assert.Equal(t, hex.String(), list.String())
	assert.Equal(t, hex.String(), fn.String())
	assert.InDelta(t, 57.0/255.0, hex.R, 1e-12)
	assert.Equal(t, 1.0, hex.A)
}

func TestParseColorErrors(t *testing.T) {
	bad := []string{
		"",
		"#12345",
		"#GGHHII",
		"1,2",
		"1,2,3,4,5",
		"1,x,3",
		"rgba(1,2,3)",
		"rgb(1,2,3,0.5)",
		"rgba(1,2,3,0.5",
		"hsl(10,20,30)",
		"teal",
		"#39CCCC, Alpha: high",
		"\xffalpha:1",
		"rgb\xff\xff\xff\xff(1)",
		"rgba(1,2,\xff,1)",
	}

	for _, text := range bad {
		t.Run(text, func(t *testing.T) {
			_, err := ParseColor(text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrColorParse))

			var cpe *ColorParseError
			require.ErrorAs(t, err, &cpe)
			assert.Equal(t, text, cpe.Text)
		})
	}
}

func TestFormatColorIdempotent(t *testing.T) {
	colors := []Color{
		{R: 0.1, G: 0.2, B: 0.3, A: 0.4},
		{R: 1, G: 1, B: 1, A: 1},
		{},
		NRGBA(57, 204, 204, 0.75),
		{R: 0.123456, G: 0.654321, B: 0.999, A: 0.0005},
	}

	for _, c := range colors {
		once := FormatColor(c)
		again, err := ParseColor(once)
		require.NoError(t, err)
		assert.Equal(t, once, FormatColor(again))
	}
}

func TestColorRepresentations(t *testing.T) {
	c := MustParseColor("113, 124, 100")
	reps := c.Representations()
	require.Len(t, reps, 4)

	assert.Equal(t, "#717C64, Alpha: 1.000", reps[0])
	assert.Equal(t, "113, 124, 100, Alpha: 1.000", reps[1])
	assert.Equal(t, "0.443, 0.486, 0.392, Alpha: 1.000", reps[2])
	assert.Equal(t, "rgba(113,124,100,1.000)", reps[3])

	for _, rep := range reps {
		parsed, err := ParseColor(rep)
		require.NoError(t, err, rep)
		assert.Equal(t, c.String(), parsed.String(), rep)
	}
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#39CCCCFF", MustParseColor("#39CCCC").Hex())
	assert.Equal(t, "#FF000080", MustParseColor("rgba(255,0,0,0.5)").Hex())
}

func TestMustParseColorPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseColor("nope") })
	assert.NotPanics(t, func() { MustParseColor("#000000") })
}
