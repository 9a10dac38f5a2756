// FILE: tunable/decode_test.go
package tunable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScanIntoStruct tests decoding values into tagged struct fields
func TestScanIntoStruct(t *testing.T) {
	type Layout struct {
		Grid    float64 `spec:"Grid"`
		Speed   float32 `spec:"Speed"`
		Clicky  bool    `spec:"Clicky"`
		Tint    Color   `spec:"Tint"`
		Ignored string  `spec:"NotDeclared"`
	}

	s := newSampleSpec(t)
	require.NoError(t, s.SetDouble("Grid", 120))

	var layout Layout
	require.NoError(t, s.Scan(&layout))

	assert.Equal(t, 120.0, layout.Grid)
	assert.Equal(t, float32(2.5), layout.Speed)
	assert.False(t, layout.Clicky)
	assert.Equal(t, MustParseColor("#39CCCC"), layout.Tint)
	assert.Empty(t, layout.Ignored)
}

// TestScanConversions tests the color and switch conversions
func TestScanConversions(t *testing.T) {
	type Metrics struct {
		GridInt  int    `spec:"Grid"`
		ClickyOn int    `spec:"Clicky"`
		TintText string `spec:"Tint"`
	}

	s := newSampleSpec(t)
	require.NoError(t, s.SetBool("Clicky", true))

	var m Metrics
	require.NoError(t, s.Scan(&m))

	assert.Equal(t, 175, m.GridInt)
	assert.Equal(t, 1, m.ClickyOn)
	assert.Equal(t, "rgba(57,204,204,1.000)", m.TintText)
}

// TestScanIntoMap tests decoding into a plain map
func TestScanIntoMap(t *testing.T) {
	s := newSampleSpec(t)

	var m map[string]any
	require.NoError(t, s.Scan(&m))
	assert.Equal(t, s.Snapshot(), m)
}

// TestInvalidScanTargets tests error handling for bad targets
func TestInvalidScanTargets(t *testing.T) {
	s := newSampleSpec(t)

	type Layout struct {
		Grid float64 `spec:"Grid"`
	}

	var layout Layout
	assert.Error(t, s.Scan(layout), "non-pointer target")

	var nilPtr *Layout
	assert.Error(t, s.Scan(nilPtr), "nil pointer target")

	type Wrong struct {
		Grid struct{ X int } `spec:"Grid"`
	}
	var wrong Wrong
	assert.Error(t, s.Scan(&wrong))
}
