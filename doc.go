// File: tunable/doc.go

// Package tunable provides live tweaking of named values in a running program.
// From the caller's perspective it resembles a typed key/value settings store,
// but the values are declared in a JSON manifest and can be bound to callbacks
// that keep dependent state in sync as a tuning tool edits them.
//
// Features:
//   - Double, bool and color values declared in a JSON manifest
//   - Colors accepted as #RRGGBB[AA], "r,g,b[,a]" lists or rgba() strings
//   - Live bindings that fire once on bind and again on every change
//   - Weakly held binding owners: a bound object is never kept alive
//   - Export back to manifest JSON, preserving labels, bounds and extra fields
//   - Named specs cached process-wide, loaded from <name>.json on first use
//   - Optional auto-reload when the manifest file changes on disk
//
// Manifest:
//
//	[
//	  {"key": "GridSpacing", "label": "Grid Spacing",
//	   "sliderValue": 175, "sliderMinValue": 10, "sliderMaxValue": 300},
//	  {"key": "EnableClickySounds", "switchValue": false},
//	  {"key": "Background", "colorValue": "#39CCCC"}
//	]
//
// Quick Start:
//
//	spec, err := tunable.Named("MainSpec") // loads MainSpec.json
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	spacing, _ := spec.Double("GridSpacing")
//
//	err = tunable.BindDouble(spec, "GridSpacing", view, func(v *View, spacing float64) error {
//	    v.SetSpacing(spacing)
//	    return nil
//	})
//
// The callback is invoked once before BindDouble returns, then each time the
// value changes. It receives the owner as an argument and must not capture
// it: the spec holds owners weakly, and a closure over the owner would keep
// it alive.
//
// Thread Safety:
// Reads are safe from any goroutine. Set, Bind and the notifications they
// trigger are serialized per spec. Callbacks must not call Set or Bind on the
// spec that invoked them.
package tunable
