// FILE: tunable/example/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"tunable"
)

const manifest = `[
  {"key": "GridSpacing", "label": "Grid Spacing", "sliderValue": 175, "sliderMinValue": 10, "sliderMaxValue": 300},
  {"key": "EnableClickySounds", "label": "Clicky Sounds", "switchValue": false},
  {"key": "Background", "colorValue": "#39CCCC"}
]`

// Canvas stands in for a view whose layout follows tuned values.
type Canvas struct {
	mu         sync.Mutex
	spacing    float64
	clicky     bool
	background tunable.Color
}

func (c *Canvas) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("spacing=%g clicky=%t background=%s", c.spacing, c.clicky, c.background)
}

func main() {
	// =========================================================================
	// PART 1: INITIAL SETUP
	// Write MainSpec.json to a scratch directory and point the registry at it.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 1: Creating manifest...")

	dir, err := os.MkdirTemp("", "tunable-example")
	if err != nil {
		log.Fatalf("❌ Failed to create scratch directory: %v", err)
	}
	defer os.RemoveAll(dir)

	manifestPath := filepath.Join(dir, "MainSpec.json")
	if err := os.WriteFile(manifestPath, []byte(manifest), 0644); err != nil {
		log.Fatalf("❌ Failed to write manifest: %v", err)
	}
	log.Printf("✅ Manifest written to %s.", manifestPath)

	opts := tunable.DefaultOptions()
	opts.SearchPaths = []string{dir}
	opts.AutoReload = true
	opts.PollInterval = 250 * time.Millisecond
	opts.Debounce = 100 * time.Millisecond
	opts.LogLevel = "info"
	if err := tunable.Default.Configure(opts); err != nil {
		log.Fatalf("❌ Configure failed: %v", err)
	}

	// =========================================================================
	// PART 2: NAMED SPEC AND BINDINGS
	// Every Named call returns the same spec; bindings fire once immediately.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: Binding a canvas...")

	spec, err := tunable.Named("MainSpec")
	if err != nil {
		log.Fatalf("❌ Named failed: %v", err)
	}
	defer spec.StopAutoReload()

	canvas := &Canvas{}
	must(tunable.BindDouble(spec, "GridSpacing", canvas, func(c *Canvas, v float64) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.spacing = v
		return nil
	}))
	must(tunable.BindBool(spec, "EnableClickySounds", canvas, func(c *Canvas, on bool) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.clicky = on
		return nil
	}))
	must(tunable.BindColor(spec, "Background", canvas, func(c *Canvas, bg tunable.Color) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.background = bg
		return nil
	}))
	log.Printf("✅ Bound: %s", canvas)

	// =========================================================================
	// PART 3: TUNING
	// Out-of-range doubles are clamped; colors accept any supported grammar.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: Tuning values...")

	must(spec.SetDouble("GridSpacing", 1000))
	must(spec.SetColor("Background", tunable.MustParseColor("0.58, 0., 0.28, 1")))
	must(spec.AddDouble("Speed", 4))
	log.Printf("✅ After tuning: %s", canvas)

	lo, hi, _, _ := spec.Bounds("Speed")
	log.Printf("   Speed bounds derived by AddDouble: [%g, %g]", lo, hi)

	exported, err := spec.Export()
	if err != nil {
		log.Fatalf("❌ Export failed: %v", err)
	}
	fmt.Println(string(exported))

	// =========================================================================
	// PART 4: LIVE RELOAD
	// An outside edit to the manifest reaches the canvas through its bindings.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 4: Editing the manifest on disk...")

	changes := spec.Watch()
	time.Sleep(500 * time.Millisecond)

	edited := strings.Replace(manifest, `"switchValue": false`, `"switchValue": true`, 1)
	if err := os.WriteFile(manifestPath, []byte(edited), 0644); err != nil {
		log.Fatalf("❌ Failed to edit manifest: %v", err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case key := <-changes:
			log.Printf("✅ Reloaded key '%s': %s", key, canvas)
			if key == "EnableClickySounds" {
				return
			}
		case <-timeout:
			log.Fatalf("❌ Timed out waiting for reload.")
		}
	}
}

func must(err error) {
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
}
