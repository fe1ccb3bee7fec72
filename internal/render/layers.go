package render

import (
	"fmt"
	"slices"
	"sync"
)

// LayerToggleState is a snapshot of which layers are visible.
type LayerToggleState struct {
	Base     string          `json:"base"`
	Overlays map[string]bool `json:"overlays"`
}

// LayerControl tracks base layers, of which exactly one is active, and
// overlays, each toggled independently. It mirrors the browser control so the
// selection rules can be exercised without a live widget.
type LayerControl struct {
	mu       sync.Mutex
	bases    []string
	overlays []string
	active   string
	shown    map[string]bool
}

// NewLayerControl creates a control with the first base active and every
// overlay hidden.
func NewLayerControl(bases, overlays []string) *LayerControl {
	lc := &LayerControl{
		bases:    slices.Clone(bases),
		overlays: slices.Clone(overlays),
		shown:    make(map[string]bool, len(overlays)),
	}
	if len(bases) > 0 {
		lc.active = bases[0]
	}
	for _, o := range overlays {
		lc.shown[o] = false
	}
	return lc
}

// SelectBase makes name the only active base layer. Overlays are untouched.
func (lc *LayerControl) SelectBase(name string) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if !slices.Contains(lc.bases, name) {
		return fmt.Errorf("unknown base layer %q", name)
	}
	lc.active = name
	return nil
}

// SetOverlay shows or hides one overlay.
func (lc *LayerControl) SetOverlay(name string, on bool) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if _, ok := lc.shown[name]; !ok {
		return fmt.Errorf("unknown overlay %q", name)
	}
	lc.shown[name] = on
	return nil
}

// BaseActive reports whether name is the active base layer.
func (lc *LayerControl) BaseActive(name string) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.active == name
}

// State returns a copy of the current selection.
func (lc *LayerControl) State() LayerToggleState {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	overlays := make(map[string]bool, len(lc.shown))
	for k, v := range lc.shown {
		overlays[k] = v
	}
	return LayerToggleState{Base: lc.active, Overlays: overlays}
}
