// Package render builds everything the browser map widget consumes: the map
// configuration, styled GeoJSON layers, the legend fragment, and the HTML page.
package render

import (
	"github.com/couchcryptid/quake-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-map-service/internal/domain"
)

// Overlay names as shown in the layer control.
const (
	OverlayEarthquakes = "Earthquakes"
	OverlayPlates      = "Tectonic Plates"
)

// LegendPosition is the screen corner hosting the legend control.
const LegendPosition = "bottomright"

var defaultCenter = domain.Geo{Lat: 34.0522, Lon: -118.2437}

// Overlay is an independently toggleable data layer loaded from Source.
type Overlay struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Active bool   `json:"active"`
}

// Sources are the URLs the page loads overlay GeoJSON from.
type Sources struct {
	Earthquakes string
	Plates      string
}

// Map is the complete configuration for one map page.
type Map struct {
	Center           domain.Geo          `json:"center"`
	Zoom             float64             `json:"zoom"`
	BaseLayers       []mapbox.TileLayer  `json:"baseLayers"`
	ActiveBase       string              `json:"activeBase"`
	Overlays         []Overlay           `json:"overlays"`
	ShowLayerControl bool                `json:"showLayerControl"`
	LegendPosition   string              `json:"legendPosition"`
	RadiusPolicy     domain.RadiusPolicy `json:"radiusPolicy"`
}

// NewMap builds the map for a profile. The markers profile keeps only the
// first tile layer and the earthquake overlay.
func NewMap(profile domain.Profile, tiles []mapbox.TileLayer, src Sources) Map {
	m := Map{
		Center:         defaultCenter,
		LegendPosition: LegendPosition,
		RadiusPolicy:   profile.DefaultRadiusPolicy(),
	}
	if len(tiles) > 0 {
		m.ActiveBase = tiles[0].Name
	}

	switch profile {
	case domain.ProfileMarkers:
		m.Zoom = 5
		if len(tiles) > 0 {
			m.BaseLayers = tiles[:1]
		}
		m.Overlays = []Overlay{
			{Name: OverlayEarthquakes, Source: src.Earthquakes, Active: true},
		}
	default:
		m.Zoom = 2.5
		m.BaseLayers = tiles
		m.Overlays = []Overlay{
			{Name: OverlayEarthquakes, Source: src.Earthquakes, Active: true},
			{Name: OverlayPlates, Source: src.Plates, Active: true},
		}
		m.ShowLayerControl = true
	}
	return m
}

// WithRadiusPolicy returns a copy of m using policy for marker sizes.
func (m Map) WithRadiusPolicy(policy domain.RadiusPolicy) Map {
	m.RadiusPolicy = policy
	return m
}

// HasOverlay reports whether the map includes the named overlay.
func (m Map) HasOverlay(name string) bool {
	for _, o := range m.Overlays {
		if o.Name == name {
			return true
		}
	}
	return false
}

// Control returns a layer controller seeded with the map's initial state.
func (m Map) Control() *LayerControl {
	bases := make([]string, len(m.BaseLayers))
	for i, b := range m.BaseLayers {
		bases[i] = b.Name
	}
	overlays := make([]string, len(m.Overlays))
	for i, o := range m.Overlays {
		overlays[i] = o.Name
	}

	lc := NewLayerControl(bases, overlays)
	if m.ActiveBase != "" {
		_ = lc.SelectBase(m.ActiveBase)
	}
	for _, o := range m.Overlays {
		_ = lc.SetOverlay(o.Name, o.Active)
	}
	return lc
}
