package render

import (
	"github.com/couchcryptid/quake-map-service/internal/domain"
)

// FeatureCollection is a GeoJSON FeatureCollection ready for L.geoJSON.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON feature. Geometry is either a Point or the raw
// geometry object of a plate boundary.
type Feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id,omitempty"`
	Geometry   any            `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Point is a GeoJSON Point geometry.
type Point struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

// PathStyle holds Leaflet path options for one feature.
type PathStyle struct {
	Radius      float64         `json:"radius,omitempty"`
	FillColor   domain.ColorHex `json:"fillColor,omitempty"`
	Color       domain.ColorHex `json:"color"`
	Weight      float64         `json:"weight,omitempty"`
	Opacity     float64         `json:"opacity,omitempty"`
	FillOpacity float64         `json:"fillOpacity,omitempty"`
	Stroke      bool            `json:"stroke"`
}

// MarkerStyle converts a StyleSpec to Leaflet circleMarker options.
func MarkerStyle(s domain.StyleSpec) PathStyle {
	return PathStyle{
		Radius:      s.Radius,
		FillColor:   s.FillColor,
		Color:       s.StrokeColor,
		Weight:      s.StrokeWeight,
		Opacity:     s.StrokeOpacity,
		FillOpacity: s.FillOpacity,
		Stroke:      true,
	}
}

// EmptyCollection returns a FeatureCollection with no features.
func EmptyCollection() FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// MarkerCollection renders earthquake markers as point features carrying
// their style and popup in properties.
func MarkerCollection(markers []domain.Marker) FeatureCollection {
	fc := EmptyCollection()
	fc.Features = make([]Feature, 0, len(markers))

	for _, m := range markers {
		f := m.Feature
		props := map[string]any{
			"mag":   nil,
			"place": f.Place,
			"popup": m.Popup,
			"style": MarkerStyle(m.Style),
		}
		if f.HasMagnitude() {
			props["mag"] = f.Magnitude
		}
		if !f.Time.IsZero() {
			props["time"] = f.Time.UnixMilli()
		}
		if f.URL != "" {
			props["url"] = f.URL
		}

		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			ID:   f.ID,
			Geometry: Point{
				Type:        "Point",
				Coordinates: []float64{f.Geo.Lon, f.Geo.Lat, f.Depth},
			},
			Properties: props,
		})
	}
	return fc
}

// PlateCollection renders plate boundaries with the single fixed line color.
func PlateCollection(plates []domain.PlateBoundary) FeatureCollection {
	fc := EmptyCollection()
	fc.Features = make([]Feature, 0, len(plates))

	style := PathStyle{Color: domain.ColorPlateBoundary, Stroke: true}
	for _, p := range plates {
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: p.Geometry,
			Properties: map[string]any{
				"name":  p.Name,
				"style": style,
			},
		})
	}
	return fc
}
