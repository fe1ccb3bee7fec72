package domain

import (
	"fmt"
	"html"
	"math"
	"strconv"
)

// ColorHex is a "#RRGGBB" display color.
type ColorHex string

const (
	ColorRed       ColorHex = "#FF0000"
	ColorOrange    ColorHex = "#FF7F00"
	ColorYellow    ColorHex = "#FFFF00"
	ColorGreen     ColorHex = "#00FF00"
	ColorDarkGreen ColorHex = "#008B00"
	ColorGray      ColorHex = "#DEDEDE"

	// ColorStroke outlines every marker.
	ColorStroke ColorHex = "#000000"
	// ColorPlateBoundary draws tectonic plate lines.
	ColorPlateBoundary ColorHex = "#FF69B4"
)

// MinRadius is the radius given to markers whose magnitude is NaN or <= 0.
const MinRadius = 1.0

const markerStrokeWeight = 0.25

// StyleSpec is the full visual encoding of one marker.
type StyleSpec struct {
	FillColor     ColorHex `json:"fill_color"`
	StrokeColor   ColorHex `json:"stroke_color"`
	Radius        float64  `json:"radius"`
	StrokeWeight  float64  `json:"stroke_weight"`
	FillOpacity   float64  `json:"fill_opacity"`
	StrokeOpacity float64  `json:"stroke_opacity"`
}

// RadiusPolicy selects how magnitude maps to marker radius.
type RadiusPolicy string

const (
	// RadiusDense is (2m)^1.5, tuned for a regional view.
	RadiusDense RadiusPolicy = "dense"
	// RadiusWide is m^2, tuned for a world view.
	RadiusWide RadiusPolicy = "wide"
)

// ParseRadiusPolicy validates a policy name.
func ParseRadiusPolicy(s string) (RadiusPolicy, error) {
	switch RadiusPolicy(s) {
	case RadiusDense, RadiusWide:
		return RadiusPolicy(s), nil
	}
	return "", fmt.Errorf("unknown radius policy %q (want dense or wide)", s)
}

// ColorFor maps a magnitude to its display color. The chain must be checked
// from the highest threshold down.
func ColorFor(magnitude float64) ColorHex {
	switch {
	case magnitude > 5:
		return ColorRed
	case magnitude > 4:
		return ColorOrange
	case magnitude > 3:
		return ColorYellow
	case magnitude > 2:
		return ColorGreen
	case magnitude > 1:
		return ColorDarkGreen
	default:
		return ColorGray
	}
}

// RadiusFor maps a magnitude to a marker radius under the given policy.
// An unrecognised policy falls back to RadiusWide. The result is always
// finite.
func RadiusFor(policy RadiusPolicy, magnitude float64) float64 {
	if math.IsNaN(magnitude) || magnitude <= 0 {
		return MinRadius
	}
	var r float64
	if policy == RadiusDense {
		r = math.Pow(magnitude*2, 1.5)
	} else {
		r = magnitude * magnitude
	}
	if math.IsInf(r, 0) {
		return MinRadius
	}
	return r
}

// StyleFor composes the color and radius encodings into a marker style.
func StyleFor(f EarthquakeFeature, policy RadiusPolicy) StyleSpec {
	return StyleSpec{
		FillColor:     ColorFor(f.Magnitude),
		StrokeColor:   ColorStroke,
		Radius:        RadiusFor(policy, f.Magnitude),
		StrokeWeight:  markerStrokeWeight,
		FillOpacity:   1,
		StrokeOpacity: 1,
	}
}

// PopupFor renders the click popup for a feature as an HTML fragment.
func PopupFor(f EarthquakeFeature) string {
	return "Magnitude: " + FormatMagnitude(f.Magnitude) + "<br>Location: " + html.EscapeString(f.Place)
}

// FormatMagnitude prints the shortest decimal form of m, or "n/a" for NaN.
func FormatMagnitude(m float64) string {
	if math.IsNaN(m) {
		return "n/a"
	}
	return strconv.FormatFloat(m, 'f', -1, 64)
}

// Encode styles every feature with the given policy.
func Encode(features []EarthquakeFeature, policy RadiusPolicy) []Marker {
	markers := make([]Marker, len(features))
	for i, f := range features {
		markers[i] = Marker{
			Feature: f,
			Style:   StyleFor(f, policy),
			Popup:   PopupFor(f),
		}
	}
	return markers
}
