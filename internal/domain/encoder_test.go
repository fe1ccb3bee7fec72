package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlace = "10km N of Testville"

func TestColorFor(t *testing.T) {
	tests := []struct {
		name      string
		magnitude float64
		expected  ColorHex
	}{
		{"above five", 5.0001, ColorRed},
		{"large", 7.8, ColorRed},
		{"exactly five", 5.0, ColorOrange},
		{"four point two", 4.2, ColorOrange},
		{"exactly four", 4.0, ColorYellow},
		{"three point five", 3.5, ColorYellow},
		{"exactly three", 3.0, ColorGreen},
		{"two point one", 2.1, ColorGreen},
		{"exactly two", 2.0, ColorDarkGreen},
		{"one point five", 1.5, ColorDarkGreen},
		{"exactly one", 1.0, ColorGray},
		{"zero", 0, ColorGray},
		{"negative", -1.2, ColorGray},
		{"NaN", math.NaN(), ColorGray},
		{"positive infinity", math.Inf(1), ColorRed},
		{"negative infinity", math.Inf(-1), ColorGray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ColorFor(tt.magnitude))
		})
	}
}

func TestColorFor_IsTotal(t *testing.T) {
	allowed := map[ColorHex]bool{
		ColorRed: true, ColorOrange: true, ColorYellow: true,
		ColorGreen: true, ColorDarkGreen: true, ColorGray: true,
	}
	for m := -3.0; m <= 10.0; m += 0.05 {
		assert.True(t, allowed[ColorFor(m)], "magnitude %v produced %q", m, ColorFor(m))
	}
}

func TestRadiusFor_Dense(t *testing.T) {
	assert.InDelta(t, 14.697, RadiusFor(RadiusDense, 3), 0.001)
	assert.InDelta(t, math.Pow(2, 1.5), RadiusFor(RadiusDense, 1), 1e-9)
	assert.InDelta(t, 31.623, RadiusFor(RadiusDense, 5), 0.001)
}

func TestRadiusFor_Wide(t *testing.T) {
	assert.Equal(t, 9.0, RadiusFor(RadiusWide, 3))
	assert.Equal(t, 0.25, RadiusFor(RadiusWide, 0.5))
	assert.InDelta(t, 17.64, RadiusFor(RadiusWide, 4.2), 1e-9)
}

func TestRadiusFor_PoliciesDiffer(t *testing.T) {
	assert.NotEqual(t, RadiusFor(RadiusDense, 3), RadiusFor(RadiusWide, 3))
}

func TestRadiusFor_DegenerateMagnitudes(t *testing.T) {
	for _, policy := range []RadiusPolicy{RadiusDense, RadiusWide} {
		for _, m := range []float64{0, -0.5, -3, math.NaN(), math.Inf(-1), math.Inf(1), 1e250, math.MaxFloat64} {
			r := RadiusFor(policy, m)
			assert.Equal(t, MinRadius, r, "policy %s magnitude %v", policy, m)
		}
	}
}

func TestRadiusFor_OverflowFallsBack(t *testing.T) {
	assert.Equal(t, MinRadius, RadiusFor(RadiusWide, 1e200))
	r := RadiusFor(RadiusDense, 1e200)
	assert.False(t, math.IsInf(r, 0))
	assert.Greater(t, r, MinRadius)
}

func TestEarthquakeFeature_HasMagnitude(t *testing.T) {
	assert.True(t, EarthquakeFeature{Magnitude: 0}.HasMagnitude())
	assert.True(t, EarthquakeFeature{Magnitude: -1.2}.HasMagnitude())
	assert.False(t, EarthquakeFeature{Magnitude: math.NaN()}.HasMagnitude())
	assert.False(t, EarthquakeFeature{Magnitude: math.Inf(1)}.HasMagnitude())
}

func TestParseRadiusPolicy(t *testing.T) {
	p, err := ParseRadiusPolicy("dense")
	require.NoError(t, err)
	assert.Equal(t, RadiusDense, p)

	p, err = ParseRadiusPolicy("wide")
	require.NoError(t, err)
	assert.Equal(t, RadiusWide, p)

	_, err = ParseRadiusPolicy("huge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "huge")
}

func TestStyleFor(t *testing.T) {
	f := EarthquakeFeature{Magnitude: 4.2, Place: testPlace}

	style := StyleFor(f, RadiusWide)

	assert.Equal(t, ColorOrange, style.FillColor)
	assert.Equal(t, ColorStroke, style.StrokeColor)
	assert.InDelta(t, 17.64, style.Radius, 1e-9)
	assert.Equal(t, 0.25, style.StrokeWeight)
	assert.Equal(t, 1.0, style.FillOpacity)
	assert.Equal(t, 1.0, style.StrokeOpacity)
}

func TestStyleFor_Idempotent(t *testing.T) {
	f := EarthquakeFeature{Magnitude: 3.3, Place: testPlace, Geo: Geo{Lat: 1, Lon: 2}}

	for _, policy := range []RadiusPolicy{RadiusDense, RadiusWide} {
		a := StyleFor(f, policy)
		b := StyleFor(f, policy)
		assert.Equal(t, a, b)
		assert.Equal(t, math.Float64bits(a.Radius), math.Float64bits(b.Radius))
	}
}

func TestStyleFor_MissingMagnitude(t *testing.T) {
	style := StyleFor(EarthquakeFeature{Magnitude: math.NaN()}, RadiusDense)
	assert.Equal(t, ColorGray, style.FillColor)
	assert.Equal(t, MinRadius, style.Radius)
}

func TestPopupFor(t *testing.T) {
	f := EarthquakeFeature{Magnitude: 4.2, Place: testPlace}
	assert.Equal(t, "Magnitude: 4.2<br>Location: 10km N of Testville", PopupFor(f))
}

func TestPopupFor_EscapesPlace(t *testing.T) {
	f := EarthquakeFeature{Magnitude: 2, Place: `<script>alert("x")</script>`}
	popup := PopupFor(f)
	assert.NotContains(t, popup, "<script>")
	assert.Contains(t, popup, "&lt;script&gt;")
}

func TestPopupFor_MissingMagnitude(t *testing.T) {
	f := EarthquakeFeature{Magnitude: math.NaN(), Place: "Somewhere"}
	assert.Equal(t, "Magnitude: n/a<br>Location: Somewhere", PopupFor(f))
}

func TestEncode(t *testing.T) {
	features := []EarthquakeFeature{
		{ID: "a", Magnitude: 5.5, Place: "A"},
		{ID: "b", Magnitude: 0.4, Place: "B"},
	}

	markers := Encode(features, RadiusDense)

	require.Len(t, markers, 2)
	assert.Equal(t, "a", markers[0].Feature.ID)
	assert.Equal(t, ColorRed, markers[0].Style.FillColor)
	assert.Equal(t, ColorGray, markers[1].Style.FillColor)
	assert.Equal(t, "Magnitude: 0.4<br>Location: B", markers[1].Popup)
}

func TestParseFeedWindow(t *testing.T) {
	for _, w := range FeedWindows {
		got, err := ParseFeedWindow(string(w))
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}

	_, err := ParseFeedWindow("year")
	require.Error(t, err)
	assert.Equal(t, "all_week.geojson", WindowWeek.FeedFile())
}
