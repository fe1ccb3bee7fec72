package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// EarthquakeFeature is one event from a USGS summary feed.
type EarthquakeFeature struct {
	ID        string    `json:"id"`
	Magnitude float64   `json:"magnitude"` // NaN when the feed reports null
	Place     string    `json:"place"`
	Geo       Geo       `json:"geo"`
	Depth     float64   `json:"depth_km"`
	Time      time.Time `json:"time"`
	URL       string    `json:"url,omitempty"`
}

// HasMagnitude reports whether the event carries a usable (finite) magnitude.
func (f EarthquakeFeature) HasMagnitude() bool {
	return !math.IsNaN(f.Magnitude) && !math.IsInf(f.Magnitude, 0)
}

// PlateBoundary is a single tectonic plate boundary line. Geometry is kept as
// the raw GeoJSON geometry object; boundaries are drawn, never inspected.
type PlateBoundary struct {
	Name     string          `json:"name,omitempty"`
	Geometry json.RawMessage `json:"geometry"`
}

// Marker is an earthquake paired with its computed style and popup content.
type Marker struct {
	Feature EarthquakeFeature
	Style   StyleSpec
	Popup   string
}

// FeedWindow selects the time range covered by a USGS summary feed.
type FeedWindow string

const (
	WindowHour  FeedWindow = "hour"
	WindowDay   FeedWindow = "day"
	WindowWeek  FeedWindow = "week"
	WindowMonth FeedWindow = "month"
)

// FeedWindows lists every supported window, shortest first.
var FeedWindows = []FeedWindow{WindowHour, WindowDay, WindowWeek, WindowMonth}

// ParseFeedWindow validates a window name.
func ParseFeedWindow(s string) (FeedWindow, error) {
	for _, w := range FeedWindows {
		if string(w) == s {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown feed window %q (want hour, day, week or month)", s)
}

// FeedFile returns the summary file name for the window, e.g. "all_month.geojson".
func (w FeedWindow) FeedFile() string {
	return "all_" + string(w) + ".geojson"
}
