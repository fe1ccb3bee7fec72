package usgs

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/tidwall/gjson"
)

var errInvalidJSON = errors.New("invalid JSON")

// ParseEarthquakes reads a USGS summary FeatureCollection. Features without a
// usable Point geometry are dropped and counted in skipped. A null,
// non-numeric, or out-of-range magnitude becomes NaN.
func ParseEarthquakes(data []byte) (features []domain.EarthquakeFeature, skipped int, err error) {
	root, err := featureCollection(data)
	if err != nil {
		return nil, 0, err
	}

	items := root.Get("features").Array()
	features = make([]domain.EarthquakeFeature, 0, len(items))
	for _, f := range items {
		feature, ok := parseEarthquake(f)
		if !ok {
			skipped++
			continue
		}
		features = append(features, feature)
	}
	return features, skipped, nil
}

func parseEarthquake(f gjson.Result) (domain.EarthquakeFeature, bool) {
	if f.Get("geometry.type").String() != "Point" {
		return domain.EarthquakeFeature{}, false
	}
	coords := f.Get("geometry.coordinates").Array()
	if len(coords) < 2 || !finite(coords[0].Float()) || !finite(coords[1].Float()) {
		return domain.EarthquakeFeature{}, false
	}

	props := f.Get("properties")

	magnitude := math.NaN()
	if mag := props.Get("mag"); mag.Type == gjson.Number && finite(mag.Float()) {
		magnitude = mag.Float()
	}

	feature := domain.EarthquakeFeature{
		ID:        f.Get("id").String(),
		Magnitude: magnitude,
		Place:     props.Get("place").String(),
		// GeoJSON positions are [lon, lat, depth].
		Geo: domain.Geo{Lat: coords[1].Float(), Lon: coords[0].Float()},
		URL: props.Get("url").String(),
	}
	if len(coords) > 2 && finite(coords[2].Float()) {
		feature.Depth = coords[2].Float()
	}
	if ts := props.Get("time"); ts.Type == gjson.Number {
		feature.Time = time.UnixMilli(ts.Int()).UTC()
	}
	return feature, true
}

// finite rejects the infinities gjson yields for out-of-range numbers like 1e999.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParsePlates reads the plate boundary FeatureCollection. Features without a
// geometry are dropped.
func ParsePlates(data []byte) ([]domain.PlateBoundary, error) {
	root, err := featureCollection(data)
	if err != nil {
		return nil, err
	}

	var plates []domain.PlateBoundary
	root.Get("features").ForEach(func(_, f gjson.Result) bool {
		geom := f.Get("geometry")
		if !geom.IsObject() {
			return true
		}
		plates = append(plates, domain.PlateBoundary{
			Name:     f.Get("properties.Name").String(),
			Geometry: json.RawMessage(geom.Raw),
		})
		return true
	})
	return plates, nil
}

func featureCollection(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, errInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if typ := root.Get("type").String(); typ != "FeatureCollection" {
		return gjson.Result{}, fmt.Errorf("expected FeatureCollection, got %q", typ)
	}
	return root, nil
}
