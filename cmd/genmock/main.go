// Command genmock writes a deterministic mock USGS summary feed and, optionally,
// the styled earthquake layer the service would serve for it. The layer is
// produced by the same parse and encode path the service uses, so the two
// fixtures always agree.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/all_month.geojson \
//	  -layer-out data/mock/earthquakes_layer.json \
//	  -count 500 -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/render"
	"github.com/jonboulle/clockwork"
)

var generatedAt = time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)

// edgeCases pin the color boundaries and degenerate magnitudes so every mock
// feed exercises them regardless of seed.
var edgeCases = []struct {
	place string
	mag   *float64
}{
	{"Boundary 1.0", ptr(1.0)},
	{"Boundary 2.0", ptr(2.0)},
	{"Boundary 3.0", ptr(3.0)},
	{"Boundary 4.0", ptr(4.0)},
	{"Boundary 5.0", ptr(5.0)},
	{"Just above 5", ptr(5.0001)},
	{"Zero magnitude", ptr(0)},
	{"Negative magnitude", ptr(-0.4)},
	{"Missing magnitude", nil},
}

type feed struct {
	Type     string    `json:"type"`
	Metadata metadata  `json:"metadata"`
	Features []feature `json:"features"`
}

type metadata struct {
	Generated int64  `json:"generated"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Count     int    `json:"count"`
}

type feature struct {
	Type       string     `json:"type"`
	ID         string     `json:"id"`
	Properties properties `json:"properties"`
	Geometry   *point     `json:"geometry"`
}

type properties struct {
	Mag   *float64 `json:"mag"`
	Place string   `json:"place"`
	Time  int64    `json:"time"`
	URL   string   `json:"url"`
	Type  string   `json:"type"`
}

type point struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the mock USGS feed")
	layerOut := flag.String("layer-out", "", "optional output path for the styled earthquake layer")
	count := flag.Int("count", 200, "number of random features to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	policy := flag.String("radius-policy", string(domain.RadiusWide), "radius policy for the layer: dense or wide")
	malformed := flag.Bool("malformed", true, "include a feature with no geometry")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	radius, err := domain.ParseRadiusPolicy(*policy)
	if err != nil {
		return err
	}

	clock := clockwork.NewFakeClockAt(generatedAt)
	f := generate(clock, *count, *seed, *malformed)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	violations, err := usgs.ValidateFeed(data)
	if err != nil {
		return fmt.Errorf("validate generated feed: %w", err)
	}
	if len(violations) > 0 {
		return fmt.Errorf("generated feed breaks the feed schema: %s", violations[0])
	}
	if err := writeFile(*out, data); err != nil {
		return fmt.Errorf("writing feed: %w", err)
	}
	log.Printf("wrote feed: %s (%d features)", *out, len(f.Features))

	features, skipped, err := usgs.ParseEarthquakes(data)
	if err != nil {
		return fmt.Errorf("parse generated feed: %w", err)
	}
	markers := domain.Encode(features, radius)
	printStats(markers, skipped)

	if *layerOut != "" {
		layer, err := json.MarshalIndent(render.MarkerCollection(markers), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal layer: %w", err)
		}
		if err := writeFile(*layerOut, layer); err != nil {
			return fmt.Errorf("writing layer: %w", err)
		}
		log.Printf("wrote layer: %s", *layerOut)
	}
	return nil
}

func generate(clock clockwork.Clock, count int, seed uint64, malformed bool) feed {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	now := clock.Now()
	window := 30 * 24 * time.Hour

	features := make([]feature, 0, count+len(edgeCases)+1)
	for i := range count {
		// Skewed toward small events, like the real feed.
		mag := math.Round((math.Pow(rng.Float64(), 2)*8-0.5)*10) / 10
		at := now.Add(-time.Duration(rng.Int64N(int64(window))))
		features = append(features, newFeature(
			fmt.Sprintf("mock%06d", i),
			&mag,
			fmt.Sprintf("%dkm %s of Mockville", 1+rng.IntN(120), compass[rng.IntN(len(compass))]),
			at,
			&point{Type: "Point", Coordinates: []float64{
				round(rng.Float64()*360-180, 4),
				round(rng.Float64()*140-70, 4),
				round(rng.Float64()*300, 2),
			}},
		))
	}

	for i, ec := range edgeCases {
		features = append(features, newFeature(
			fmt.Sprintf("edge%03d", i),
			ec.mag,
			ec.place,
			now.Add(-time.Duration(i)*time.Hour),
			&point{Type: "Point", Coordinates: []float64{-118.2437, 34.0522, 10}},
		))
	}

	if malformed {
		features = append(features, newFeature("broken001", ptr(3.3), "No geometry", now, nil))
	}

	return feed{
		Type: "FeatureCollection",
		Metadata: metadata{
			Generated: now.UnixMilli(),
			Title:     "Mock Earthquakes, Past Month",
			Status:    200,
			Count:     len(features),
		},
		Features: features,
	}
}

var compass = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func newFeature(id string, mag *float64, place string, at time.Time, geom *point) feature {
	return feature{
		Type: "Feature",
		ID:   id,
		Properties: properties{
			Mag:   mag,
			Place: place,
			Time:  at.UnixMilli(),
			URL:   "https://earthquake.usgs.gov/earthquakes/eventpage/" + id,
			Type:  "earthquake",
		},
		Geometry: geom,
	}
}

func printStats(markers []domain.Marker, skipped int) {
	bins := domain.LegendBins()
	counts := make([]int, len(bins))
	for _, m := range markers {
		counts[domain.BinIndex(m.Feature.Magnitude)]++
	}

	fmt.Println()
	fmt.Printf("markers: %d, skipped: %d\n", len(markers), skipped)
	for i, b := range bins {
		fmt.Printf("  %-5s %s  %d\n", b.Label(), b.Color, counts[i])
	}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func ptr(v float64) *float64 { return &v }
