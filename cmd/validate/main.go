// Command validate checks a USGS-style earthquake feed file, and optionally a
// styled layer produced from it, for malformed or inconsistent data. It reports
// features the service would skip, magnitudes that fall back to the gray bin,
// and any layer marker whose style disagrees with the encoder.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -feed data/mock/all_month.geojson \
//	  -layer data/mock/earthquakes_layer.json
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/quake-map-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/tidwall/gjson"
)

// phase tracks pass/fail for a validation phase. Warnings are reported but do
// not fail the run unless -strict is set.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed(strict bool) bool {
	return len(p.errors) == 0 && (!strict || len(p.warnings) == 0)
}

func main() {
	feedPath := flag.String("feed", "", "path to a USGS summary GeoJSON feed")
	layerPath := flag.String("layer", "", "optional path to a styled earthquake layer built from the feed")
	policy := flag.String("radius-policy", string(domain.RadiusWide), "radius policy the layer was built with")
	strict := flag.Bool("strict", false, "treat warnings as failures")
	flag.Parse()

	if *feedPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	radius, err := domain.ParseRadiusPolicy(*policy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(*feedPath, *layerPath, radius, *strict))
}

func run(feedPath, layerPath string, radius domain.RadiusPolicy, strict bool) int {
	fmt.Println("=== Earthquake Feed Validation ===")
	fmt.Println()

	feedData, err := os.ReadFile(feedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read feed: %v\n", err)
		return 1
	}
	if !gjson.ValidBytes(feedData) {
		fmt.Fprintf(os.Stderr, "FATAL: %s is not valid JSON\n", feedPath)
		return 1
	}
	feed := gjson.ParseBytes(feedData)

	features, skipped, err := usgs.ParseEarthquakes(feedData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse feed: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSchema(feedData),
		validateFeatures(feed),
		validateParse(feed, features, skipped),
	}
	if layerPath != "" {
		layerData, err := os.ReadFile(layerPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: read layer: %v\n", err)
			return 1
		}
		phases = append(phases, validateLayer(gjson.ParseBytes(layerData), features, radius))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed(strict) {
			status = fmt.Sprintf("\033[31mFAIL (%d errors, %d warnings)\033[0m", len(p.errors), len(p.warnings))
			allPassed = false
		} else if len(p.warnings) > 0 {
			status = fmt.Sprintf("\033[33mPASS (%d warnings)\033[0m", len(p.warnings))
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Features: %d in feed, %d rendered, %d skipped\n",
		len(feed.Get("features").Array()), len(features), skipped)

	for _, p := range phases {
		printIssues(p.name, "error", p.errors)
		printIssues(p.name, "warning", p.warnings)
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func printIssues(name, kind string, issues []string) {
	if len(issues) == 0 {
		return
	}
	fmt.Printf("\n--- %s (%s) ---\n", name, kind)
	for i, e := range issues {
		fmt.Printf("  [%d] %s\n", i+1, e)
	}
}

// ── Phase 0: Schema ──
// Structural check against the summary feed JSON schema.

func validateSchema(data []byte) *phase {
	p := &phase{name: "Phase 0: Feed Schema"}

	violations, err := usgs.ValidateFeed(data)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	for _, v := range violations {
		p.errorf("%s", v)
	}
	return p
}

// ── Phase 1: Feature shape ──
// Checks each feature the way the map consumes it.

func validateFeatures(feed gjson.Result) *phase {
	p := &phase{name: "Phase 1: Feature Shape"}

	if typ := feed.Get("type").String(); typ != "FeatureCollection" {
		p.errorf("top-level type is %q, want FeatureCollection", typ)
		return p
	}

	seen := make(map[string]int)
	for i, f := range feed.Get("features").Array() {
		id := f.Get("id").String()
		label := fmt.Sprintf("feature %d (%s)", i, id)
		if id == "" {
			p.warnf("feature %d: missing id", i)
		} else if prev, dup := seen[id]; dup {
			p.warnf("%s: duplicate id, first seen at feature %d", label, prev)
		} else {
			seen[id] = i
		}

		checkGeometry(p, label, f.Get("geometry"))

		props := f.Get("properties")
		mag := props.Get("mag")
		switch {
		case !mag.Exists() || mag.Type == gjson.Null:
			p.warnf("%s: missing magnitude, drawn gray with popup n/a", label)
		case mag.Type != gjson.Number:
			p.warnf("%s: non-numeric magnitude %s, drawn gray", label, mag.Raw)
		case mag.Float() < 0:
			p.warnf("%s: negative magnitude %g, drawn gray at minimum radius", label, mag.Float())
		}
		if props.Get("place").String() == "" {
			p.warnf("%s: missing place", label)
		}
		if props.Get("time").Type != gjson.Number {
			p.warnf("%s: missing or non-numeric time", label)
		}
	}
	return p
}

func checkGeometry(p *phase, label string, geom gjson.Result) {
	if !geom.IsObject() {
		p.errorf("%s: no geometry, feature is skipped", label)
		return
	}
	if typ := geom.Get("type").String(); typ != "Point" {
		p.errorf("%s: geometry type %q, feature is skipped", label, typ)
		return
	}
	coords := geom.Get("coordinates").Array()
	if len(coords) < 2 {
		p.errorf("%s: %d coordinates, feature is skipped", label, len(coords))
		return
	}
	for j, c := range coords {
		if c.Type != gjson.Number {
			p.errorf("%s: coordinate %d is not a number", label, j)
			return
		}
	}
	if lon := coords[0].Float(); lon < -180 || lon > 180 {
		p.errorf("%s: longitude %g out of range", label, lon)
	}
	if lat := coords[1].Float(); lat < -90 || lat > 90 {
		p.errorf("%s: latitude %g out of range", label, lat)
	}
}

// ── Phase 2: Parse accounting ──
// Every feature is either rendered or counted as skipped.

func validateParse(feed gjson.Result, features []domain.EarthquakeFeature, skipped int) *phase {
	p := &phase{name: "Phase 2: Parse Accounting"}

	total := len(feed.Get("features").Array())
	if len(features)+skipped != total {
		p.errorf("rendered %d + skipped %d != %d features in feed", len(features), skipped, total)
	}
	if declared := feed.Get("metadata.count"); declared.Exists() && int(declared.Int()) != total {
		p.warnf("metadata.count is %d, feed has %d features", declared.Int(), total)
	}
	return p
}

// ── Phase 3: Layer consistency ──
// The layer must hold one marker per rendered feature, styled as the encoder
// would style it.

func validateLayer(layer gjson.Result, features []domain.EarthquakeFeature, radius domain.RadiusPolicy) *phase {
	p := &phase{name: "Phase 3: Layer Consistency"}

	items := layer.Get("features").Array()
	if len(items) != len(features) {
		p.errorf("layer has %d markers, feed renders %d", len(items), len(features))
		return p
	}

	for i, item := range items {
		want := domain.StyleFor(features[i], radius)
		label := fmt.Sprintf("marker %d (%s)", i, features[i].ID)

		if got := item.Get("id").String(); got != features[i].ID {
			p.errorf("%s: id %q", label, got)
		}
		style := item.Get("properties.style")
		if got := style.Get("fillColor").String(); got != string(want.FillColor) {
			p.errorf("%s: fillColor %s, want %s", label, got, want.FillColor)
		}
		if got := style.Get("radius").Float(); math.Abs(got-want.Radius) > 1e-6 {
			p.errorf("%s: radius %g, want %g", label, got, want.Radius)
		}
		if got := item.Get("properties.popup").String(); got != domain.PopupFor(features[i]) {
			p.errorf("%s: popup %q", label, got)
		}
	}
	return p
}
