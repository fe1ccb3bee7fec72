// Package snapshot writes a self-contained static copy of the map: the page
// plus one GeoJSON file per overlay, side by side in a directory.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/quake-map-service/internal/pipeline"
	"github.com/couchcryptid/quake-map-service/internal/render"
)

// File names inside a snapshot directory.
const (
	PageFile        = "index.html"
	EarthquakesFile = "earthquakes.geojson"
	PlatesFile      = "plates.geojson"
	StatsFile       = "stats.html"
)

// Sources points the map's overlays at the snapshot's own files.
func Sources() render.Sources {
	return render.Sources{Earthquakes: EarthquakesFile, Plates: PlatesFile}
}

// Result lists what Write produced.
type Result struct {
	Dir   string
	Files []string
}

// Write renders the scene into dir, creating it if needed. The map should be
// built with Sources so the page loads the files written next to it. The
// plates file is only written when the map carries a plates overlay.
func Write(dir string, m render.Map, scene pipeline.Scene) (Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create snapshot dir: %w", err)
	}
	res := Result{Dir: dir}

	var page bytes.Buffer
	if err := render.Page(&page, render.NewPageData(m)); err != nil {
		return Result{}, err
	}
	if err := writeFile(dir, PageFile, page.Bytes(), &res); err != nil {
		return Result{}, err
	}

	if err := writeJSON(dir, EarthquakesFile, render.MarkerCollection(scene.Markers), &res); err != nil {
		return Result{}, err
	}
	var stats bytes.Buffer
	if err := render.StatsPage(&stats, scene.Markers, "Generated "+scene.GeneratedAt.Format("2006-01-02 15:04 MST")); err != nil {
		return Result{}, err
	}
	if err := writeFile(dir, StatsFile, stats.Bytes(), &res); err != nil {
		return Result{}, err
	}
	if m.HasOverlay(render.OverlayPlates) {
		if err := writeJSON(dir, PlatesFile, render.PlateCollection(scene.Plates), &res); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func writeJSON(dir, name string, v any, res *Result) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return writeFile(dir, name, data, res)
}

func writeFile(dir, name string, data []byte, res *Result) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // static site output
		return fmt.Errorf("write %s: %w", name, err)
	}
	res.Files = append(res.Files, path)
	return nil
}
