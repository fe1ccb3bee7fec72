package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/quake-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/pipeline"
	"github.com/couchcryptid/quake-map-service/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene() pipeline.Scene {
	return pipeline.Scene{
		Markers: domain.Encode([]domain.EarthquakeFeature{
			{ID: "us7000test1", Magnitude: 4.2, Place: "10km N of Testville"},
		}, domain.RadiusWide),
		Plates: []domain.PlateBoundary{
			{Name: "AF-AN", Geometry: json.RawMessage(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`)},
		},
	}
}

func TestWrite_Layered(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	m := render.NewMap(domain.ProfileLayered, mapbox.TileLayers("pk.test"), Sources())

	res, err := Write(dir, m, testScene())
	require.NoError(t, err)
	assert.Len(t, res.Files, 4)

	page, err := os.ReadFile(filepath.Join(dir, PageFile))
	require.NoError(t, err)
	assert.Contains(t, string(page), `"source":"earthquakes.geojson"`)
	assert.Contains(t, string(page), `"source":"plates.geojson"`)

	quakes, err := os.ReadFile(filepath.Join(dir, EarthquakesFile))
	require.NoError(t, err)
	assert.Contains(t, string(quakes), `"fillColor":"#FF7F00"`)

	plates, err := os.ReadFile(filepath.Join(dir, PlatesFile))
	require.NoError(t, err)
	assert.Contains(t, string(plates), `"AF-AN"`)

	stats, err := os.ReadFile(filepath.Join(dir, StatsFile))
	require.NoError(t, err)
	assert.Contains(t, string(stats), "1 earthquakes by magnitude")
}

func TestWrite_MarkersProfileSkipsPlates(t *testing.T) {
	dir := t.TempDir()
	m := render.NewMap(domain.ProfileMarkers, mapbox.TileLayers("pk.test"), Sources())

	res, err := Write(dir, m, testScene())
	require.NoError(t, err)
	assert.Len(t, res.Files, 3)

	_, err = os.Stat(filepath.Join(dir, PlatesFile))
	assert.True(t, os.IsNotExist(err))
}

func TestWrite_EmptySceneWritesEmptyLayers(t *testing.T) {
	dir := t.TempDir()
	m := render.NewMap(domain.ProfileLayered, nil, Sources())

	_, err := Write(dir, m, pipeline.Scene{})
	require.NoError(t, err)

	quakes, err := os.ReadFile(filepath.Join(dir, EarthquakesFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(quakes))
}
