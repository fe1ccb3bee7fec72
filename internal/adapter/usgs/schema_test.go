package usgs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFeed_Fixture(t *testing.T) {
	violations, err := ValidateFeed(loadFixture(t, "all_month.geojson"))
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateFeed_ReportsViolations(t *testing.T) {
	feed := []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"ok","properties":{"mag":1.5,"time":1714142400000},
		 "geometry":{"type":"Point","coordinates":[10,20,5]}},
		{"type":"Feature","id":"bad-mag","properties":{"mag":"big","time":1714142400000},
		 "geometry":{"type":"Point","coordinates":[10,20]}},
		{"type":"Feature","id":"bad-lat","properties":{"mag":2},
		 "geometry":{"type":"Point","coordinates":[10,95]}}
	]}`)

	violations, err := ValidateFeed(feed)
	require.NoError(t, err)
	require.NotEmpty(t, violations)

	var locations []string
	for _, v := range violations {
		locations = append(locations, v.Location)
	}
	assert.Contains(t, locations, "/features/1/properties/mag")
	assert.NotContains(t, locations, "/features/0/properties/mag")
}

func TestValidateFeed_WrongRootType(t *testing.T) {
	violations, err := ValidateFeed([]byte(`{"type":"Feature","features":[]}`))
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "/type", violations[0].Location)
}

func TestValidateFeed_NotJSON(t *testing.T) {
	_, err := ValidateFeed([]byte(`not json`))
	require.Error(t, err)
}

func TestSchemaViolation_String(t *testing.T) {
	assert.Equal(t, "/: missing properties: 'features'", SchemaViolation{Message: "missing properties: 'features'"}.String())
}
