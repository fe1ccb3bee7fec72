package natsadapter

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerSubject(t *testing.T) {
	assert.Equal(t, "quakemap.markers.0", MarkerSubject("quakemap.markers", 0))
	assert.Equal(t, "quakemap.markers.5", MarkerSubject("quakemap.markers", 5))
}

func TestBuildMsg(t *testing.T) {
	renderedAt := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	m := domain.Encode([]domain.EarthquakeFeature{
		{ID: "us7000test1", Magnitude: 4.2, Place: "10km N of Testville"},
	}, domain.RadiusWide)[0]

	msg, err := buildMsg("quakemap.markers", m, "render-1", renderedAt)
	require.NoError(t, err)

	assert.Equal(t, "quakemap.markers.4", msg.Subject)
	assert.Equal(t, "us7000test1", msg.Header.Get("Quake-Id"))
	assert.Equal(t, "#FF7F00", msg.Header.Get("Color"))
	assert.Equal(t, "2024-04-26T15:10:00Z", msg.Header.Get("Rendered-At"))
	assert.Equal(t, "render-1", msg.Header.Get("Render-Id"))

	var rec domain.MarkerRecord
	require.NoError(t, json.Unmarshal(msg.Data, &rec))
	assert.Equal(t, "Magnitude: 4.2<br>Location: 10km N of Testville", rec.Popup)
	assert.Equal(t, 4, rec.Bin)
}

func TestBuildMsg_MissingMagnitudeGoesToGrayBin(t *testing.T) {
	m := domain.Encode([]domain.EarthquakeFeature{{ID: "ak1", Magnitude: math.NaN()}}, domain.RadiusWide)[0]

	msg, err := buildMsg("quakemap.markers", m, "render-1", time.Now())
	require.NoError(t, err)

	assert.Equal(t, "quakemap.markers.0", msg.Subject)
	assert.Equal(t, "#DEDEDE", msg.Header.Get("Color"))
	assert.Contains(t, string(msg.Data), `"magnitude":null`)
}
