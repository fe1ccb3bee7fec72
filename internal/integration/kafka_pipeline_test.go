//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/couchcryptid/quake-map-service/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testMarkerTopic = "test-earthquake-markers"

// publishedMarker is the subset of a marker message the test inspects.
type publishedMarker struct {
	Key     string
	Headers map[string]string
	Body    struct {
		ID        string   `json:"id"`
		Magnitude *float64 `json:"magnitude"`
		Popup     string   `json:"popup"`
		Style     struct {
			FillColor string `json:"fill_color"`
		} `json:"style"`
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("quakemap-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// feedServer serves the adapter's month fixture as a USGS summary feed.
func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "adapter", "usgs", "testdata", "all_month.geojson"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/all_month.geojson" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func readMarkers(ctx context.Context, t *testing.T, broker string, n int) []publishedMarker {
	t.Helper()
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testMarkerTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	defer reader.Close()

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out := make([]publishedMarker, 0, n)
	for range n {
		msg, err := reader.ReadMessage(readCtx)
		require.NoError(t, err, "read marker message")

		pm := publishedMarker{Key: string(msg.Key), Headers: make(map[string]string, len(msg.Headers))}
		for _, h := range msg.Headers {
			pm.Headers[h.Key] = string(h.Value)
		}
		require.NoError(t, json.Unmarshal(msg.Value, &pm.Body))
		out = append(out, pm)
	}
	return out
}

// TestPipelinePublishesMarkers runs a full render against a fixture feed with
// a real Kafka writer and reads the published markers back.
func TestPipelinePublishesMarkers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testMarkerTopic)

	feed := feedServer(t)
	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()

	writer := kafka.NewWriter(&config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testMarkerTopic,
	}, logger)
	t.Cleanup(func() { _ = writer.Close() })

	source := usgs.NewClient(feed.URL, feed.URL+"/plates.json", 10*time.Second, metrics, logger)
	p := pipeline.New(source, writer, pipeline.Settings{
		Window:       domain.WindowMonth,
		RadiusPolicy: domain.RadiusWide,
	}, logger, metrics)

	scene := p.Render(ctx)
	require.NoError(t, scene.EarthquakeErr)
	require.Len(t, scene.Markers, 3, "fixture has three features with a point geometry")
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.MarkersPublished), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PublishErrors), 0)

	got := readMarkers(ctx, t, broker, 3)
	byKey := make(map[string]publishedMarker, len(got))
	for _, m := range got {
		byKey[m.Key] = m
	}

	first, ok := byKey["us7000test1"]
	require.True(t, ok, "marker keyed by feature id")
	assert.Equal(t, "#FF7F00", first.Headers["color"])
	assert.NotEmpty(t, first.Headers["rendered_at"])
	require.NotNil(t, first.Body.Magnitude)
	assert.InDelta(t, 4.2, *first.Body.Magnitude, 1e-9)
	assert.Equal(t, "Magnitude: 4.2<br>Location: 10km N of Testville", first.Body.Popup)
	assert.Equal(t, "#FF7F00", first.Body.Style.FillColor)

	var missing int
	for _, m := range got {
		if m.Body.Magnitude == nil {
			missing++
			assert.Equal(t, "#DEDEDE", m.Headers["color"])
		}
	}
	assert.Equal(t, 1, missing, "null magnitude published as null, drawn gray")
}
