package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes rendered earthquake markers to a Kafka topic.
// It implements pipeline.MarkerSink.
type Writer struct {
	writer *kafkago.Writer
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured marker topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Writer{writer: w, clock: clockwork.NewRealClock(), logger: logger}
}

// Publish serializes the markers and writes them in a single WriteMessages
// call. Markers are keyed by feature ID so re-renders of the same event land
// on the same partition.
func (w *Writer) Publish(ctx context.Context, markers []domain.Marker) error {
	if len(markers) == 0 {
		return nil
	}
	renderID := uuid.NewString()
	renderedAt := w.clock.Now().UTC()
	msgs := make([]kafkago.Message, len(markers))
	for i := range markers {
		msg, err := serializeToMessage(markers[i], renderID, renderedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d markers: %w", len(msgs), err)
	}
	w.logger.Debug("markers published", "topic", w.writer.Topic, "render_id", renderID, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Marker into a Kafka message.
func serializeToMessage(m domain.Marker, renderID string, renderedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(domain.NewMarkerRecord(m, renderID, renderedAt))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize marker %q: %w", m.Feature.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(m.Feature.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "color", Value: []byte(m.Style.FillColor)},
			{Key: "rendered_at", Value: []byte(renderedAt.Format(time.RFC3339))},
			{Key: "render_id", Value: []byte(renderID)},
		},
	}, nil
}
