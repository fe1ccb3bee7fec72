package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
)

// Publisher publishes rendered markers on core NATS. Each marker goes to
// <subject>.<bin>, so subscribers can filter by magnitude bin, e.g.
// "quakemap.markers.5" for the top bin or "quakemap.markers.>" for all.
// It implements pipeline.MarkerSink.
type Publisher struct {
	conn    *nats.Conn
	subject string
	clock   clockwork.Clock
	logger  *slog.Logger
}

// NewPublisher connects to NATS. The connection retries in the background, so
// a server that is down at startup does not fail the service.
func NewPublisher(url, subject string, logger *slog.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("quakemap"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: conn, subject: subject, clock: clockwork.NewRealClock(), logger: logger}, nil
}

// Publish sends one message per marker and waits for the server to
// acknowledge the batch.
func (p *Publisher) Publish(ctx context.Context, markers []domain.Marker) error {
	if len(markers) == 0 {
		return nil
	}
	renderID := uuid.NewString()
	renderedAt := p.clock.Now().UTC()

	for i := range markers {
		msg, err := buildMsg(p.subject, markers[i], renderID, renderedAt)
		if err != nil {
			return err
		}
		if err := p.conn.PublishMsg(msg); err != nil {
			return fmt.Errorf("publish marker %q: %w", markers[i].Feature.ID, err)
		}
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %d markers: %w", len(markers), err)
	}
	p.logger.Debug("markers published", "subject", p.subject, "render_id", renderID, "count", len(markers))
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// MarkerSubject returns the subject a marker in bin is published on.
func MarkerSubject(base string, bin int) string {
	return base + "." + strconv.Itoa(bin)
}

func buildMsg(subject string, m domain.Marker, renderID string, renderedAt time.Time) (*nats.Msg, error) {
	rec := domain.NewMarkerRecord(m, renderID, renderedAt)
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("serialize marker %q: %w", m.Feature.ID, err)
	}

	msg := nats.NewMsg(MarkerSubject(subject, rec.Bin))
	msg.Data = data
	msg.Header.Set("Quake-Id", m.Feature.ID)
	msg.Header.Set("Color", string(m.Style.FillColor))
	msg.Header.Set("Rendered-At", renderedAt.Format(time.RFC3339))
	msg.Header.Set("Render-Id", renderID)
	return msg, nil
}
