package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const (
	layerEarthquakes = "earthquakes"
	layerPlates      = "plates"
)

// FeedSource fetches the two map data feeds.
type FeedSource interface {
	FetchEarthquakes(ctx context.Context, window domain.FeedWindow) ([]domain.EarthquakeFeature, error)
	FetchPlates(ctx context.Context) ([]domain.PlateBoundary, error)
}

// MarkerSink receives every rendered earthquake layer.
type MarkerSink interface {
	Publish(ctx context.Context, markers []domain.Marker) error
}

// FanOut combines sinks into one. Every sink receives every layer; their
// errors are joined. It returns nil when no sinks are given.
func FanOut(sinks ...MarkerSink) MarkerSink {
	switch len(sinks) {
	case 0:
		return nil
	case 1:
		return sinks[0]
	}
	return fanOut(sinks)
}

type fanOut []MarkerSink

func (f fanOut) Publish(ctx context.Context, markers []domain.Marker) error {
	var errs []error
	for _, s := range f {
		if err := s.Publish(ctx, markers); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Settings selects what the pipeline renders.
type Settings struct {
	Window        domain.FeedWindow
	RadiusPolicy  domain.RadiusPolicy
	IncludePlates bool
	Clock         clockwork.Clock // nil means the real clock
}

// Scene is the result of one full render pass. A layer whose feed failed is
// empty and its error is set.
type Scene struct {
	Markers       []domain.Marker
	Plates        []domain.PlateBoundary
	GeneratedAt   time.Time
	EarthquakeErr error
	PlatesErr     error
}

// Pipeline owns the map's data flow: feed fetch, encoding, and optional
// publishing. One Pipeline is built at startup and shared by every request.
type Pipeline struct {
	source   FeedSource
	sink     MarkerSink
	settings Settings
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// New creates a Pipeline. Pass a nil sink to disable marker publishing.
func New(source FeedSource, sink MarkerSink, settings Settings, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	clock := settings.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if settings.Window == "" {
		settings.Window = domain.WindowMonth
	}
	if settings.RadiusPolicy == "" {
		settings.RadiusPolicy = domain.RadiusWide
	}
	return &Pipeline{
		source:   source,
		sink:     sink,
		settings: settings,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Window is the feed window used when a caller does not pick one.
func (p *Pipeline) Window() domain.FeedWindow {
	return p.settings.Window
}

// CheckReadiness returns nil once any layer has rendered successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no map layer has rendered yet")
	}
	return nil
}

// EarthquakeMarkers fetches the window's feed and encodes every feature. It
// neither publishes nor records render metrics.
func (p *Pipeline) EarthquakeMarkers(ctx context.Context, window domain.FeedWindow) ([]domain.Marker, error) {
	features, err := p.source.FetchEarthquakes(ctx, window)
	if err != nil {
		return nil, err
	}
	return domain.Encode(features, p.settings.RadiusPolicy), nil
}

// EarthquakeLayer renders the window's earthquake layer and publishes it.
func (p *Pipeline) EarthquakeLayer(ctx context.Context, window domain.FeedWindow) ([]domain.Marker, error) {
	markers, err := p.EarthquakeMarkers(ctx, window)
	if err != nil {
		p.metrics.LayerErrors.WithLabelValues(layerEarthquakes).Inc()
		return nil, err
	}

	for _, m := range markers {
		p.metrics.MarkersRendered.WithLabelValues(strconv.Itoa(domain.BinIndex(m.Feature.Magnitude))).Inc()
	}
	p.publish(ctx, markers)
	p.ready.Store(true)

	p.logger.Debug("earthquake layer rendered", "window", window, "markers", len(markers))
	return markers, nil
}

// PlateLayer fetches the tectonic plate boundaries.
func (p *Pipeline) PlateLayer(ctx context.Context) ([]domain.PlateBoundary, error) {
	plates, err := p.source.FetchPlates(ctx)
	if err != nil {
		p.metrics.LayerErrors.WithLabelValues(layerPlates).Inc()
		return nil, err
	}
	p.ready.Store(true)

	p.logger.Debug("plate layer rendered", "boundaries", len(plates))
	return plates, nil
}

// Render fetches both layers concurrently. The fetches are independent: a
// failure is logged and leaves only its own layer empty.
func (p *Pipeline) Render(ctx context.Context) Scene {
	start := time.Now()
	scene := Scene{GeneratedAt: p.clock.Now().UTC()}

	var g errgroup.Group
	g.Go(func() error {
		markers, err := p.EarthquakeLayer(ctx, p.settings.Window)
		if err != nil {
			p.logger.Error("earthquake layer failed, leaving it empty", "window", p.settings.Window, "error", err)
			scene.EarthquakeErr = err
			return nil
		}
		scene.Markers = markers
		return nil
	})
	if p.settings.IncludePlates {
		g.Go(func() error {
			plates, err := p.PlateLayer(ctx)
			if err != nil {
				p.logger.Error("plate layer failed, leaving it empty", "error", err)
				scene.PlatesErr = err
				return nil
			}
			scene.Plates = plates
			return nil
		})
	}
	_ = g.Wait()

	p.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	return scene
}

func (p *Pipeline) publish(ctx context.Context, markers []domain.Marker) {
	if p.sink == nil || len(markers) == 0 {
		return
	}
	if err := p.sink.Publish(ctx, markers); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish markers failed", "markers", len(markers), "error", err)
		return
	}
	p.metrics.MarkersPublished.Add(float64(len(markers)))
}
