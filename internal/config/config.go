package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/spf13/viper"
)

const (
	defaultFeedBaseURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary"
	defaultPlatesURL   = "https://raw.githubusercontent.com/fraxen/tectonicplates/master/GeoJSON/PB2002_boundaries.json"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Map presentation.
	Profile      domain.Profile
	RadiusPolicy domain.RadiusPolicy
	// RadiusPolicySet is true when RADIUS_POLICY was given rather than
	// derived from the profile.
	RadiusPolicySet bool

	// Feed configuration.
	FeedWindow  domain.FeedWindow
	FeedBaseURL string
	PlatesURL   string
	FeedTimeout time.Duration

	// Mapbox tile configuration.
	MapboxToken    string
	MapboxValidate bool
	MapboxTimeout  time.Duration

	// Marker publishing. Each sink is disabled while its address is empty.
	KafkaBrokers []string
	KafkaTopic   string
	NATSURL      string
	NATSSubject  string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("map_profile", string(domain.ProfileLayered))
	v.SetDefault("radius_policy", "")
	v.SetDefault("feed_window", string(domain.WindowMonth))
	v.SetDefault("feed_base_url", defaultFeedBaseURL)
	v.SetDefault("plates_url", defaultPlatesURL)
	v.SetDefault("feed_timeout", "10s")
	v.SetDefault("mapbox_token", "")
	v.SetDefault("mapbox_validate", "")
	v.SetDefault("mapbox_timeout", "5s")
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_topic", "earthquake-markers")
	v.SetDefault("nats_url", "")
	v.SetDefault("nats_subject", "quakemap.markers")
	v.AutomaticEnv()

	shutdownTimeout, err := parsePositiveDuration(v, "shutdown_timeout")
	if err != nil {
		return nil, err
	}
	feedTimeout, err := parsePositiveDuration(v, "feed_timeout")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration(v, "mapbox_timeout")
	if err != nil {
		return nil, err
	}

	profile, err := domain.ParseProfile(v.GetString("map_profile"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAP_PROFILE: %w", err)
	}

	radius := profile.DefaultRadiusPolicy()
	radiusSet := false
	if s := v.GetString("radius_policy"); s != "" {
		radiusSet = true
		radius, err = domain.ParseRadiusPolicy(s)
		if err != nil {
			return nil, fmt.Errorf("invalid RADIUS_POLICY: %w", err)
		}
	}

	window, err := domain.ParseFeedWindow(v.GetString("feed_window"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_WINDOW: %w", err)
	}

	mapboxToken := v.GetString("mapbox_token")
	mapboxValidate := mapboxToken != ""
	if s := v.GetString("mapbox_validate"); s != "" {
		mapboxValidate, err = strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid MAPBOX_VALIDATE: %w", err)
		}
	}

	cfg := &Config{
		HTTPAddr:        v.GetString("http_addr"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		ShutdownTimeout: shutdownTimeout,

		Profile:         profile,
		RadiusPolicy:    radius,
		RadiusPolicySet: radiusSet,

		FeedWindow:  window,
		FeedBaseURL: strings.TrimRight(v.GetString("feed_base_url"), "/"),
		PlatesURL:   v.GetString("plates_url"),
		FeedTimeout: feedTimeout,

		MapboxToken:    mapboxToken,
		MapboxValidate: mapboxValidate,
		MapboxTimeout:  mapboxTimeout,

		KafkaBrokers: parseBrokers(v.GetString("kafka_brokers")),
		KafkaTopic:   v.GetString("kafka_topic"),
		NATSURL:      v.GetString("nats_url"),
		NATSSubject:  strings.TrimSuffix(v.GetString("nats_subject"), "."),
	}

	if cfg.FeedBaseURL == "" {
		return nil, errors.New("FEED_BASE_URL is required")
	}
	if cfg.PlatesURL == "" {
		return nil, errors.New("PLATES_URL is required")
	}
	if cfg.MapboxValidate && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_VALIDATE is true but MAPBOX_TOKEN is not set")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.NATSURL != "" && cfg.NATSSubject == "" {
		return nil, errors.New("NATS_SUBJECT is required when NATS_URL is set")
	}
	if strings.ContainsAny(cfg.NATSSubject, "*> \t") {
		return nil, fmt.Errorf("invalid NATS_SUBJECT %q: wildcards and whitespace are not allowed", cfg.NATSSubject)
	}

	return cfg, nil
}

// KafkaEnabled reports whether rendered markers are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// NATSEnabled reports whether rendered markers are published to NATS.
func (c *Config) NATSEnabled() bool {
	return c.NATSURL != ""
}

func parsePositiveDuration(v *viper.Viper, key string) (time.Duration, error) {
	name := strings.ToUpper(key)
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
