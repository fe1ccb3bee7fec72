// Command snapshot renders the map once and writes it as a static directory:
// index.html plus the GeoJSON layers it loads. Settings come from the same
// environment variables as the service; flags override them.
//
// Usage:
//
//	go run ./cmd/snapshot --out dist/map --profile layered --window week
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/quake-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-map-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/couchcryptid/quake-map-service/internal/pipeline"
	"github.com/couchcryptid/quake-map-service/internal/render"
	"github.com/couchcryptid/quake-map-service/internal/snapshot"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	var (
		outDir       string
		profileName  string
		windowName   string
		radiusName   string
		allowPartial bool
	)

	cmd := &cobra.Command{
		Use:           "snapshot",
		Short:         "Write a static earthquake map to a directory.",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := applyOverrides(cmd, cfg, profileName, windowName, radiusName); err != nil {
				return err
			}

			logger := observability.NewLogger(cfg)
			metrics := observability.NewMetricsForTesting()

			m := render.NewMap(cfg.Profile, mapbox.TileLayers(cfg.MapboxToken), snapshot.Sources()).
				WithRadiusPolicy(cfg.RadiusPolicy)
			source := usgs.NewClient(cfg.FeedBaseURL, cfg.PlatesURL, cfg.FeedTimeout, metrics, logger)
			p := pipeline.New(source, nil, pipeline.Settings{
				Window:        cfg.FeedWindow,
				RadiusPolicy:  cfg.RadiusPolicy,
				IncludePlates: m.HasOverlay(render.OverlayPlates),
			}, logger, metrics)

			scene := p.Render(cmd.Context())
			if !allowPartial {
				if scene.EarthquakeErr != nil {
					return fmt.Errorf("earthquake layer: %w", scene.EarthquakeErr)
				}
				if scene.PlatesErr != nil {
					return fmt.Errorf("plate layer: %w", scene.PlatesErr)
				}
			}

			res, err := snapshot.Write(outDir, m, scene)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "snapshot written to %s (%s, %s window, %d markers, %d plate boundaries)\n",
				res.Dir, cfg.Profile, cfg.FeedWindow, len(scene.Markers), len(scene.Plates))
			for _, f := range res.Files {
				_, _ = fmt.Fprintln(out, "  "+f)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "snapshot", "Output directory.")
	cmd.Flags().StringVar(&profileName, "profile", "", "Map profile: markers or layered (default from MAP_PROFILE).")
	cmd.Flags().StringVar(&windowName, "window", "", "Feed window: hour, day, week or month (default from FEED_WINDOW).")
	cmd.Flags().StringVar(&radiusName, "radius-policy", "", "Radius policy: dense or wide (default from the profile).")
	cmd.Flags().BoolVar(&allowPartial, "allow-partial", false, "Write the snapshot even if a layer failed to load.")
	return cmd
}

func applyOverrides(cmd *cobra.Command, cfg *config.Config, profileName, windowName, radiusName string) error {
	if cmd.Flags().Changed("profile") {
		profile, err := domain.ParseProfile(profileName)
		if err != nil {
			return err
		}
		cfg.Profile = profile
		if !cmd.Flags().Changed("radius-policy") && !cfg.RadiusPolicySet {
			cfg.RadiusPolicy = profile.DefaultRadiusPolicy()
		}
	}
	if cmd.Flags().Changed("window") {
		window, err := domain.ParseFeedWindow(windowName)
		if err != nil {
			return err
		}
		cfg.FeedWindow = window
	}
	if cmd.Flags().Changed("radius-policy") {
		radius, err := domain.ParseRadiusPolicy(radiusName)
		if err != nil {
			return err
		}
		cfg.RadiusPolicy = radius
	}
	return nil
}
