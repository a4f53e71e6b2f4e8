package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/config"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/countdown"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/location"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/logging"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/model"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/page"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/render"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/suntimes"
)

type options struct {
	lat, lon float64
	mqtt     string
	once     bool
	noClear  bool
	interval time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("agnihotra failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "agnihotra",
		Short:         "Show today's and tomorrow's Agnihotra times with live countdowns",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate(opts); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel, true)

			coords, err := coordinates(cmd, opts, cfg)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("mqtt") {
				opts.mqtt = cfg.MQTTBrokerURL
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, coords, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.lat, "lat", 0, "Latitude of the observer (precise location)")
	cmd.Flags().Float64Var(&opts.lon, "lon", 0, "Longitude of the observer (precise location)")
	cmd.Flags().StringVar(&opts.mqtt, "mqtt", "", "MQTT broker URL to mirror the display to (default $MQTT_BROKER_URL)")
	cmd.Flags().BoolVar(&opts.once, "once", false, "Print the page once and exit")
	cmd.Flags().BoolVar(&opts.noClear, "no-clear", false, "Do not clear the screen between redraws")
	cmd.Flags().DurationVar(&opts.interval, "interval", time.Second, "Countdown refresh interval")
	cmd.MarkFlagsRequiredTogether("lat", "lon")

	return cmd
}

func validate(opts options) error {
	if opts.interval <= 0 {
		return fmt.Errorf("--interval must be positive, got %s", opts.interval)
	}
	return nil
}

// coordinates prefers flags over LATITUDE/LONGITUDE. No precise location
// means the IP chain decides.
func coordinates(cmd *cobra.Command, opts options, cfg *config.Config) (*model.Coordinates, error) {
	if cmd.Flags().Changed("lat") {
		if opts.lat < -90 || opts.lat > 90 || opts.lon < -180 || opts.lon > 180 {
			return nil, fmt.Errorf("coordinates out of range: %v, %v", opts.lat, opts.lon)
		}
		return &model.Coordinates{Latitude: opts.lat, Longitude: opts.lon}, nil
	}
	if cfg.Latitude != nil && cfg.Longitude != nil {
		return &model.Coordinates{Latitude: *cfg.Latitude, Longitude: *cfg.Longitude}, nil
	}
	return nil, nil
}

func run(ctx context.Context, cfg *config.Config, coords *model.Coordinates, opts options) error {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	resolver := location.NewResolver(
		location.StaticLocator{Coordinates: coords},
		location.NewIPLocator(httpClient, cfg.UserAgent, cfg.IPServices),
		location.NewGeocoder(httpClient, cfg.UserAgent, cfg.GeocodeURL),
	)
	pipeline := suntimes.NewPipeline(
		suntimes.NewRelayClient(httpClient, cfg.RelayEndpoints),
		suntimes.NewSunAPI(httpClient, cfg.SunAPIURL),
	)

	term := render.NewTerminal(os.Stdout, !opts.once && !opts.noClear)
	var out render.Target = term
	if opts.mqtt != "" {
		client, err := render.NewMQTTClient(opts.mqtt, cfg.MQTTClientID)
		if err != nil {
			log.Warn().Err(err).Msg("continuing without MQTT mirror")
		} else {
			m := render.NewMQTT(term, client, cfg.MQTTTopicPrefix)
			defer m.Close()
			out = m
		}
	}

	registry := countdown.NewRegistry(out, nil)
	loader := page.NewLoader(resolver, pipeline, out, registry, cfg.Timezone, nil)

	if _, err := loader.Load(ctx); err != nil {
		return fmt.Errorf("%s: %w", page.Status(err), err)
	}
	if opts.once {
		return nil
	}

	registry.Start(ctx, opts.interval)
	defer registry.Stop()
	<-ctx.Done()
	return nil
}
