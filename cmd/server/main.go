package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/agnihotra/internal/config"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/http/api/endpoints"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/location"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/logging"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/redis"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/relay"
	"github.com/Nixie-Tech-LLC/agnihotra/internal/suntimes"
)

func main() {
	// load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.LogLevel, cfg.Development())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	// optional relay cache
	var cache relay.Cache
	if cfg.RedisAddress != "" {
		rc := redis.NewCache(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("address", cfg.RedisAddress).Msg("redis unreachable, relay cache disabled")
			_ = rc.Close()
		} else {
			log.Info().Str("address", cfg.RedisAddress).Msg("relay cache enabled")
			cache = rc
			defer rc.Close()
		}
	}

	forwarder := relay.NewForwarder(relay.Options{
		HTTPClient:  httpClient,
		UpstreamURL: cfg.UpstreamURL,
		UserAgent:   cfg.UserAgent,
		Mode:        cfg.RelayMode,
		Cache:       cache,
		CacheTTL:    cfg.RelayCacheTTL,
	})

	svc := endpoints.Services{
		IP:       location.NewIPLocator(httpClient, cfg.UserAgent, cfg.IPServices),
		Geocoder: location.NewGeocoder(httpClient, cfg.UserAgent, cfg.GeocodeURL),
		Times: suntimes.NewPipeline(
			suntimes.NewRelayClient(httpClient, cfg.RelayEndpoints),
			suntimes.NewSunAPI(httpClient, cfg.SunAPIURL),
		),
		Timezone: cfg.Timezone,
	}

	// set up gin router
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	RegisterRoutes(r, svc, forwarder)

	srv := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	// start
	log.Info().Str("address", cfg.ServerAddress).Str("relay_mode", cfg.RelayMode).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}
