package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"litebook/internal/adapters/geodb"
	server "litebook/internal/adapters/http_server"
	"litebook/internal/adapters/liteapi"
	"litebook/internal/adapters/observability"
	redisad "litebook/internal/adapters/redis"
	"litebook/internal/app"
	"litebook/internal/domain"
	"litebook/internal/shared"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve(cfg.MetricsAddr)

	store := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}
	cancel()
	log.Info().Msg("store connection ok")

	provider, err := liteapi.New(cfg.LiteAPIBase, cfg.LiteAPIBookBase, cfg.SandboxKey, cfg.PrivateKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize booking provider")
	}

	var cities domain.CityProvider
	if cfg.GeoDBKey != "" {
		cities, err = geodb.New(cfg.GeoDBBase, cfg.GeoDBKey, cfg.GeoDBHost)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize city provider")
		}
	} else {
		log.Warn().Msg("GEODB_API_KEY is empty; city search will use the static list only")
		cities = noCityProvider{}
	}

	booking := app.NewBookingService(provider, store, domain.PaymentConfig{
		ScriptURL: cfg.PaymentScriptURL,
		PublicKey: cfg.SandboxKey,
		ReturnURL: cfg.PaymentReturnURL,
	})
	reconcile := app.NewReconcileService(provider, store, cfg.ReconcileRetryDelay)
	location := app.NewLocationService(store, cities, app.LocationConfig{
		Fallback:  shared.FallbackCities,
		MaxAge:    cfg.PreferenceMaxAge,
		CacheTTL:  cfg.CitySearchTTL,
		CacheMax:  cfg.CityCacheMax,
		Debounce:  cfg.SearchDebounce,
		PerMinute: cfg.GeoDBRPM,
	})

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Booking:     booking,
		Reconcile:   reconcile,
		Location:    location,
		Provider:    provider,
		Store:       store,
		Env:         cfg.AppEnv,
		Currency:    cfg.Currency,
		CountryCode: cfg.CountryCode,
		Nationality: cfg.Nationality,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

// noCityProvider always rate-limits, which sends the location service
// straight to its fallback list.
type noCityProvider struct{}

func (noCityProvider) SearchCities(ctx context.Context, namePrefix string, limit int) ([]domain.CityMatch, error) {
	return nil, domain.ErrRateLimited
}
