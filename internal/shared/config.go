package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	RedisAddr string
	RedisDB   int
	RedisPass string

	// LiteAPI. Booking mutations go to a different base path and require
	// the private key; search/detail calls use the sandbox key.
	LiteAPIBase     string
	LiteAPIBookBase string
	SandboxKey      string
	PrivateKey      string

	PaymentScriptURL string
	PaymentReturnURL string

	// GeoDB city search (RapidAPI gateway).
	GeoDBBase string
	GeoDBKey  string
	GeoDBHost string
	GeoDBRPM  int

	Currency    string
	CountryCode string
	Nationality string

	CitySearchTTL  time.Duration
	CityCacheMax   int
	SearchDebounce time.Duration

	PreferenceMaxAge    time.Duration
	ReconcileRetryDelay time.Duration

	Workers int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),

		RedisAddr: env("REDIS_ADDR", "localhost:6379"),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),

		LiteAPIBase:     env("LITEAPI_BASE_URL", "https://api.liteapi.travel/v3.0"),
		LiteAPIBookBase: env("LITEAPI_BOOK_BASE_URL", "https://book.liteapi.travel/v3.0"),
		SandboxKey:      env("LITEAPI_SANDBOX_KEY", ""),
		PrivateKey:      env("LITEAPI_PRIVATE_KEY", ""),

		PaymentScriptURL: env("PAYMENT_SCRIPT_URL", "https://payment-wrapper.liteapi.travel/dist/liteAPIPayment.js?v=a1"),
		PaymentReturnURL: env("PAYMENT_RETURN_URL", "http://localhost:8080/v1/bookings/confirmation"),

		GeoDBBase: env("GEODB_BASE_URL", "https://wft-geo-db.p.rapidapi.com/v1"),
		GeoDBKey:  env("GEODB_API_KEY", ""),
		GeoDBHost: env("GEODB_API_HOST", "wft-geo-db.p.rapidapi.com"),
		GeoDBRPM:  atoi("GEODB_REQUESTS_PER_MINUTE", 10),

		Currency:    env("DEFAULT_CURRENCY", "INR"),
		CountryCode: env("DEFAULT_COUNTRY", "IN"),
		Nationality: env("DEFAULT_NATIONALITY", "IN"),

		CitySearchTTL:  time.Duration(atoi("CITY_SEARCH_TTL_SECONDS", 3600)) * time.Second,
		CityCacheMax:   atoi("CITY_CACHE_MAX", 100),
		SearchDebounce: time.Duration(atoi("SEARCH_DEBOUNCE_MS", 300)) * time.Millisecond,

		PreferenceMaxAge:    time.Duration(atoi("PREFERENCE_MAX_AGE_DAYS", 30)) * 24 * time.Hour,
		ReconcileRetryDelay: time.Duration(atoi("RECONCILE_RETRY_DELAY_MS", 1000)) * time.Millisecond,

		Workers: atoi("RECONCILE_WORKERS", 8),
	}
	if c.SandboxKey == "" {
		log.Warn().Msg("LITEAPI_SANDBOX_KEY is empty")
	}
	if c.PrivateKey == "" {
		log.Warn().Msg("LITEAPI_PRIVATE_KEY is empty; booking endpoints will be rejected upstream")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
