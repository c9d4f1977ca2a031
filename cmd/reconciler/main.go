package main

import (
	"context"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"litebook/internal/adapters/liteapi"
	"litebook/internal/adapters/observability"
	redisad "litebook/internal/adapters/redis"
	"litebook/internal/app"
	"litebook/internal/domain"
	"litebook/internal/shared"
)

// One-shot batch repair of the local booking history: every record with a
// real booking id gets re-fetched concurrently, then all results are merged
// and persisted in a single pass, followed by a list reconcile so
// pending-confirmation records can pick up their ids. Run from cron or by
// hand.
func main() {
	ctx := context.Background()
	_ = godotenv.Load()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.LiteAPIBase).
		Int("workers", cfg.Workers).
		Msg("reconciler starting")

	store := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := store.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}

	provider, err := liteapi.New(cfg.LiteAPIBase, cfg.LiteAPIBookBase, cfg.SandboxKey, cfg.PrivateKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize booking provider")
	}

	booking := app.NewBookingService(provider, store, domain.PaymentConfig{})
	rec := app.NewReconcileService(provider, store, cfg.ReconcileRetryDelay)

	hist, err := booking.History(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load booking history failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	fetched := make(map[string]domain.ProviderBooking)

	for _, b := range hist {
		if b.BookingID == "" || b.BookingID == domain.BookingIDPending {
			continue
		}
		id := b.BookingID

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(bookingID string) {
			defer wg.Done()
			defer sem.Release(int64(1))

			pb, err := provider.GetBooking(ctx, bookingID)
			if err != nil {
				log.Warn().Str("bookingId", bookingID).Err(err).Msg("fetch failed")
				return
			}
			mu.Lock()
			fetched[bookingID] = pb
			mu.Unlock()
			log.Info().Str("bookingId", bookingID).Msg("fetch ok")
		}(id)
	}
	wg.Wait()

	// Single merge+save pass; the concurrent fetches never touch the store.
	if len(fetched) > 0 {
		for i, b := range hist {
			if pb, ok := fetched[b.BookingID]; ok {
				hist[i] = app.MergeBooking(b, pb)
			}
		}
		if err := store.Set(ctx, domain.KeyBookingHistory, hist); err != nil {
			log.Fatal().Err(err).Msg("persist merged history failed")
		}
	}

	// Final pass over the provider's list catches bookings the per-id loop
	// cannot reach (pending-confirmation records have no id to fetch by).
	if _, synced, err := rec.ReconcileHistory(ctx); err != nil {
		log.Fatal().Err(err).Msg("history reconcile failed")
	} else if !synced {
		log.Warn().Msg("provider unreachable, history left as-is")
	}

	log.Info().Msg("reconciliation completed")
}
