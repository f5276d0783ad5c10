package main

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hostbook/internal/adapters/observability"
	redisad "hostbook/internal/adapters/redis"
	"hostbook/internal/app"
	"hostbook/internal/shared"
	"hostbook/internal/stats"
	mysqlrepo "hostbook/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "warmer")

	if cfg.MySQLDSN == "" || cfg.RedisAddr == "" {
		log.Fatal().Msg("warmer needs MYSQL_DSN and REDIS_ADDR")
	}
	log.Info().Int("workers", cfg.WarmWorkers).Dur("ttl", cfg.CacheTTL).Msg("warmer starting")

	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	q := app.NewQueryService(repo, repo, cache, cfg.CacheTTL)

	owners, err := repo.ListOwnerIDs(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list owners failed")
	}

	workers := cfg.WarmWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	start := time.Now()

	for _, id := range owners {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			snap, err := q.Snapshot(ctx, id)
			if err != nil {
				log.Warn().Str("owner", string(id)).Err(err).Msg("warm failed")
				return
			}
			sum := stats.Summarize(snap.Bookings, snap.GuestCount)
			log.Info().
				Str("owner", string(id)).
				Int("bookings", sum.TotalBookings).
				Int("guests", sum.TotalGuests).
				Float64("revenue", sum.TotalRevenue).
				Float64("avg_stay", sum.AverageStayLength).
				Msg("warm ok")
		}()
	}

	wg.Wait()
	log.Info().Int("owners", len(owners)).Dur("took", time.Since(start)).Msg("warming completed")
}
