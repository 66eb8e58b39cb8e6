package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"saavi_admin/internal/adapters/backend"
	"saavi_admin/internal/adapters/observability"
	redisad "saavi_admin/internal/adapters/redis"
	"saavi_admin/internal/app"
	"saavi_admin/internal/domain"
	"saavi_admin/internal/shared"
)

func main() {
	manifest := flag.String("manifest", "hotels.json", "JSON list of hotels to create")
	dryRun := flag.Bool("dry-run", false, "validate every entry without sending it")
	flag.Parse()

	ctx := context.Background()
	cfg, err := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.IsDev(), cfg.LogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	entries, err := loadManifest(*manifest)
	if err != nil {
		log.Fatal().Err(err).Msg("manifest unreadable")
	}
	log.Info().
		Str("backend", cfg.BackendURL).
		Str("manifest", *manifest).
		Int("hotels", len(entries)).
		Int("workers", cfg.ImportWorkers).
		Bool("dry_run", *dryRun).
		Msg("importer starting")

	be, err := backend.New(cfg.BackendURL, cfg.TunnelSkip, cfg.BackendRPS, cfg.BackendTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize backend client")
	}
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}
	q := app.NewQueryService(be, cache, cfg.CacheTTL)

	opts := app.FormOptions{MaxImages: cfg.ImagesMax, MinImagesOnCreate: cfg.ImagesMinCreate}
	dir := filepath.Dir(*manifest)
	sem := semaphore.NewWeighted(int64(max(cfg.ImportWorkers, 1)))
	var wg sync.WaitGroup
	var failed, created atomic.Int64

	for i, e := range entries {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(i int, e Entry) {
			defer wg.Done()
			defer sem.Release(1)

			l := log.With().Int("entry", i).Str("name", e.Name).Logger()
			f, err := buildForm(ctx, e, dir, opts)
			if err == nil {
				if *dryRun {
					_, err = f.Prepare()
				} else {
					err = f.Submit(ctx, be)
				}
			}
			if err != nil {
				failed.Add(1)
				l.Warn().Err(err).Str("reason", app.DisplayMessage(err, err.Error())).Msg("import failed")
				return
			}
			created.Add(1)
			l.Info().Str("hotel_id", f.HotelID()).Msg("import ok")
		}(i, e)
	}

	wg.Wait()
	if created.Load() > 0 && !*dryRun {
		q.InvalidateHotels(ctx)
	}
	log.Info().Int64("ok", created.Load()).Int64("failed", failed.Load()).Msg("import completed")
	if failed.Load() > 0 {
		os.Exit(1)
	}
}
