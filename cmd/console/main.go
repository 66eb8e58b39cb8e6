package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"saavi_admin/internal/adapters/backend"
	server "saavi_admin/internal/adapters/http_server"
	"saavi_admin/internal/adapters/memstore"
	"saavi_admin/internal/adapters/observability"
	redisad "saavi_admin/internal/adapters/redis"
	"saavi_admin/internal/app"
	"saavi_admin/internal/domain"
	"saavi_admin/internal/shared"
	mysqlrepo "saavi_admin/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.IsDev(), cfg.LogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	be, err := backend.New(cfg.BackendURL, cfg.TunnelSkip, cfg.BackendRPS, cfg.BackendTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("backend client init failed")
	}
	log.Info().Str("backend", cfg.BackendURL).Msg("backend configured")

	// optional read cache
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; running without cache")
			_ = rc.Close()
		} else {
			defer rc.Close()
			cache = rc
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache ok")
		}
	}

	// optional audit log
	var audit domain.AuditLog
	if cfg.AuditDSN != "" {
		db, err := sql.Open("mysql", cfg.AuditDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		defer db.Close()
		repo := mysqlrepo.New(db)
		if err := repo.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("audit schema failed")
		}
		audit = repo
		log.Info().Msg("audit log ok")
	}

	q := app.NewQueryService(be, cache, cfg.CacheTTL)
	deps := app.Deps{
		Backend: be,
		Queries: q,
		Audit:   audit,
		Form: app.FormOptions{
			MaxImages:         cfg.ImagesMax,
			MinImagesOnCreate: cfg.ImagesMinCreate,
		},
		PageSize:     cfg.BookingsPageSize,
		OnSubmission: observability.ObserveSubmission,
	}
	sessions := memstore.NewSessions(cfg.SessionTTL, func(id string) *app.Console {
		return app.NewConsole(id, deps)
	})

	// http
	srv := server.New(cfg.BackendTimeout + 10*time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Sessions: sessions, Audit: audit})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("console API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	sessions.CloseAll()
	log.Info().Msg("console stopped")
}
