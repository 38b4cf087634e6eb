package main

import (
	"context"
	stdLog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/pousada-reservation/internal/config"
	"github.com/iliyamo/pousada-reservation/internal/database"
	"github.com/iliyamo/pousada-reservation/internal/handler"
	"github.com/iliyamo/pousada-reservation/internal/jobs"
	"github.com/iliyamo/pousada-reservation/internal/logger"
	"github.com/iliyamo/pousada-reservation/internal/middleware"
	"github.com/iliyamo/pousada-reservation/internal/notify"
	"github.com/iliyamo/pousada-reservation/internal/queue"
	"github.com/iliyamo/pousada-reservation/internal/repository"
	"github.com/iliyamo/pousada-reservation/internal/router"
	"github.com/iliyamo/pousada-reservation/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdLog.Fatal(err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		stdLog.Fatal(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	db, err := database.Open(cfg.DB)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer db.Close()
	log.Info("database connected", zap.String("host", cfg.DB.Host), zap.String("name", cfg.DB.Name))

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable: room cache off, in-memory rate limiter", zap.String("addr", cfg.Redis.Address()))
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(cfg.Cache, rdb)

	overlap := repository.Overlap{Inclusive: cfg.Booking.InclusiveBoundaries}
	rooms := repository.NewRoomRepo(db, overlap)
	reservations := repository.NewReservationRepo(db, overlap)
	settings := repository.NewSettingsRepo(db)

	if !cfg.Mail.Enabled() {
		log.Warn("SMTP not configured: emails are only logged")
	}
	notifier := notify.New(notify.NewMailer(cfg.Mail, log), settings, notify.Options{
		Workers:  cfg.Mail.Workers,
		Queue:    cfg.Mail.Queue,
		Timeout:  cfg.Mail.Timeout,
		NotifyTo: cfg.Mail.NotifyTo,
		Logger:   log.Named("notify"),
	})

	opts := service.ReservationOptions{
		IDRetries: cfg.Booking.IDRetries,
		Logger:    log.Named("reservations"),
		Notifier:  notifier,
		Cache:     cache,
	}
	var publisher *queue.Publisher
	if cfg.Events.Enabled {
		publisher = queue.NewPublisher(cfg.Events.URL, cfg.Events.Queue, log.Named("events"))
		opts.Events = publisher
	}
	reservationSvc := service.NewReservationService(rooms, reservations, opts)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler, err = jobs.New(cfg.Jobs.CompleteStaysSpec, reservationSvc, log.Named("jobs"))
		if err != nil {
			return err
		}
	}

	e := router.New(router.Deps{
		Health:        handler.NewHealthHandler(db, cfg.DB.Name),
		Auth:          handler.NewAuthHandler(service.NewAuthService(repository.NewUserRepo(db), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), log),
		Reservations:  handler.NewReservationHandler(reservationSvc, log),
		Messages:      handler.NewMessageHandler(service.NewMessageService(repository.NewMessageRepo(db), notifier, log), log),
		Catalog:       handler.NewCatalogHandler(service.NewCatalogService(rooms, settings), log),
		Newsletter:    handler.NewNewsletterHandler(service.NewNewsletterService(repository.NewNewsletterRepo(db), log.Named("newsletter")), log),
		Cache:         cache,
		RateLimit:     middleware.NewRateLimiter(cfg.RateLimit, rdb),
		JWTSecret:     cfg.Auth.JWTSecret,
		AdminRequired: cfg.Auth.AdminRequired,
		FrontendURL:   cfg.FrontendURL,
		Log:           log.Named("http"),
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server start", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	if cfg.Events.Enabled {
		consumer := queue.NewConsumer(cfg.Events.URL, cfg.Events.Queue, cfg.Events.LogPath, log.Named("events"))
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	if scheduler != nil {
		scheduler.Start()
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("graceful shutdown")
		return shutdown(srv, scheduler, notifier, publisher, log)
	})
	return g.Wait()
}

// shutdown stops intake first and then drains background work.
func shutdown(srv *http.Server, scheduler *jobs.Scheduler, notifier *notify.Notifier, publisher *queue.Publisher, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := srv.Shutdown(ctx)
	if err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop(ctx)
	}
	if cerr := notifier.Close(); cerr != nil {
		log.Error("notifier close", zap.Error(cerr))
	}
	if publisher != nil {
		if cerr := publisher.Close(); cerr != nil {
			log.Warn("event publisher close", zap.Error(cerr))
		}
	}
	log.Info("graceful shutdown finished")
	return err
}
