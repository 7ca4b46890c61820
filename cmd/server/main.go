package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/exam-seat-allocator/internal/allocation"
	"github.com/iliyamo/exam-seat-allocator/internal/config"
	"github.com/iliyamo/exam-seat-allocator/internal/database"
	"github.com/iliyamo/exam-seat-allocator/internal/handler"
	"github.com/iliyamo/exam-seat-allocator/internal/logger"
	"github.com/iliyamo/exam-seat-allocator/internal/middleware"
	"github.com/iliyamo/exam-seat-allocator/internal/queue"
	"github.com/iliyamo/exam-seat-allocator/internal/repository"
	"github.com/iliyamo/exam-seat-allocator/internal/router"
	"github.com/iliyamo/exam-seat-allocator/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load()
	if err != nil {
		boot := logger.Configure(logger.Config{Pretty: true})
		boot.Fatal().Err(err).Msg("load config")
	}
	root := logger.Configure(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	log := logger.Named(root, "server")

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect mysql")
	}
	defer db.Close()

	rdb, err := config.NewRedisClient()
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; using in-process lock, cache and rate limit disabled")
		rdb = nil
	}
	var locker allocation.Locker = allocation.NewLocalLocker()
	if rdb != nil {
		defer rdb.Close()
		locker = allocation.NewRedisLocker(rdb, "", cfg.LockTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	bootstrap(ctx, log, cfg, users, tokens)

	var events service.EventPublisher
	consumerDone := make(chan struct{})
	if cfg.AMQPURL != "" {
		events = service.NewAMQPPublisher(cfg.AMQPURL, logger.Named(root, "publisher"))
		consumer := &queue.Consumer{URL: cfg.AMQPURL, LogDir: "logs", Log: logger.Named(root, "consumer")}
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("consumer stopped")
			}
		}()
	} else {
		close(consumerDone)
		log.Info().Msg("RABBITMQ_URL not set; allocation events disabled")
	}

	allocs := repository.NewAllocationRepo(db)
	halls := repository.NewHallRepo(db)
	console := handler.NewConsoleHandler(
		repository.NewStudentRepo(db),
		repository.NewExamRepo(db),
		halls,
		repository.NewSeatRepo(db),
		repository.NewInvigilatorRepo(db),
		repository.NewHallAssignmentRepo(db),
		allocs,
		repository.NewSeatCheckRepo(db),
	)
	auto := service.NewAutoAllocator(db, allocs, locker, events, logger.Named(root, "autoallocate"))

	e := newServer(root)
	router.RegisterRoutes(e, db)

	cacheCfg := config.LoadCacheConfig()
	v1 := router.Protected(e, cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger.Named(root, "ratelimit")),
		middleware.InvalidateCache(cacheCfg, rdb, logger.Named(root, "cache")),
	)
	router.RegisterAuth(e, v1, handler.NewAuthHandler(cfg, users, tokens))
	router.RegisterConsole(v1, console, handler.NewAllocationHandler(auto, cfg.LockTTL))
	router.RegisterReports(v1,
		handler.NewReportHandler(repository.NewReportRepo(db, cfg.QueryMaxRows), halls),
		handler.NewRoutineHandler(repository.NewMySQLRoutines(db)),
		middleware.NewRedisCache(cacheCfg, rdb),
	)
	router.RegisterAdmin(v1, handler.NewAdminHandler(repository.NewAdminRepo(db, cfg.DBName, cfg.DBUser)))

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("consumer did not stop in time")
	}
}

func newServer(root zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLogger(logger.Named(root, "http")))
	return e
}

// bootstrap creates the first ADMIN operator when configured and drops
// refresh tokens that expired more than a day ago.
func bootstrap(ctx context.Context, log zerolog.Logger, cfg config.Config, users *repository.UserRepo, tokens *repository.TokenRepo) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost)
		switch {
		case err != nil:
			log.Error().Err(err).Msg("bootstrap admin")
		case created:
			log.Info().Str("email", cfg.AdminEmail).Msg("bootstrap admin created")
		}
	}
	n, err := tokens.PurgeExpired(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		log.Warn().Err(err).Msg("purge expired refresh tokens")
	} else if n > 0 {
		log.Info().Int64("removed", n).Msg("purged expired refresh tokens")
	}
}
