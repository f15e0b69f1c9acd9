package main // Entry point package

import (
    "context"
    "errors"
    "log/slog"
    "net/http"
    "os"
    "os/signal"
    "strings"
    "syscall"
    "time"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/iliyamo/cinema-booking/internal/catalog"
    "github.com/iliyamo/cinema-booking/internal/config"
    "github.com/iliyamo/cinema-booking/internal/database"
    "github.com/iliyamo/cinema-booking/internal/handler"
    "github.com/iliyamo/cinema-booking/internal/middleware"
    "github.com/iliyamo/cinema-booking/internal/queue"
    "github.com/iliyamo/cinema-booking/internal/repository"
    "github.com/iliyamo/cinema-booking/internal/router"
    "github.com/iliyamo/cinema-booking/internal/service"
)

func main() {
    cfg, err := config.Load()
    if err != nil {
        slog.Error("config", "error", err)
        os.Exit(1)
    }
    logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
    slog.SetDefault(logger)

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    store, movies, closeStore, err := openStore(ctx, cfg, logger)
    if err != nil {
        logger.Error("store", "driver", cfg.DB.Driver, "error", err)
        os.Exit(1)
    }
    defer closeStore()

    var publisher queue.Publisher = queue.NopPublisher{}
    if cfg.AMQPURL != "" {
        p := queue.NewAMQPPublisher(cfg.AMQPURL, logger)
        defer p.Close()
        publisher = p

        consumer := queue.NewAuditConsumer(cfg.AMQPURL, "", logger)
        go func() {
            if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
                logger.Error("audit consumer stopped", "error", err)
            }
        }()
    }

    rdb := config.NewRedisClient(cfg.Redis, logger)
    if rdb != nil {
        defer rdb.Close()
    }

    clock := service.RealClock{}
    prices := service.PriceTable{BaseCents: cfg.Pricing.BaseCents, PairCents: cfg.Pricing.PairCents}
    rooms := service.NewRoomCatalog(store, clock, logger)
    scheduler := service.NewShowtimeScheduler(store, rooms, movies, publisher, clock, logger)
    index := service.NewSeatAvailabilityIndex(store, scheduler)
    coordinator := service.NewReservationCoordinator(store, scheduler, index, prices, publisher, clock, logger)
    h := handler.New(rooms, scheduler, index, coordinator, logger)

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.RequestID())
    e.Use(middleware.RequestLogger(logger))
    router.Register(e, h, store, router.Options{
        JWTSecret: cfg.JWTSecret,
        Redis:     rdb,
        Cache:     cfg.Cache,
        RateLimit: cfg.RateLimit,
        Logger:    logger,
    })

    addr := ":" + cfg.Port
    go func() {
        logger.Info("listening", "addr", addr, "env", cfg.Env, "driver", cfg.DB.Driver)
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            logger.Error("server", "error", err)
            stop()
        }
    }()

    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        logger.Error("shutdown", "error", err)
    }
}

// openStore returns the transactional store and the movie catalog for the
// configured driver, plus a func releasing them.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.Store, catalog.MovieCatalog, func(), error) {
    if cfg.DB.Driver == "memory" {
        movies, err := catalog.LoadMemoryCatalog(cfg.MoviesFile)
        if err != nil {
            return nil, nil, nil, err
        }
        logger.Warn("using in-memory store, data is lost on exit")
        return repository.NewMemoryStore(), movies, func() {}, nil
    }

    db, dialect, err := database.Open(cfg.DB.Driver, cfg.DB.BuildDSN())
    if err != nil {
        return nil, nil, nil, err
    }
    if cfg.DB.Migrate {
        if err := database.Migrate(ctx, db, dialect); err != nil {
            _ = db.Close()
            return nil, nil, nil, err
        }
    }
    closer := func() { _ = db.Close() }
    return repository.NewSQLStore(db, dialect), catalog.NewSQLCatalog(db, dialect), closer, nil
}

func parseLevel(s string) slog.Level {
    switch strings.ToLower(s) {
    case "debug":
        return slog.LevelDebug
    case "warn", "warning":
        return slog.LevelWarn
    case "error":
        return slog.LevelError
    default:
        return slog.LevelInfo
    }
}
