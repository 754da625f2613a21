package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/database"
	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/mail"
	"github.com/iliyamo/hotel-booking/internal/metrics"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/payment"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/router"
	"github.com/iliyamo/hotel-booking/internal/service"
	"github.com/iliyamo/hotel-booking/internal/storage"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	rateCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger = newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()
	if cfg.DBMigrate {
		n, err := database.Migrate(ctx, db)
		if err != nil {
			logger.Fatal().Err(err).Msg("migrate error")
		}
		logger.Info().Int("applied", n).Msg("migrations done")
	}

	rdb := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if rdb == nil {
		logger.Warn().Msg("redis unreachable: using in-process room locks and rate limits")
	} else {
		defer rdb.Close()
	}

	metrics.Register()

	reservations := repository.NewReservationRepo(db)
	rooms := repository.NewRoomRepo(db)
	hotels := repository.NewHotelRepo(db)
	users := repository.NewUserRepo(db)

	var locker booking.Locker = booking.NewKeyedMutex()
	if rdb != nil && cfg.DistributedLock {
		locker = booking.NewRedisLocker(rdb, "", cfg.LockTTL, 0)
	}

	var notifier booking.Notifier
	if cfg.RabbitURL != "" {
		pub := service.NewPublisher(cfg.RabbitURL, cfg.BookingQueue, logger)
		defer pub.Close()
		notifier = pub
	} else {
		logger.Warn().Msg("RABBITMQ_URL not set: booking confirmations are not sent")
	}

	controller := booking.NewController(reservations, repository.NewCatalog(rooms, hotels), locker, notifier,
		booking.Options{
			StoreTimeout:  cfg.StoreTimeout,
			LockWait:      cfg.LockWait,
			MaxAttempts:   cfg.MaxAttempts,
			NotifyTimeout: cfg.NotifyTimeout,
		}, &logger)

	var uploader handler.ImageUploader
	if up, err := storage.NewCloudinaryUploader(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret, cfg.CloudinaryFolder); err == nil {
		uploader = up
	} else {
		logger.Warn().Err(err).Msg("room images disabled")
	}

	var checkout handler.CheckoutCreator
	if co, err := payment.NewStripeCheckout(cfg.StripeSecretKey, cfg.StripeCurrency, cfg.AppURL, nil); err == nil {
		checkout = co
	} else {
		logger.Warn().Err(err).Msg("online payment disabled")
	}

	checks := []handler.Check{{Name: "mysql", Ping: db.PingContext}}
	if rdb != nil {
		checks = append(checks, handler.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})
	}
	h := router.Handlers{
		Bookings: handler.NewBookingHandler(controller),
		Rooms:    handler.NewRoomHandler(rooms, hotels, uploader),
		Hotels:   handler.NewHotelHandler(hotels),
		Users:    handler.NewUserHandler(users),
		Stripe:   handler.NewStripeHandler(cfg.StripeWebhookSecret, controller),
		Checkout: handler.NewCheckoutHandler(controller, checkout),
		Ready:    handler.Ready(checks...),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.NewTokenBucket(rateCfg, rdb))
	router.RegisterRoutes(e, h)
	router.RegisterCustomer(e, h, cfg.JWTSecret, users)
	router.RegisterOwner(e, h, cfg.JWTSecret, users)

	if cfg.RabbitURL != "" && cfg.SMTPHost != "" {
		consumer := &queue.Consumer{
			URL:   cfg.RabbitURL,
			Queue: cfg.BookingQueue,
			Mailer: mail.NewMailer(mail.SMTPConfig{
				Host: cfg.SMTPHost, Port: cfg.SMTPPort, User: cfg.SMTPUser, Pass: cfg.SMTPPass, From: cfg.MailFrom,
			}),
			Recipients: users,
			Logger:     logger.With().Str("component", "booking-consumer").Logger(),
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("booking consumer stopped")
			}
		}()
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	// Let in-flight confirmations reach the broker before closing it.
	controller.Wait()
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var l zerolog.Logger
	if cfg.IsDev() {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		l = zerolog.New(os.Stdout)
	}
	return l.Level(level).With().Timestamp().Logger()
}
