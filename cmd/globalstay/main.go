package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"globalstay/internal/app/commands"
	bookingapp "globalstay/internal/app/handlers/booking"
	listingapp "globalstay/internal/app/handlers/listings"
	meapp "globalstay/internal/app/handlers/me"
	reviewapp "globalstay/internal/app/handlers/reviews"
	"globalstay/internal/app/middleware"
	appoutbox "globalstay/internal/app/outbox"
	"globalstay/internal/app/queries"
	authsvc "globalstay/internal/app/services/auth"
	"globalstay/internal/app/uow"
	"globalstay/internal/infra/broker/kafka"
	"globalstay/internal/infra/config"
	mongodb "globalstay/internal/infra/db/mongo"
	ginserver "globalstay/internal/infra/http/gin"
	"globalstay/internal/infra/obs"
	infraoutbox "globalstay/internal/infra/outbox"
	"globalstay/internal/infra/security"
	"globalstay/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	worker   *infraoutbox.Worker
	ready    func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	usersRepo := memory.NewUserRepository()
	sessions := memory.NewSessionStore()
	idStore := memory.NewIdempotencyStore()

	var (
		uowFactory uow.UoWFactory
		outboxBox  appoutbox.Outbox
		ready      = func() error { return nil }
		worker     *infraoutbox.Worker
	)

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, err
		}
		if err := client.Ping(ctx); err != nil {
			return application{}, err
		}
		store := infraoutbox.NewMongoStore(client.DB)
		uowFactory = mongodb.Factory{
			DB:               client.DB,
			ListingsRepo:     mongodb.NewListingRepository(client.DB),
			BookingsRepo:     mongodb.NewBookingRepository(client.DB),
			ReviewsRepo:      mongodb.NewReviewRepository(client.DB),
			AvailabilityRepo: mongodb.NewAvailabilityRepository(client.DB),
			UsersRepo:        usersRepo,
		}
		outboxBox = store
		ready = func() error { return client.Ping(context.Background()) }

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, err
			}
			worker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		} else {
			logger.Warn("kafka brokers not configured, outbox events will not be published")
		}
	} else {
		logger.Warn("mongo not configured, falling back to in-memory stores")
		uowFactory = memory.Factory{
			ListingsRepo:     memory.NewListingRepository(),
			BookingsRepo:     memory.NewBookingRepository(),
			ReviewsRepo:      memory.NewReviewsRepository(),
			AvailabilityRepo: memory.NewAvailabilityRepository(),
			UsersRepo:        usersRepo,
		}
		outboxBox = memory.NewOutbox()
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: uowFactory, Outbox: outboxBox, Logger: logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.UpdateBookingCommand{}.Key(), &bookingapp.UpdateBookingHandler{
		UoWFactory: uowFactory, Outbox: outboxBox, Logger: logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: uowFactory, Outbox: outboxBox, Logger: logger,
	})
	commands.RegisterHandler(commandBus, listingapp.CreateListingCommand{}.Key(), &listingapp.CreateListingHandler{
		UoWFactory: uowFactory, Outbox: outboxBox, Logger: logger,
	})
	commands.RegisterHandler(commandBus, listingapp.UpdateListingCommand{}.Key(), &listingapp.UpdateListingHandler{
		UoWFactory: uowFactory, Outbox: outboxBox, Logger: logger,
	})
	commands.RegisterHandler(commandBus, listingapp.DeleteListingCommand{}.Key(), &listingapp.DeleteListingHandler{
		UoWFactory: uowFactory, Outbox: outboxBox, Logger: logger,
	})
	commands.RegisterHandler(commandBus, listingapp.SetListingStatusCommand{}.Key(), &listingapp.SetListingStatusHandler{
		UoWFactory: uowFactory, Outbox: outboxBox, Logger: logger,
	})
	commands.RegisterHandler(commandBus, reviewapp.AddReviewCommand{}.Key(), &reviewapp.AddReviewHandler{
		UoWFactory: uowFactory, Outbox: outboxBox, Logger: logger,
	})
	commands.RegisterHandler(commandBus, reviewapp.DeleteReviewCommand{}.Key(), &reviewapp.DeleteReviewHandler{
		UoWFactory: uowFactory, Outbox: outboxBox, Logger: logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, listingapp.SearchCatalogQuery{}.Key(), &listingapp.SearchCatalogHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, listingapp.GetListingQuery{}.Key(), &listingapp.GetListingHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, listingapp.ListHostListingsQuery{}.Key(), &listingapp.ListHostListingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(), &bookingapp.ListGuestBookingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListListingBookingsQuery{}.Key(), &bookingapp.ListListingBookingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, reviewapp.ListReviewsQuery{}.Key(), &reviewapp.ListReviewsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, meapp.GetProfileQuery{}.Key(), &meapp.GetProfileHandler{UoWFactory: uowFactory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxBox),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	authService := &authsvc.Service{
		Users:      usersRepo,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{Cost: cfg.BcryptCost},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	return application{
		handlers: ginserver.Handlers{
			Booking:     ginserver.BookingHandler{Commands: commandBusWithMiddleware, Logger: logger},
			Listing:     ginserver.ListingHandler{Queries: queryBusWithMiddleware, Logger: logger},
			HostListing: ginserver.HostListingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
			Reviews:     ginserver.ReviewsHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
			Auth:        ginserver.AuthHandler{Service: authService, Logger: logger},
			Me:          ginserver.MeHandler{Queries: queryBusWithMiddleware, Logger: logger},
			AuthMiddleware: ginserver.AuthMiddleware{
				Service: authService,
				Logger:  logger,
			}.Handle,
		},
		worker: worker,
		ready:  ready,
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
