package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-CallBookingService/internal/api"
	"github.com/m04kA/SMC-CallBookingService/internal/config"
	"github.com/m04kA/SMC-CallBookingService/internal/infra/migrations"
	bookingRepo "github.com/m04kA/SMC-CallBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CallBookingService/internal/integrations/notifications"
	"github.com/m04kA/SMC-CallBookingService/internal/scheduler"
	bookingsService "github.com/m04kA/SMC-CallBookingService/internal/service/bookings"
	createBookingUC "github.com/m04kA/SMC-CallBookingService/internal/usecase/create_booking"
	dispatchRemindersUC "github.com/m04kA/SMC-CallBookingService/internal/usecase/dispatch_reminders"
	getAvailableSlotsUC "github.com/m04kA/SMC-CallBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-CallBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CallBookingService/pkg/logger"
	"github.com/m04kA/SMC-CallBookingService/pkg/metrics"
	"github.com/m04kA/SMC-CallBookingService/pkg/mq"
	"github.com/m04kA/SMC-CallBookingService/pkg/txmanager"
)

// bookingStore хранилище, которое подходит всем потребителям (postgres или memory)
type bookingStore interface {
	createBookingUC.BookingRepository
	bookingsService.BookingRepository
	dispatchRemindersUC.BookingRepository
	getAvailableSlotsUC.BookingRepository
}

type txManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API and reminder dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath)
		},
	}
}

func runServe(configPath string) error {
	cfg, log, metricsCollector, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer log.Close()

	log.Info("Starting SMC-CallBookingService...")
	log.Info("Configuration loaded from %s", configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, txMgr, closeStore, err := openStore(cfg, metricsCollector, log)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	defer publisher.Close()
	log.Info("Notification publisher connected (exchange=%s)", cfg.RabbitMQ.Exchange)

	gateway := notifications.NewClient(
		publisher,
		cfg.Notifications.AdminEmail,
		cfg.Notifications.ConfirmTimeout(),
		log,
	)

	// Инициализируем сервисы и use cases
	bookingSvc := bookingsService.NewService(store, gateway, txMgr, metricsCollector, log)
	createBookingUseCase := createBookingUC.NewUseCase(store, gateway, txMgr, metricsCollector, log)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(store, log)

	dispatcher, err := dispatchRemindersUC.NewUseCase(
		store,
		bookingSvc,
		gateway,
		metricsCollector,
		dispatchRemindersUC.Config{
			Lookahead:   cfg.Dispatcher.Lookahead(),
			SendTimeout: cfg.Notifications.SendTimeout(),
		},
		log,
	)
	if err != nil {
		return err
	}
	sched := scheduler.New(dispatcher, cfg.Dispatcher.Interval(), metricsCollector, log)

	router := api.NewRouter(api.Dependencies{
		Bookings:          bookingSvc,
		CreateBooking:     createBookingUseCase,
		GetAvailableSlots: getAvailableSlotsUseCase,
		Logger:            log,
		Metrics:           metricsCollector,
		MetricsPath:       cfg.Metrics.Path,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("Reminder dispatcher started (interval=%s, lookahead=%s)",
			cfg.Dispatcher.Interval(), cfg.Dispatcher.Lookahead())
		return sched.Start(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown: %v", err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("Server stopped gracefully")
	return nil
}

// openStore выбирает хранилище по storage.driver
func openStore(cfg *config.Config, metricsCollector *metrics.Metrics, log *logger.Logger) (bookingStore, txManager, func(), error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("Using in-memory storage: bookings are lost on restart")
		return bookingRepo.NewMemoryRepository(), txmanager.NewPassthrough(), func() {}, nil
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(db); err != nil {
			_ = db.Close()
			return nil, nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		log.Info("Database migrations applied")
	}

	stopMetricsCh := make(chan struct{})
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)

	closeFn := func() {
		close(stopMetricsCh)
		if err := db.Close(); err != nil {
			log.Error("Failed to close database: %v", err)
		}
	}

	return bookingRepo.NewRepository(wrappedDB), txmanager.NewTransactionManager(wrappedDB), closeFn, nil
}
