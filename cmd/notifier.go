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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-CallBookingService/internal/notifier"
	"github.com/m04kA/SMC-CallBookingService/pkg/mq"
)

func newNotifierCmd(configPath *string) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "notifier",
		Short: "Consume notification queue and deliver messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotifier(*configPath, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9091", "address for the metrics endpoint")
	return cmd
}

func runNotifier(configPath, metricsAddr string) error {
	cfg, log, metricsCollector, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := notifier.NewDefaultWorker(metricsCollector, log)

	consumer, err := mq.NewConsumer(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.Queue,
		worker.RoutingKeys(),
		cfg.RabbitMQ.Prefetch,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	defer consumer.Close()
	consumer.WithLogger(log)

	deliveries, err := consumer.Deliveries(ctx)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", cfg.RabbitMQ.Queue, err)
	}
	log.Info("Notifier consuming queue=%s exchange=%s", cfg.RabbitMQ.Queue, cfg.RabbitMQ.Exchange)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(gctx, deliveries)
	})

	if metricsCollector != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			log.Info("Metrics endpoint on %s%s", metricsAddr, cfg.Metrics.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("Notifier stopped")
	return nil
}
