package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"example.com/mergington/internal/api"
	"example.com/mergington/internal/config"
	"example.com/mergington/internal/domain"
	"example.com/mergington/internal/logging"
	"example.com/mergington/internal/notify"
	"example.com/mergington/internal/registry"
	httptransport "example.com/mergington/internal/transport/http"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		cfgFile string
		addr    string
	)

	cmd := &cobra.Command{
		Use:          "mergington-api",
		Short:        "Serve the Mergington High School activities API",
		Long:         `Serves activity listings and student sign-ups from an in-memory registry seeded at startup.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Address = addr
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "YAML config file (environment variables override it)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides http.address")
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	seed, err := registry.LoadSeedFile(cfg.Registry.SeedFile)
	if err != nil {
		return fmt.Errorf("load activities: %w", err)
	}
	repo, err := registry.NewInMemoryRepository(seed)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}

	notifier, closeNotifier := buildNotifier(cfg.Notify, logger)
	defer closeNotifier()

	service := domain.NewService(repo, notifier,
		domain.WithCapacityEnforcement(cfg.Registry.EnforceCapacity),
		domain.WithLogger(logger),
	)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTP.Address,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, newHTTPHandler(cfg, service, logger), logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("activities api listening",
			zap.String("address", cfg.HTTP.Address),
			zap.Int("activities", len(seed)),
			zap.Bool("enforce_capacity", cfg.Registry.EnforceCapacity),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("activities api stopped")
	return nil
}

func newHTTPHandler(cfg config.Config, service *domain.Service, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	api.NewHandler(service).RegisterRoutes(mux)
	mux.Handle("GET /static/", api.StaticHandler(cfg.Static.Dir))
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	return api.WithRecovery(logger,
		api.WithRequestLogging(logger,
			api.WithCORS(cfg.HTTP.CORSOrigin, mux)))
}

func buildNotifier(cfg config.NotifyConfig, logger *zap.Logger) (notify.Notifier, func()) {
	var (
		sinks  []notify.Sink
		closer = func() {}
	)

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer := notify.NewKafkaNotifier(brokers, cfg.KafkaTopic)
		sinks = append(sinks, notify.Sink{Name: "kafka", Notifier: producer})
		closer = func() {
			if err := producer.Close(); err != nil {
				logger.Warn("closing kafka notifier", zap.Error(err))
			}
		}
		logger.Info("roster events enabled", zap.String("sink", "kafka"), zap.Strings("brokers", brokers), zap.String("topic", cfg.KafkaTopic))
	}
	if cfg.WebhookURL != "" {
		sinks = append(sinks, notify.Sink{
			Name:     "webhook",
			Notifier: notify.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookToken, cfg.Timeout),
		})
		logger.Info("roster events enabled", zap.String("sink", "webhook"), zap.String("url", cfg.WebhookURL))
	}

	if len(sinks) == 0 {
		return notify.NoopNotifier{}, closer
	}
	return notify.NewFanout(sinks...), closer
}
