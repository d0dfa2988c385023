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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"client_registry/internal/config"
	"client_registry/internal/domain"
	"client_registry/internal/metrics"
	"client_registry/internal/model"
	"client_registry/internal/repository/memory"
	client_ps "client_registry/internal/repository/postgres"
	"client_registry/internal/service/clients"
	"client_registry/internal/transport/rest"
	pkg_config "client_registry/pkg/config"
	"client_registry/pkg/db/postgres"
	"client_registry/pkg/masker"
	"client_registry/pkg/zaplogger"
)

func main() {
	cfg := config.Config{}
	// логгер зависит от конфига, поэтому ошибку загрузки выводим без него
	if err := pkg_config.Load(".env", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error loading configs: %v\n", err)
		os.Exit(1)
	}

	logger, err := zaplogger.New(cfg.LogConfig.Level, cfg.LogConfig.Encoding)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := masker.LogConfigs(logger, &cfg); err != nil {
		logger.Fatal("error logging configs", zap.Error(err))
	}

	clientRepo, err := newClientRepo(cfg, logger)
	if err != nil {
		logger.Fatal("error creating client repository", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	clientService := clients.NewService(clientRepo, logger, clients.WithMetrics(m))

	server := &http.Server{
		Addr: cfg.HTTPConfig.Addr,
		Handler: rest.NewRouter(clientService, rest.RouterConfig{
			HTTP:     cfg.HTTPConfig,
			Logger:   logger,
			Metrics:  m,
			Gatherer: reg,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
	logger.Info("http server stopped")
}

// newClientRepo выбирает хранилище по STORAGE.
func newClientRepo(cfg config.Config, logger *zap.Logger) (domain.ClientRepo, error) {
	switch cfg.StorageConfig.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		return memory.NewClientRepository(), nil
	case config.StoragePostgres:
		dbGorm, err := postgres.NewGormConnection(cfg.DBConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("gorm connection: %w", err)
		}
		if err := dbGorm.AutoMigrate(&model.Client{}); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		return client_ps.NewClientRepository(dbGorm), nil
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.StorageConfig.Storage)
}
