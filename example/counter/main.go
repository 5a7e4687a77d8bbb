package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	cpebble "github.com/cockroachdb/pebble"
	"github.com/matrixorigin/multicube/components/log"
	"github.com/matrixorigin/multicube/config"
	"github.com/matrixorigin/multicube/grafana"
	"github.com/matrixorigin/multicube/metric"
	"github.com/matrixorigin/multicube/storage"
	"github.com/matrixorigin/multicube/storage/kv/mem"
	"github.com/matrixorigin/multicube/storage/kv/pebble"
	"github.com/matrixorigin/multicube/store/kv"
	"github.com/matrixorigin/multicube/util/stop"
	"go.uber.org/zap"
)

var (
	file = flag.String("cfg", "", "toml config file")
)

func main() {
	flag.Parse()

	cfg := &config.Config{}
	cfg.Adjust()
	if *file != "" {
		c, err := config.Load(*file)
		if err != nil {
			panic(err)
		}
		cfg = c
	}

	logger := log.GetDefaultZapLoggerWithLevel(log.ParseLevel(cfg.Log.Level))
	log.UseLogger(logger)
	defer logger.Sync()

	kvStorage, err := openStorage(cfg, logger)
	if err != nil {
		logger.Fatal("fail to open storage", zap.Error(err))
	}
	defer kvStorage.Close()

	s := kv.NewStore(kvStorage, kv.WithLogger(logger), kv.WithSync(cfg.Storage.Sync))
	c, err := newCounters(s, cfg.Executor.Timeout.Duration, logger)
	if err != nil {
		logger.Fatal("fail to define counter operations", zap.Error(err))
	}

	stopper := stop.NewStopper("counter", logger)
	if err := metric.StartPush(cfg.Metric, stopper, logger); err != nil {
		logger.Fatal("fail to start metric push", zap.Error(err))
	}

	if cfg.Grafana.Enabled() {
		creator := grafana.NewDashboardCreator(cfg.Grafana.Addr, cfg.Grafana.APIKey, cfg.Grafana.DataSource)
		if err := creator.Create(context.Background()); err != nil {
			logger.Error("fail to create grafana dashboard", zap.Error(err))
		}
	}

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: newRouter(c)}
	if err := stopper.RunNamedTask("http-server", func(ctx context.Context) {
		go func() {
			<-ctx.Done()
			server.Close()
		}()

		logger.Info("http server started", zap.String("address", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("fail to start http server", zap.Error(err))
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-sc
	logger.Info("exit", zap.String("signal", sig.String()))

	if names, err := stopper.Stop(); err != nil {
		logger.Error("fail to stop tasks",
			zap.Strings("tasks", names),
			zap.Error(err))
	}
}

func openStorage(cfg *config.Config, logger *zap.Logger) (storage.KVStorage, error) {
	if cfg.UseMemoryAsStorage {
		return mem.NewStorage(), nil
	}

	return pebble.NewStorage(cfg.StorageDir(), logger, &cpebble.Options{
		MemTableSize: int(cfg.Storage.MemTableSize),
		MaxOpenFiles: cfg.Storage.MaxOpenFiles,
	})
}
