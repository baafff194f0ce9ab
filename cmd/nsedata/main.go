package main

import (
	"context"

	"nsedata/config"
	"nsedata/internal/nse/engine"
	"nsedata/internal/nse/refresh"
	"nsedata/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	eng, err := engine.New(cfg, log)
	if err != nil {
		log.Fatal("engine init failed", zap.Error(err))
	}
	defer eng.Close()

	ctx := context.Background()

	// serve searches from the cache while the first download runs
	if cfg.Cache.Enabled {
		if err := eng.LoadCached(ctx); err != nil {
			log.Warn("catalog cache load failed", zap.Error(err))
		}
	}

	if cfg.NSE.RefreshInterval > 0 {
		sched := &refresh.Scheduler{
			Interval: cfg.NSE.RefreshInterval,
			Download: eng.Download,
			Log:      log,
		}
		sched.Start(ctx)
		select {}
	}

	if err := eng.Download(ctx); err != nil {
		log.Fatal("catalog download failed", zap.Error(err))
	}
}
