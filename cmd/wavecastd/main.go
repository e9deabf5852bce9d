package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"wavecast/internal/config"
	"wavecast/internal/daemon"
	"wavecast/internal/deps"
	"wavecast/internal/jobs"
	"wavecast/internal/logging"
	"wavecast/internal/media"
	"wavecast/internal/server"
	"wavecast/internal/taskstore"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, cfgPath, exists, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	if exists {
		logger.Info("configuration loaded", logging.String("path", cfgPath))
	} else {
		logger.Info("no config file found, using defaults")
	}

	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	for _, status := range statuses {
		if !status.Available {
			logger.Warn("external tool unavailable",
				logging.String("tool", status.Name),
				logging.String("detail", status.Detail),
			)
		}
	}
	if err := deps.MissingRequired(statuses); err != nil {
		logger.Warn("transforms will fail until tools are installed", logging.Error(err))
	}

	store, err := taskstore.Open(cfg)
	if err != nil {
		logger.Error("open task store", logging.Error(err))
		return
	}

	encoder := media.NewFFmpeg(cfg.FFmpegBinary())
	prober := media.NewProbe(cfg.FFprobeBinary())
	runner := jobs.NewRunner(cfg, store, encoder, prober, logger)
	pool := jobs.NewPool(cfg.Workers.Count, cfg.Workers.QueueCapacity, runner, logger)
	apiServer := server.New(cfg, store, pool, encoder, logger)

	d, err := daemon.New(cfg, store, pool, apiServer, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("wavecastd shutting down")
}
