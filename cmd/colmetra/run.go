package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	metrics "github.com/rcrowley/go-metrics"
	"go.uber.org/zap"

	"github.com/ashmarkin/colmetra/internal/adapters/cassandra"
	"github.com/ashmarkin/colmetra/internal/adapters/collector/hostmetrics"
	"github.com/ashmarkin/colmetra/internal/config"
	"github.com/ashmarkin/colmetra/internal/services/reporter"
)

func run(cfg config.Config, logger *zap.Logger) error {
	dialer, err := cassandra.NewClusterDialer(cassandra.DialConfig{
		Hosts:       cfg.Hosts,
		Port:        cfg.Port,
		Keyspace:    cfg.Keyspace,
		Consistency: cfg.Consistency,
	})
	if err != nil {
		return err
	}

	client := cassandra.New(dialer, cfg.Table, cfg.TTL, logger)
	defer client.Close()

	registry := metrics.NewRegistry()
	collector := hostmetrics.New(registry, logger)
	collector.Start(cfg.PollInterval)
	defer collector.Stop()

	rep := reporter.New(registry, client, logger,
		reporter.WithPrefix(cfg.Prefix),
		reporter.WithRateUnit(cfg.RateUnit),
		reporter.WithDurationUnit(cfg.DurationUnit),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("reporter started",
		zap.Strings("hosts", cfg.Hosts),
		zap.String("keyspace", cfg.Keyspace),
		zap.String("table", cfg.Table),
		zap.Duration("interval", cfg.Interval),
	)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := rep.Report(ctx); err != nil {
				logger.Warn("reporting pass failed",
					zap.Error(err),
					zap.Int("consecutive_failures", client.Failures()),
				)
			}
		}
	}
}
