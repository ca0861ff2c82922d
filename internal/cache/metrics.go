package cache

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for cache operations.
var meter = otel.Meter("termql.cache")

// Metrics for cache operations.
var (
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	cacheEvictions metric.Int64Counter
	cacheBuilds    metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		cacheHits, err = meter.Int64Counter(
			"termql_cache_hits_total",
			metric.WithDescription("Total number of compiled query cache hits"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		cacheMisses, err = meter.Int64Counter(
			"termql_cache_misses_total",
			metric.WithDescription("Total number of compiled query cache misses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		cacheEvictions, err = meter.Int64Counter(
			"termql_cache_evictions_total",
			metric.WithDescription("Total number of compiled query cache evictions"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		cacheBuilds, err = meter.Int64Counter(
			"termql_cache_builds_total",
			metric.WithDescription("Total number of query compilations, by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordHit(ctx context.Context) {
	if err := initMetrics(); err != nil {
		return
	}
	cacheHits.Add(ctx, 1)
}

func recordMiss(ctx context.Context) {
	if err := initMetrics(); err != nil {
		return
	}
	cacheMisses.Add(ctx, 1)
}

func recordEviction(ctx context.Context) {
	if err := initMetrics(); err != nil {
		return
	}
	cacheEvictions.Add(ctx, 1)
}

func recordBuild(ctx context.Context, buildErr error) {
	if err := initMetrics(); err != nil {
		return
	}
	outcome := "ok"
	if buildErr != nil {
		outcome = "error"
	}
	cacheBuilds.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
