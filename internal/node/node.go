// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blinklabs-io/leapfrog"
	"github.com/blinklabs-io/leapfrog/internal/config"
)

// NodeOptions builds the node options for a loaded config
func NodeOptions(cfg *config.Config, logger *slog.Logger) []leapfrog.ConfigOptionFunc {
	opts := []leapfrog.ConfigOptionFunc{
		leapfrog.WithLogger(logger),
		leapfrog.WithDatabasePath(cfg.DatabasePath),
		leapfrog.WithBlobPlugin(cfg.BlobPlugin),
		leapfrog.WithMetadataPlugin(cfg.MetadataPlugin),
		leapfrog.WithCooldownPeriod(cfg.CooldownPeriod),
		leapfrog.WithDefaultQuorumPercent(cfg.DefaultQuorumPercent),
		leapfrog.WithAutoActivate(cfg.AutoActivate),
		leapfrog.WithFinalizeInterval(cfg.FinalizeInterval),
		leapfrog.WithFinalizeBatchSize(cfg.FinalizeBatchSize),
		leapfrog.WithShutdownTimeout(cfg.ShutdownTimeout),
		leapfrog.WithCorsOrigins(cfg.CorsOrigins...),
		leapfrog.WithRedisUrl(cfg.RedisUrl),
		leapfrog.WithRedisStream(cfg.RedisStream),
		leapfrog.WithGenesis(cfg.Genesis),
		leapfrog.WithTracing(cfg.Tracing),
		leapfrog.WithTracingStdout(
			cfg.Tracing && cfg.TracingExporter == config.TracingExporterStdout,
		),
		// Enable metrics with default prometheus registry
		leapfrog.WithPrometheusRegistry(prometheus.DefaultRegisterer),
	}
	if cfg.ApiPort > 0 {
		opts = append(
			opts,
			leapfrog.WithApiListenAddress(
				fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.ApiPort),
			),
		)
	}
	return opts
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	gin.SetMode(gin.ReleaseMode)
	n, err := leapfrog.New(leapfrog.NewConfig(NodeOptions(cfg, logger)...))
	if err != nil {
		return err
	}
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = leapfrog.DefaultShutdownTimeout
	}
	// Metrics listener
	var metricsServer *http.Server
	if cfg.MetricsPort > 0 {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr: fmt.Sprintf(
				"%s:%d",
				cfg.BindAddr,
				cfg.MetricsPort,
			),
			Handler:           metricsMux,
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		logger.Info(
			"serving prometheus metrics on "+metricsServer.Addr,
			"component",
			"node",
		)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				logger.Error(
					fmt.Sprintf("failed to start metrics listener: %s", err),
					"component", "node",
				)
			}
		}()
	}
	shutdownMetrics := func() {
		if metricsServer == nil {
			return
		}
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		//nolint:contextcheck
		errChan <- n.Run(signalCtx)
	}()

	// Wait for signal or error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")
		shutdownMetrics()
		if err := n.Stop(); err != nil {
			logger.Error("shutdown errors occurred", "error", err)
			return err
		}
		logger.Info("shutdown complete")
		return nil

	case err := <-errChan:
		if err == nil {
			logger.Info("node stopped")
			shutdownMetrics()
			return n.Stop()
		}
		logger.Error("node error", "error", err)
		signalCtxStop()
		if stopErr := n.Stop(); stopErr != nil {
			logger.Error(
				"shutdown errors occurred during error cleanup",
				"error",
				stopErr,
			)
		}
		shutdownMetrics()
		return err
	}
}
