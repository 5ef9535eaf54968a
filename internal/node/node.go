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
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/quill"
	"github.com/blinklabs-io/quill/internal/config"
	"github.com/blinklabs-io/quill/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BuildNodeConfig translates the CLI config into node options
func BuildNodeConfig(
	cfg *config.Config,
	logger *slog.Logger,
) (quill.Config, error) {
	programID, err := ledger.IdentityFromHex(cfg.ProgramID)
	if err != nil {
		return quill.Config{}, fmt.Errorf("invalid program identity: %w", err)
	}
	shutdownTimeout := 30 * time.Second
	if cfg.ShutdownTimeout != "" {
		shutdownTimeout, err = time.ParseDuration(cfg.ShutdownTimeout)
		if err != nil {
			return quill.Config{}, fmt.Errorf(
				"invalid shutdown timeout: %w",
				err,
			)
		}
	}
	opts := []quill.ConfigOptionFunc{
		quill.WithLogger(logger),
		quill.WithDataDir(cfg.DataDir),
		quill.WithProgramID(programID),
		quill.WithApiListenAddress(cfg.ApiListenAddr),
		quill.WithShutdownTimeout(shutdownTimeout),
		quill.WithTracing(cfg.Tracing),
		quill.WithTracingStdout(cfg.TracingStdout),
		// Enable metrics with default prometheus registry
		quill.WithPrometheusRegistry(prometheus.DefaultRegisterer),
	}
	if cfg.SlotCapacity > 0 {
		opts = append(opts, quill.WithSlotCapacity(cfg.SlotCapacity))
	}
	return quill.NewConfig(opts...), nil
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")

	nodeCfg, err := BuildNodeConfig(cfg, logger)
	if err != nil {
		return err
	}
	q, err := quill.New(nodeCfg)
	if err != nil {
		return err
	}

	// Metrics and debug listener
	http.Handle("/metrics", promhttp.Handler())
	logger.Info(
		fmt.Sprintf(
			"serving prometheus metrics on :%d",
			cfg.MetricsPort,
		),
		"component", "node",
	)
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			logger.Error(
				fmt.Sprintf("failed to start metrics listener: %s", err),
				"component", "node",
			)
			os.Exit(1)
		}
	}()

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
		err := q.Run()
		select {
		case errChan <- err:
		case <-signalCtx.Done():
		}
	}()

	shutdownMetrics := func() {
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			10*time.Second,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}

	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")
		shutdownMetrics()
		if err := q.Stop(); err != nil {
			logger.Error("shutdown errors occurred", "error", err)
			return err
		}
		logger.Info("shutdown complete")
		return nil

	case err := <-errChan:
		shutdownMetrics()
		if err == nil {
			logger.Info("node stopped")
			if stopErr := q.Stop(); stopErr != nil {
				logger.Error("shutdown errors occurred", "error", stopErr)
				return stopErr
			}
			return nil
		}
		logger.Error("node error", "error", err)
		if stopErr := q.Stop(); stopErr != nil {
			logger.Error(
				"shutdown errors occurred during error cleanup",
				"error", stopErr,
			)
		}
		return err
	}
}
