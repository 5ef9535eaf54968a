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

package quill

import (
	"errors"
	"log/slog"
	"time"

	"github.com/blinklabs-io/quill/host"
	"github.com/blinklabs-io/quill/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultSlotCapacity is the storage slot capacity used when creating
// new ledger records
const DefaultSlotCapacity = 65536

type Config struct {
	promRegistry    prometheus.Registerer
	logger          *slog.Logger
	clock           host.Clock
	dataDir         string
	apiListenAddr   string
	programID       ledger.Identity
	slotCapacity    uint32
	shutdownTimeout time.Duration
	tracing         bool
	tracingStdout   bool
}

// ConfigOptionFunc is a function that modifies the Config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new node config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		apiListenAddr:   ":8322",
		slotCapacity:    DefaultSlotCapacity,
		shutdownTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *Config) validate() error {
	if c.programID.IsZero() {
		return errors.New("no program identity configured")
	}
	return nil
}

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithDataDir specifies the data directory for persistent storage. An
// empty data directory keeps everything in memory.
func WithDataDir(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithProgramID specifies the executing program's identity. Ledger
// records are only processed when their storage slot is owned by this
// identity.
func WithProgramID(programID ledger.Identity) ConfigOptionFunc {
	return func(c *Config) {
		c.programID = programID
	}
}

// WithApiListenAddress specifies the listen address for the REST API
func WithApiListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddr = addr
	}
}

// WithPrometheusRegistry specifies the prometheus registry to use for metrics
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithClock specifies the timestamp oracle. Defaults to the system
// clock.
func WithClock(clock host.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithSlotCapacity specifies the storage slot capacity for newly created
// ledger records
func WithSlotCapacity(capacity uint32) ConfigOptionFunc {
	return func(c *Config) {
		c.slotCapacity = capacity
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithTracing enables tracing. The OTLP-HTTP exporter is configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for
// [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables the stdout trace exporter instead of
// OTLP-HTTP
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}
