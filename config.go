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

package leapfrog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/leapfrog/governance"
	"github.com/blinklabs-io/leapfrog/tokenledger"
)

const (
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultFinalizeBatchSize = 100
)

type Config struct {
	promRegistry         prometheus.Registerer
	logger               *slog.Logger
	clock                governance.Clock
	dispatcher           governance.ActionDispatcher
	dataDir              string
	blobPlugin           string
	metadataPlugin       string
	apiListenAddress     string
	redisUrl             string
	redisStream          string
	corsOrigins          []string
	genesis              []tokenledger.Allocation
	cooldownPeriod       time.Duration
	finalizeInterval     time.Duration
	shutdownTimeout      time.Duration
	finalizeBatchSize    int
	defaultQuorumPercent uint8
	autoActivate         bool
	tracing              bool
	tracingStdout        bool
}

func (n *Node) configValidate() error {
	if n.config.defaultQuorumPercent > 100 {
		return fmt.Errorf(
			"invalid default quorum percent: %d",
			n.config.defaultQuorumPercent,
		)
	}
	if n.config.cooldownPeriod < 0 {
		return fmt.Errorf("invalid cooldown period: %s", n.config.cooldownPeriod)
	}
	if n.config.finalizeInterval < 0 {
		return fmt.Errorf(
			"invalid finalize interval: %s",
			n.config.finalizeInterval,
		)
	}
	if n.config.tracingStdout && !n.config.tracing {
		return errors.New("stdout tracing requires tracing to be enabled")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new leapfrog config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		autoActivate:      true,
		finalizeBatchSize: DefaultFinalizeBatchSize,
		shutdownTimeout:   DefaultShutdownTimeout,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use.
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use.
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithApiListenAddress specifies the listen address of the HTTP API. The API is disabled when empty
func WithApiListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = address
	}
}

// WithCorsOrigins specifies the origins allowed to call the HTTP API from a browser
func WithCorsOrigins(origins ...string) ConfigOptionFunc {
	return func(c *Config) {
		c.corsOrigins = origins
	}
}

// WithCooldownPeriod specifies the minimum delay between two unstakes by the same owner
func WithCooldownPeriod(period time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.cooldownPeriod = period
	}
}

// WithDefaultQuorumPercent specifies the quorum applied to realms created without one
func WithDefaultQuorumPercent(percent uint8) ConfigOptionFunc {
	return func(c *Config) {
		c.defaultQuorumPercent = percent
	}
}

// WithAutoActivate controls whether new proposals open for voting immediately. The default is true
func WithAutoActivate(autoActivate bool) ConfigOptionFunc {
	return func(c *Config) {
		c.autoActivate = autoActivate
	}
}

// WithFinalizeInterval specifies how often proposals past their voting window are finalized. The sweeper is disabled when zero
func WithFinalizeInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.finalizeInterval = interval
	}
}

// WithFinalizeBatchSize specifies how many proposals one sweep finalizes at most
func WithFinalizeBatchSize(size int) ConfigOptionFunc {
	return func(c *Config) {
		c.finalizeBatchSize = size
	}
}

// WithRedisUrl enables forwarding governance events to a redis stream
func WithRedisUrl(url string) ConfigOptionFunc {
	return func(c *Config) {
		c.redisUrl = url
	}
}

// WithRedisStream specifies the redis stream events are written to
func WithRedisStream(stream string) ConfigOptionFunc {
	return func(c *Config) {
		c.redisStream = stream
	}
}

// WithGenesis specifies balances credited to the token ledger for mints that hold no supply yet
func WithGenesis(allocations []tokenledger.Allocation) ConfigOptionFunc {
	return func(c *Config) {
		c.genesis = allocations
	}
}

// WithClock specifies the timestamp source. This defaults to the wall clock
func WithClock(clock governance.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithDispatcher specifies the hook running the action of executed proposals
func WithDispatcher(dispatcher governance.ActionDispatcher) ConfigOptionFunc {
	return func(c *Config) {
		c.dispatcher = dispatcher
	}
}
