// Copyright 2025 Blink Labs Software
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

package boarding

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/registry"
	"github.com/prometheus/client_golang/prometheus"
)

// runMode constants for operational mode configuration
const (
	runModeServe = "serve"
	runModeDev   = "dev"
)

type Config struct {
	promRegistry      prometheus.Registerer
	logger            *slog.Logger
	dataDir           string
	apiListenAddress  string
	runMode           string
	feeMode           registry.FeeMode
	programID         address.Address
	blobCacheSize     uint64
	airdropLimit      uint64
	shutdownTimeout   time.Duration
	strictDecisions   bool
	eventStream       bool
	tracing           bool
	tracingStdout     bool
	programIDOverride bool
}

// isDevMode returns true if running in development mode
func (c *Config) isDevMode() bool {
	return c.runMode == runModeDev
}

func (n *Node) configValidate() error {
	switch n.config.runMode {
	case "", runModeServe, runModeDev:
	default:
		return fmt.Errorf("invalid run mode: %s", n.config.runMode)
	}
	if _, err := registry.ParseFeeMode(string(n.config.feeMode)); err != nil {
		return err
	}
	if n.config.programIDOverride && n.config.programID.IsZero() {
		return errors.New("program ID must not be the system program ID")
	}
	if n.config.airdropLimit > 0 && !n.config.isDevMode() {
		n.config.logger.Warn(
			"airdrop limit configured outside of dev mode, airdrops stay disabled",
		)
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new boarding config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		feeMode:     registry.FeeModeLive,
		programID:   registry.DefaultProgramID,
		eventStream: true,
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

// WithBlobCacheSize specifies the block cache size in bytes for the blob store
func WithBlobCacheSize(size uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.blobCacheSize = size
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

// WithApiListenAddress specifies the listen address for the HTTP API. An empty value disables the API
func WithApiListenAddress(listenAddress string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = listenAddress
	}
}

// WithEventStream enables or disables the websocket event stream on the HTTP API
func WithEventStream(enabled bool) ConfigOptionFunc {
	return func(c *Config) {
		c.eventStream = enabled
	}
}

// WithProgramID specifies the address the registry program is deployed at
func WithProgramID(programID address.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.programID = programID
		c.programIDOverride = true
	}
}

// WithFeeMode specifies whether decisions charge the live configuration fee or the fee recorded on the request
func WithFeeMode(feeMode registry.FeeMode) ConfigOptionFunc {
	return func(c *Config) {
		c.feeMode = feeMode
	}
}

// WithStrictDecisions rejects decisions on requests that are no longer pending
func WithStrictDecisions(strict bool) ConfigOptionFunc {
	return func(c *Config) {
		c.strictDecisions = strict
	}
}

// WithRunMode sets the operational mode ("serve" or "dev"). Dev mode enables airdrops
func WithRunMode(mode string) ConfigOptionFunc {
	return func(c *Config) {
		c.runMode = mode
	}
}

// WithAirdropLimit caps the lamports handed out by a single airdrop in dev mode. Zero means no limit
func WithAirdropLimit(limit uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.airdropLimit = limit
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) OTLP collector at localhost:4318 (or an HTTPS endpoint
// if TLS env vars are configured), using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
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
