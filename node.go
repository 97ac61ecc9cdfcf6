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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/boarding/api"
	"github.com/blinklabs-io/boarding/database"
	"github.com/blinklabs-io/boarding/event"
	"github.com/blinklabs-io/boarding/ledger"
	"github.com/blinklabs-io/boarding/registry"
)

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	ledgerState   *ledger.LedgerState
	api           *api.Server
	shutdownFuncs []func(context.Context) error
	config        Config
	ready         chan struct{}
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		eventBus.Stop()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

func (n *Node) Run(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	dbConfig := &database.Config{
		DataDir:       n.config.dataDir,
		Logger:        n.config.logger,
		PromRegistry:  n.config.promRegistry,
		BlobCacheSize: n.config.blobCacheSize,
	}
	db, err := database.New(dbConfig)
	if db == nil {
		n.config.logger.Error(
			"failed to create database",
			"error",
			"empty database returned",
		)
		return errors.New("empty database returned")
	}
	n.db = db
	if err != nil {
		var dbErr database.CommitTimestampError
		if errors.As(err, &dbErr) {
			n.config.logger.Error(
				"database stores are out of sync",
				"error",
				err,
			)
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	// Load registry program
	feeMode, err := registry.ParseFeeMode(string(n.config.feeMode))
	if err != nil {
		return err
	}
	program := registry.NewProgram(
		registry.WithLogger(n.config.logger),
		registry.WithPromRegistry(n.config.promRegistry),
		registry.WithProgramID(n.config.programID),
		registry.WithFeeMode(feeMode),
		registry.WithStrictDecisions(n.config.strictDecisions),
	)
	// Load state
	state, err := ledger.NewLedgerState(
		ledger.LedgerStateConfig{
			Database:      n.db,
			EventBus:      n.eventBus,
			Logger:        n.config.logger,
			PromRegistry:  n.config.promRegistry,
			Registry:      program,
			EnableAirdrop: n.config.isDevMode(),
			AirdropLimit:  n.config.airdropLimit,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load ledger state: %w", err)
	}
	n.ledgerState = state
	n.config.logger.Info(
		"registry program loaded",
		"component", "node",
		"program_id", program.ID().String(),
		"fee_mode", string(program.FeeMode()),
		"strict_decisions", program.StrictDecisions(),
	)
	// Configure HTTP API
	if n.config.apiListenAddress != "" {
		apiCfg := api.Config{
			ListenAddress: n.config.apiListenAddress,
		}
		if n.config.eventStream {
			apiCfg.EventBus = n.eventBus
		}
		n.api = api.New(apiCfg, n.ledgerState, n.config.logger)
		if err := n.api.Start(ctx); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
	}
	close(n.ready)

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

// Ready returns a channel that is closed once all components are running
func (n *Node) Ready() <-chan struct{} {
	return n.ready
}

// LedgerState returns the ledger. It is nil until Run has loaded it
func (n *Node) LedgerState() *ledger.LedgerState {
	return n.ledgerState
}

// EventBus returns the node's event bus
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	n.config.logger.Debug("shutdown phase 1: stopping new work")

	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Phase 2: Flush state and close database
	n.config.logger.Debug("shutdown phase 2: flushing state")

	if n.ledgerState != nil {
		if closeErr := n.ledgerState.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("ledger state close: %w", closeErr),
			)
		}
	} else if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("database close: %w", closeErr),
			)
		}
	}

	// Phase 3: Cleanup resources
	n.config.logger.Debug("shutdown phase 3: cleanup resources")

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
