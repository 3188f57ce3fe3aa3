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
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blinklabs-io/leapfrog/api"
	"github.com/blinklabs-io/leapfrog/database"
	"github.com/blinklabs-io/leapfrog/engine"
	"github.com/blinklabs-io/leapfrog/event"
	"github.com/blinklabs-io/leapfrog/event/redisstream"
	"github.com/blinklabs-io/leapfrog/tokenledger"
)

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	ledger        *tokenledger.Blob
	engine        *engine.Engine
	redisClient   *redis.Client
	forwarder     *redisstream.Forwarder
	apiServer     *http.Server
	apiListener   net.Listener
	sweeperCancel context.CancelFunc
	shutdownFuncs []func(context.Context) error
	config        Config
	sweeperWg     sync.WaitGroup
	done          chan struct{}
	ready         chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
		ready:    make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		eventBus.Stop()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Run starts the node and blocks until Stop is called. The context bounds
// startup and the finalization sweeper.
func (n *Node) Run(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(ctx); err != nil {
			return err
		}
	}
	// Load database
	dbConfig := &database.Config{
		DataDir:        n.config.dataDir,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
	}
	db, err := database.New(dbConfig)
	if db == nil {
		n.config.logger.Error(
			"failed to create database",
			"error",
			"empty database returned",
		)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		return errors.New("empty database returned")
	}
	n.db = db
	if err != nil {
		var dbErr database.CommitTimestampError
		if !errors.As(err, &dbErr) {
			return fmt.Errorf("failed to open database: %w", err)
		}
		n.config.logger.Warn(
			"database initialization error, needs recovery",
			"error",
			err,
		)
		if err := n.db.RecoverCommitTimestamp(); err != nil {
			return fmt.Errorf("failed to recover database: %w", err)
		}
	}
	// Load token ledger
	n.ledger = tokenledger.NewBlob(n.db.Blob(), n.config.logger)
	if err := n.ledger.Seed(n.config.genesis); err != nil {
		return fmt.Errorf("failed to seed token ledger: %w", err)
	}
	// Load engine
	engineOpts := []engine.EngineOptionFunc{
		engine.WithLogger(n.config.logger),
		engine.WithPromRegistry(n.config.promRegistry),
		engine.WithEventBus(n.eventBus),
		engine.WithAutoActivate(n.config.autoActivate),
	}
	if n.config.clock != nil {
		engineOpts = append(engineOpts, engine.WithClock(n.config.clock))
	}
	if n.config.dispatcher != nil {
		engineOpts = append(engineOpts, engine.WithDispatcher(n.config.dispatcher))
	}
	if n.config.cooldownPeriod > 0 {
		engineOpts = append(engineOpts, engine.WithCooldownPeriod(n.config.cooldownPeriod))
	}
	if n.config.defaultQuorumPercent > 0 {
		engineOpts = append(
			engineOpts,
			engine.WithDefaultQuorumPercent(n.config.defaultQuorumPercent),
		)
	}
	n.engine, err = engine.New(n.db, n.ledger, engineOpts...)
	if err != nil {
		return fmt.Errorf("failed to load engine: %w", err)
	}
	// Forward events to redis
	if n.config.redisUrl != "" {
		if err := n.startForwarder(ctx); err != nil {
			return err
		}
	}
	// Start HTTP API
	if n.config.apiListenAddress != "" {
		if err := n.startApi(); err != nil {
			return err
		}
	}
	// Start finalization sweeper
	if n.config.finalizeInterval > 0 {
		n.startSweeper(ctx)
	}
	close(n.ready)

	// Wait for shutdown signal
	<-n.done
	return nil
}

func (n *Node) startForwarder(ctx context.Context) error {
	client, err := redisstream.NewClient(n.config.redisUrl)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	n.redisClient = client
	opts := []redisstream.OptionFunc{
		redisstream.WithLogger(n.config.logger),
	}
	if n.config.redisStream != "" {
		opts = append(opts, redisstream.WithStream(n.config.redisStream))
	}
	n.forwarder = redisstream.New(client, opts...)
	n.forwarder.Start(n.eventBus, event.GovernanceEventTypes...)
	n.config.logger.Info(
		"forwarding governance events to redis",
		"component", "node",
		"stream", n.config.redisStream,
	)
	return nil
}

func (n *Node) startApi() error {
	listener, err := net.Listen("tcp", n.config.apiListenAddress)
	if err != nil {
		return fmt.Errorf("failed to start API listener: %w", err)
	}
	n.apiListener = listener
	n.apiServer = &http.Server{
		Handler: api.New(
			n.engine,
			api.WithLogger(n.config.logger),
			api.WithAllowOrigins(n.config.corsOrigins...),
		),
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	n.config.logger.Info(
		"serving API on "+listener.Addr().String(),
		"component", "node",
	)
	go func() {
		if err := n.apiServer.Serve(listener); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			n.config.logger.Error(
				fmt.Sprintf("API listener failed: %s", err),
				"component", "node",
			)
		}
	}()
	return nil
}

func (n *Node) startSweeper(ctx context.Context) {
	sweepCtx, cancel := context.WithCancel(ctx)
	n.sweeperCancel = cancel
	n.sweeperWg.Add(1)
	go func() {
		defer n.sweeperWg.Done()
		ticker := time.NewTicker(n.config.finalizeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				count, err := n.engine.FinalizeDueProposals(
					sweepCtx,
					n.config.finalizeBatchSize,
				)
				if err != nil && sweepCtx.Err() == nil {
					n.config.logger.Warn(
						"failed to finalize proposals",
						"component", "node",
						"error", err,
					)
				}
				if count > 0 {
					n.config.logger.Debug(
						fmt.Sprintf("finalized %d proposals", count),
						"component", "node",
					)
				}
			case <-sweepCtx.Done():
				return
			}
		}
	}()
}

// Engine returns the governance engine once Run has finished startup
func (n *Node) Engine() *engine.Engine {
	return n.engine
}

// Ready is closed once Run has finished startup
func (n *Node) Ready() <-chan struct{} {
	return n.ready
}

// ApiAddr returns the address the HTTP API listens on, or nil when disabled
func (n *Node) ApiAddr() net.Addr {
	if n.apiListener == nil {
		return nil
	}
	return n.apiListener.Addr()
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
	shutdownTimeout := DefaultShutdownTimeout
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	n.config.logger.Debug("shutdown phase 1: stopping new work")

	if n.apiServer != nil {
		if stopErr := n.apiServer.Shutdown(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("API shutdown: %w", stopErr))
		}
	}

	if n.sweeperCancel != nil {
		n.sweeperCancel()
		n.sweeperWg.Wait()
	}

	// Phase 2: Drain event delivery
	n.config.logger.Debug("shutdown phase 2: draining events")

	if n.eventBus != nil {
		// Closes subscribers, which flushes the redis forwarder
		n.eventBus.Stop()
	}
	if n.forwarder != nil {
		n.forwarder.Close()
	}
	if n.redisClient != nil {
		if closeErr := n.redisClient.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("redis close: %w", closeErr))
		}
	}

	// Phase 3: Close database
	n.config.logger.Debug("shutdown phase 3: closing database")

	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Phase 4: Cleanup resources
	n.config.logger.Debug("shutdown phase 4: cleanup resources")

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
