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

// Package api provides the HTTP interface to the listing registry: account
// and registry queries, address derivation, transaction submission and an
// event stream.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/blinklabs-io/boarding/event"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	DefaultListenAddress = ":8080"
	requestTimeout       = 60 * time.Second
)

// Config holds the API server settings
type Config struct {
	// EventBus enables the websocket event stream when set
	EventBus      *event.EventBus
	ListenAddress string
}

// Server is the registry HTTP API server
type Server struct {
	config     Config
	logger     *slog.Logger
	node       Node
	httpServer *http.Server
	closeCh    chan struct{}
	mu         sync.Mutex
}

// New creates a new API server instance
func New(
	cfg Config,
	node Node,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	return &Server{
		config: cfg,
		logger: logger,
		node:   node,
	}
}

// Handler returns the HTTP handler serving all API routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Get("/accounts/{address}", s.handleAccount)
			r.Get("/configs/{address}", s.handleConfig)
			r.Get("/configs/{address}/requests", s.handleConfigRequests)
			r.Get("/requests/{address}", s.handleRequest)
			r.Get("/requests/{address}/approved", s.handleRequestApproved)
			r.Get("/requestors/{address}/requests", s.handleRequestorRequests)
			r.Get("/derive", s.handleDerive)
			r.Post("/transactions", s.handleSubmitTransaction)
			r.Get("/transactions/{id}", s.handleTransactionStatus)
			r.Post("/airdrop", s.handleAirdrop)
		})
		if s.config.EventBus != nil {
			r.Get("/events", s.handleEvents)
		}
	})
	return r
}

// Start starts the HTTP server in a background goroutine
func (s *Server) Start(
	ctx context.Context,
) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.httpServer = server
	s.closeCh = make(chan struct{})
	s.mu.Unlock()

	// Start the server with deterministic error detection
	if err := s.startServer(server); err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.mu.Unlock()
		return err
	}

	s.logger.Info(
		"API listener started on " + s.config.ListenAddress,
	)

	// Monitor context for cancellation
	go func() {
		<-ctx.Done()
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		if err := s.Stop(shutdownCtx); err != nil {
			s.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(
	ctx context.Context,
) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	if srv != nil {
		// Hijacked websocket connections are not tracked by Shutdown
		close(s.closeCh)
	}
	s.mu.Unlock()

	if srv != nil {
		s.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf(
				"failed to shutdown API server: %w",
				err,
			)
		}
	}
	return nil
}

// startServer binds the listening socket first so port conflicts are
// detected immediately, then serves in a background goroutine
func (s *Server) startServer(
	server *http.Server,
) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf(
			"failed to listen for API server: %w",
			err,
		)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	return nil
}

// closing returns a channel closed when the server stops. It is nil when the
// handler is served outside of Start
func (s *Server) closing() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCh
}
