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

// Package api serves the governance engine over HTTP. Mutating requests
// name their signer in the X-Leapfrog-Signer header.
package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/blinklabs-io/leapfrog/engine"
	"github.com/blinklabs-io/leapfrog/governance"
	"github.com/blinklabs-io/leapfrog/tokenledger"
)

const (
	SignerHeader = "X-Leapfrog-Signer"

	signerKey = "signer"
)

type config struct {
	logger       *slog.Logger
	allowOrigins []string
}

// OptionFunc is a type that represents functions that modify the API config
type OptionFunc func(*config)

// WithLogger specifies the logger used for request logging
func WithLogger(logger *slog.Logger) OptionFunc {
	return func(c *config) {
		c.logger = logger
	}
}

// WithAllowOrigins enables CORS for the given origins
func WithAllowOrigins(origins ...string) OptionFunc {
	return func(c *config) {
		c.allowOrigins = origins
	}
}

// New returns a router serving the v1 API backed by the engine
func New(e *engine.Engine, opts ...OptionFunc) *gin.Engine {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	g := gin.New()
	g.Use(requestLogger(cfg.logger), gin.Recovery())
	if len(cfg.allowOrigins) > 0 {
		g.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.allowOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", SignerHeader},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}
	attachRoutes(g, e)
	return g
}

func attachRoutes(r *gin.Engine, e *engine.Engine) {
	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"healthy": true})
	})

	v1 := r.Group("/v1")
	v1.Use(signerMiddleware())

	realmH := NewRealms(e)
	v1.POST("/realms", realmH.Initialize)
	v1.GET("/realms", realmH.List)
	v1.GET("/realms/:address", realmH.Get)
	v1.GET("/realms/:address/proposals", realmH.Proposals)

	proposalH := NewProposals(e)
	v1.POST("/proposals", proposalH.Create)
	v1.GET("/proposals/:address", proposalH.Get)
	v1.POST("/proposals/:address/activate", proposalH.Activate)
	v1.POST("/proposals/:address/finalize", proposalH.Finalize)
	v1.POST("/proposals/:address/execute", proposalH.Execute)

	voteH := NewVotes(e)
	v1.POST("/proposals/:address/votes", voteH.Cast)
	v1.GET("/proposals/:address/votes", voteH.List)
	v1.GET("/votes/:address", voteH.Get)
	v1.POST("/votes/:address/relinquish", voteH.Relinquish)

	stakeH := NewStakes(e)
	v1.POST("/stake", stakeH.Stake)
	v1.POST("/unstake", stakeH.Unstake)
	v1.GET("/token-owner-records/:address", stakeH.Get)
	v1.GET("/owners/:owner/token-owner-records", stakeH.ListByOwner)
	v1.GET("/mints/:mint/balances/:account", stakeH.Balance)

	accountH := NewAccounts(e)
	v1.GET("/accounts/:address", accountH.Get)
}

// signerMiddleware stores the signer header for handlers. The engine rejects
// mutations without one.
func signerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(signerKey, governance.Address(c.GetHeader(SignerHeader)))
		c.Next()
	}
}

func signer(c *gin.Context) governance.Address {
	if v, ok := c.Get(signerKey); ok {
		if s, ok := v.(governance.Address); ok {
			return s
		}
	}
	return ""
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		for _, err := range c.Errors {
			logger.Error(
				"request failed",
				"component", "api",
				"path", c.FullPath(),
				"error", err.Err,
			)
		}
		logger.Debug(
			"request",
			"component", "api",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// StatusForError maps engine errors to HTTP status codes
func StatusForError(err error) int {
	switch {
	case errors.Is(err, governance.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, governance.ErrMissingAuthorization):
		return http.StatusForbidden
	case errors.Is(err, governance.ErrInvalidProposalConfig),
		errors.Is(err, governance.ErrInvalidBallot),
		errors.Is(err, governance.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, governance.ErrAccountAlreadyExists),
		errors.Is(err, governance.ErrAccountTypeMismatch),
		errors.Is(err, governance.ErrAlreadyVoted),
		errors.Is(err, governance.ErrAlreadyExecuted),
		errors.Is(err, governance.ErrInvalidStateTransition),
		errors.Is(err, governance.ErrVotingClosed),
		errors.Is(err, governance.ErrCooldownActive),
		errors.Is(err, governance.ErrUnrelinquishedVotesExist):
		return http.StatusConflict
	case errors.Is(err, governance.ErrInsufficientStake),
		errors.Is(err, governance.ErrArithmeticOverflow),
		errors.Is(err, tokenledger.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorKind(err error) string {
	if errors.Is(err, tokenledger.ErrInsufficientBalance) {
		return "insufficient_balance"
	}
	return governance.ErrorKind(err)
}

func abortWithError(c *gin.Context, err error) {
	status := StatusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, Error{Error: msg, Kind: errorKind(err)})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(
		http.StatusBadRequest,
		Error{Error: err.Error(), Kind: "bad_request"},
	)
}
