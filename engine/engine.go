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

// Package engine applies governance operations to the database. Each
// operation locks the entities it touches, runs in one database transaction
// and moves tokens on the ledger only once every check passed.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blinklabs-io/leapfrog/database"
	"github.com/blinklabs-io/leapfrog/event"
	"github.com/blinklabs-io/leapfrog/governance"
)

const (
	DefaultCooldownPeriod       = 24 * time.Hour
	DefaultQuorumPercent  uint8 = 10

	tracerName = "github.com/blinklabs-io/leapfrog/engine"
)

var (
	ErrNoDatabase = errors.New("engine: database is required")
	ErrNoLedger   = errors.New("engine: token ledger is required")

	errCommitFailed = errors.New("commit failed")
)

type Engine struct {
	db                   *database.Database
	ledger               governance.TokenLedger
	clock                governance.Clock
	dispatcher           governance.ActionDispatcher
	eventBus             *event.EventBus
	logger               *slog.Logger
	promRegistry         prometheus.Registerer
	tracerProvider       trace.TracerProvider
	tracer               trace.Tracer
	metrics              *engineMetrics
	locks                *keyedLocks
	newAddress           func() governance.Address
	cooldownPeriod       time.Duration
	defaultQuorumPercent uint8
	autoActivate         bool
}

// EngineOptionFunc is a type that represents functions that modify the Engine config
type EngineOptionFunc func(*Engine)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) EngineOptionFunc {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) EngineOptionFunc {
	return func(e *Engine) {
		e.promRegistry = registry
	}
}

// WithTracerProvider specifies the tracer provider for operation spans. The
// global provider is used by default.
func WithTracerProvider(provider trace.TracerProvider) EngineOptionFunc {
	return func(e *Engine) {
		e.tracerProvider = provider
	}
}

// WithClock specifies the timestamp source. Wall clock seconds are used by
// default.
func WithClock(clock governance.Clock) EngineOptionFunc {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithDispatcher specifies the hook running the action of executed
// proposals
func WithDispatcher(dispatcher governance.ActionDispatcher) EngineOptionFunc {
	return func(e *Engine) {
		e.dispatcher = dispatcher
	}
}

// WithEventBus specifies the event bus governance events are published on
func WithEventBus(eventBus *event.EventBus) EngineOptionFunc {
	return func(e *Engine) {
		e.eventBus = eventBus
	}
}

// WithCooldownPeriod specifies the delay between two unstakes by the same
// owner
func WithCooldownPeriod(period time.Duration) EngineOptionFunc {
	return func(e *Engine) {
		e.cooldownPeriod = period
	}
}

// WithDefaultQuorumPercent specifies the quorum applied to realms created
// without one
func WithDefaultQuorumPercent(percent uint8) EngineOptionFunc {
	return func(e *Engine) {
		e.defaultQuorumPercent = percent
	}
}

// WithAutoActivate controls whether new proposals open for voting
// immediately or wait in Draft for ActivateProposal
func WithAutoActivate(autoActivate bool) EngineOptionFunc {
	return func(e *Engine) {
		e.autoActivate = autoActivate
	}
}

// WithAddressFunc specifies the generator for proposal and vote record
// addresses that callers leave empty
func WithAddressFunc(fn func() governance.Address) EngineOptionFunc {
	return func(e *Engine) {
		e.newAddress = fn
	}
}

// New creates an engine on top of an open database and a token ledger
func New(
	db *database.Database,
	ledger governance.TokenLedger,
	opts ...EngineOptionFunc,
) (*Engine, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}
	if ledger == nil {
		return nil, ErrNoLedger
	}
	e := &Engine{
		db:                   db,
		ledger:               ledger,
		locks:                newKeyedLocks(),
		cooldownPeriod:       DefaultCooldownPeriod,
		defaultQuorumPercent: DefaultQuorumPercent,
		autoActivate:         true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.defaultQuorumPercent == 0 || e.defaultQuorumPercent > 100 {
		return nil, fmt.Errorf(
			"%w: default quorum percent %d out of range 1..100",
			governance.ErrInvalidProposalConfig,
			e.defaultQuorumPercent,
		)
	}
	if e.cooldownPeriod < 0 {
		return nil, fmt.Errorf("invalid cooldown period: %s", e.cooldownPeriod)
	}
	if e.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if e.clock == nil {
		e.clock = governance.ClockFunc(func() uint64 {
			return uint64(time.Now().Unix()) //nolint:gosec // wall clock is positive
		})
	}
	if e.newAddress == nil {
		e.newAddress = func() governance.Address {
			return governance.Address(uuid.NewString())
		}
	}
	if e.tracerProvider == nil {
		e.tracerProvider = otel.GetTracerProvider()
	}
	e.tracer = e.tracerProvider.Tracer(tracerName)
	if e.promRegistry != nil {
		e.initMetrics(e.promRegistry)
	}
	return e, nil
}

// Database returns the underlying database
func (e *Engine) Database() *database.Database {
	return e.db
}

// Ledger returns the token ledger
func (e *Engine) Ledger() governance.TokenLedger {
	return e.ledger
}

// Now returns the current engine time in unix seconds
func (e *Engine) Now() uint64 {
	return e.clock.Now()
}

func (e *Engine) cooldownSeconds() uint64 {
	return uint64(e.cooldownPeriod / time.Second) //nolint:gosec // checked non-negative in New
}

// observe wraps an operation in a span and records its metrics
func (e *Engine) observe(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	attrs ...attribute.KeyValue,
) error {
	start := time.Now()
	ctx, span := e.tracer.Start(
		ctx,
		"governance."+operation,
		trace.WithAttributes(attrs...),
	)
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, governance.ErrorKind(err))
	}
	span.End()
	e.metrics.observe(operation, start, err)
	return err
}

// transfer is a ledger movement between an owner account and a realm vault
type transfer struct {
	mint    governance.Address
	owner   governance.Address
	vault   governance.Address
	amount  uint64
	deposit bool
}

func (t transfer) apply(ctx context.Context, ledger governance.TokenLedger) error {
	if t.deposit {
		return ledger.Deposit(ctx, t.mint, t.owner, t.vault, t.amount)
	}
	return ledger.Withdraw(ctx, t.mint, t.vault, t.owner, t.amount)
}

func (t transfer) reverse() transfer {
	t.deposit = !t.deposit
	return t
}

// op is the state of one read-write operation
type op struct {
	ctx         context.Context
	txn         *database.Txn
	now         uint64
	transfers   []transfer
	afterCommit []func()
}

func (o *op) transfer(t transfer) {
	o.transfers = append(o.transfers, t)
}

func (o *op) onCommit(fn func()) {
	o.afterCommit = append(o.afterCommit, fn)
}

func (e *Engine) publish(o *op, eventType event.EventType, data any) {
	if e.eventBus == nil {
		return
	}
	o.onCommit(func() {
		e.eventBus.Publish(eventType, event.NewEvent(eventType, data))
	})
}

// update locks keys, reads the clock and runs fn in a read-write
// transaction. Queued ledger transfers are applied after fn succeeds and
// before the commit, and reversed when the commit fails.
func (e *Engine) update(
	ctx context.Context,
	keys []governance.Address,
	fn func(*op) error,
) error {
	lockKeys := make([]string, len(keys))
	for i, key := range keys {
		lockKeys[i] = string(key)
	}
	unlock := e.locks.lock(lockKeys...)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	o := &op{
		ctx: ctx,
		txn: e.db.Transaction(true),
		now: e.clock.Now(),
	}
	if err := fn(o); err != nil {
		o.txn.Release()
		return err
	}
	for i, t := range o.transfers {
		if err := t.apply(ctx, e.ledger); err != nil {
			o.txn.Release()
			e.reverseTransfers(ctx, o.transfers[:i])
			return fmt.Errorf("ledger transfer: %w", err)
		}
	}
	if err := o.txn.Commit(); err != nil {
		e.reverseTransfers(ctx, o.transfers)
		return fmt.Errorf("%w: %w", errCommitFailed, err)
	}
	for _, fn := range o.afterCommit {
		fn()
	}
	return nil
}

func (e *Engine) reverseTransfers(ctx context.Context, applied []transfer) {
	// Compensation must run even when the caller gave up
	ctx = context.WithoutCancel(ctx)
	for i := len(applied) - 1; i >= 0; i-- {
		t := applied[i].reverse()
		if err := t.apply(ctx, e.ledger); err != nil {
			e.logger.Error(
				"failed to reverse ledger transfer",
				"component", "engine",
				"mint", t.mint,
				"owner", t.owner,
				"vault", t.vault,
				"amount", t.amount,
				"deposit", t.deposit,
				"error", err,
			)
			continue
		}
		e.logger.Warn(
			"reversed ledger transfer",
			"component", "engine",
			"mint", t.mint,
			"owner", t.owner,
			"amount", t.amount,
		)
	}
}

// tokenOwnerRecord returns the record at address, or nil when the owner
// never staked
func (e *Engine) tokenOwnerRecord(
	address governance.Address,
	txn *database.Txn,
) (*governance.TokenOwnerRecord, error) {
	record, err := e.db.GetTokenOwnerRecord(address, txn)
	if err != nil {
		if errors.Is(err, governance.ErrAccountNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// finalize closes p in o when its voting window elapsed and reports whether
// the state changed
func (e *Engine) finalize(o *op, p *governance.Proposal) (bool, error) {
	if !p.NeedsFinalization(o.now) {
		return false, nil
	}
	realm, err := e.db.GetRealm(p.Governance, o.txn)
	if err != nil {
		return false, fmt.Errorf("load realm %s: %w", p.Governance, err)
	}
	supply, err := e.ledger.Supply(o.ctx, p.GoverningTokenMint)
	if err != nil {
		return false, fmt.Errorf("supply of %s: %w", p.GoverningTokenMint, err)
	}
	changed, err := p.Finalize(realm, supply, o.now)
	if err != nil || !changed {
		return false, err
	}
	if err := e.db.UpdateProposal(p, o.txn); err != nil {
		return false, err
	}
	state := p.State
	o.onCommit(func() {
		e.metrics.proposalFinalized(state)
		e.logger.Info(
			"proposal finalized",
			"component", "engine",
			"proposal", p.Address,
			"state", state.String(),
			"total_vote_weight", p.TotalVoteWeight,
		)
	})
	e.publish(o, event.ProposalFinalizedEventType, proposalEvent(p))
	return true, nil
}

func proposalEvent(p *governance.Proposal) event.ProposalEvent {
	evt := event.ProposalEvent{
		Realm:    string(p.Governance),
		Proposal: string(p.Address),
		Owner:    string(p.ProposalOwner),
		State:    p.State.String(),
	}
	if p.State != governance.ProposalStateDraft &&
		p.State != governance.ProposalStateActive {
		evt.TotalVoteWeight = p.TotalVoteWeight
	}
	return evt
}
