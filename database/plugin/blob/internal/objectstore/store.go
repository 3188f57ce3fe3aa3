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

// Package objectstore implements the blob store contract on top of a plain
// object bucket. Writes are buffered per transaction and flushed on commit.
// Commits are serialized within the process, and a commit whose reads were
// overwritten by an earlier commit fails with types.ErrBlobTxnConflict.
// Flushing several objects is not atomic against a crash.
package objectstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/leapfrog/database/types"
)

const DefaultTimeout = 60 * time.Second

// ErrObjectNotFound is returned by a Backend for a missing object
var ErrObjectNotFound = errors.New("object not found")

// Backend is the object API of a bucket. Names passed in are already
// encoded and sort in the same order as the blob keys they represent.
type Backend interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

type Store struct {
	backend      Backend
	logger       *slog.Logger
	promRegistry prometheus.Registerer
	metrics      *storeMetrics
	versions     map[string]uint64
	timeout      time.Duration
	mu           sync.Mutex
}

func New(backend Backend) *Store {
	return &Store{
		backend:  backend,
		timeout:  DefaultTimeout,
		versions: make(map[string]uint64),
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger before the store is started
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetPromRegistry sets the metrics registry before the store is started
func (s *Store) SetPromRegistry(registry prometheus.Registerer) {
	s.promRegistry = registry
}

// SetTimeout bounds each backend call
func (s *Store) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		s.timeout = timeout
	}
}

func (s *Store) Logger() *slog.Logger {
	return s.logger
}

// Init registers metrics. It is called once the backend is ready.
func (s *Store) Init() {
	if s.promRegistry != nil && s.metrics == nil {
		s.metrics = newStoreMetrics(s.promRegistry)
	}
}

// Close is a no-op. Backends release their own clients.
func (s *Store) Close() error {
	return nil
}

func (s *Store) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// EncodeKey maps a blob key to an object name. Hex keeps byte order and
// prefix relations intact.
func EncodeKey(key []byte) string {
	return hex.EncodeToString(key)
}

func DecodeKey(name string) ([]byte, error) {
	return hex.DecodeString(name)
}

func (s *Store) version(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[key]
}

type txn struct {
	store     *Store
	reads     map[string]uint64
	writes    map[string][]byte
	readWrite bool
	finished  bool
}

// NewTransaction starts a transaction. Nothing reaches the bucket before
// Commit.
func (s *Store) NewTransaction(readWrite bool) types.Txn {
	return &txn{
		store:     s,
		readWrite: readWrite,
		reads:     make(map[string]uint64),
		writes:    make(map[string][]byte),
	}
}

func (s *Store) validateTxn(t types.Txn) (*txn, error) {
	if t == nil {
		return nil, types.ErrNilTxn
	}
	ot, ok := t.(*txn)
	if !ok || ot.store != s {
		return nil, types.ErrTxnWrongType
	}
	if ot.finished {
		return nil, errors.New("transaction already finished")
	}
	return ot, nil
}

func (t *txn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if len(t.writes) == 0 {
		return nil
	}
	return t.store.commit(t)
}

func (t *txn) Rollback() error {
	t.finished = true
	return nil
}

func (s *Store) commit(t *txn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, ver := range t.reads {
		if s.versions[key] != ver {
			s.metrics.conflict()
			return fmt.Errorf("%w: key %x changed", types.ErrBlobTxnConflict, key)
		}
	}
	keys := make([]string, 0, len(t.writes))
	for key := range t.writes {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	ctx, cancel := s.opContext()
	defer cancel()
	for _, key := range keys {
		name := EncodeKey([]byte(key))
		val := t.writes[key]
		var err error
		if val == nil {
			s.metrics.op("delete", 0)
			err = s.backend.Delete(ctx, name)
			if errors.Is(err, ErrObjectNotFound) {
				err = nil
			}
		} else {
			s.metrics.op("put", len(val))
			err = s.backend.Put(ctx, name, val)
		}
		if err != nil {
			s.logger.Error(
				"object store commit failed",
				"component", "database",
				"object", name,
				"error", err,
			)
			return fmt.Errorf("commit object %s: %w", name, err)
		}
		s.versions[key]++
	}
	return nil
}

// Get reads a key, seeing writes pending in the transaction
func (s *Store) Get(t types.Txn, key []byte) ([]byte, error) {
	ot, err := s.validateTxn(t)
	if err != nil {
		return nil, err
	}
	k := string(key)
	if val, ok := ot.writes[k]; ok {
		if val == nil {
			return nil, types.ErrBlobKeyNotFound
		}
		return slices.Clone(val), nil
	}
	if _, ok := ot.reads[k]; !ok {
		ot.reads[k] = s.version(k)
	}
	ctx, cancel := s.opContext()
	defer cancel()
	s.metrics.op("get", 0)
	data, err := s.backend.Get(ctx, EncodeKey(key))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, types.ErrBlobKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Store) Set(t types.Txn, key, val []byte) error {
	ot, err := s.validateTxn(t)
	if err != nil {
		return err
	}
	if !ot.readWrite {
		return errors.New("transaction is read-only")
	}
	if val == nil {
		val = []byte{}
	}
	ot.writes[string(key)] = slices.Clone(val)
	return nil
}

func (s *Store) Delete(t types.Txn, key []byte) error {
	ot, err := s.validateTxn(t)
	if err != nil {
		return err
	}
	if !ot.readWrite {
		return errors.New("transaction is read-only")
	}
	ot.writes[string(key)] = nil
	return nil
}

// GetCommitTimestamp returns types.ErrBlobKeyNotFound on a fresh bucket
func (s *Store) GetCommitTimestamp() (int64, error) {
	t := s.NewTransaction(false)
	defer t.Rollback() //nolint:errcheck
	val, err := s.Get(t, []byte(types.CommitTimestampBlobKey))
	if err != nil {
		return 0, err
	}
	return int64(types.BytesToUint64(val)), nil //nolint:gosec
}

func (s *Store) SetCommitTimestamp(timestamp int64, t types.Txn) error {
	if t == nil {
		return types.ErrNilTxn
	}
	return s.Set(
		t,
		[]byte(types.CommitTimestampBlobKey),
		types.Uint64ToBytes(uint64(timestamp)), //nolint:gosec
	)
}
