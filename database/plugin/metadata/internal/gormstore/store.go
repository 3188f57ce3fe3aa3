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
// Package gormstore holds the gorm queries shared by the SQL metadata
// plugins. Each plugin opens its own dialect and embeds a Store.
package gormstore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/blinklabs-io/leapfrog/database/models"
	"github.com/blinklabs-io/leapfrog/database/types"
)

var ErrStoreNotOpen = errors.New("metadata store not open")

type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open attaches a connected gorm handle, installs tracing and applies
// migrations for all models. Connection pool stats are exported under the
// given name when promRegistry is set.
func (s *Store) Open(
	db *gorm.DB,
	name string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) error {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s.db = db
	s.logger = logger
	// Configure tracing for GORM
	if err := s.db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return err
	}
	for _, model := range models.MigrateModels {
		s.logger.Debug(
			fmt.Sprintf("creating table: %#v", model),
			"component", "database",
		)
		if err := s.db.AutoMigrate(model); err != nil {
			return err
		}
	}
	if promRegistry != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		if err := promRegistry.Register(collectors.NewDBStatsCollector(sqlDB, name)); err != nil {
			s.logger.Warn(
				"failed to register metadata store metrics",
				"component", "database",
				"error", err,
			)
		}
	}
	return nil
}

// DB returns the database handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Logger() *slog.Logger {
	return s.logger
}

// Close closes the underlying connection pool. It is a no-op when the store
// was never opened.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDB.Close()
}

// Transaction creates a gorm transaction
func (s *Store) Transaction() types.Txn {
	if s.db == nil {
		return newFailedTxn(ErrStoreNotOpen)
	}
	db := s.db.Begin()
	if db.Error != nil {
		s.logger.Error(
			"failed to begin transaction",
			"component", "database",
			"error", db.Error,
		)
		return newFailedTxn(db.Error)
	}
	return newTxn(db)
}

// resolveDB returns the gorm handle for txn, or the base handle when txn is
// nil
func (s *Store) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if s.db == nil {
		return nil, ErrStoreNotOpen
	}
	if txn == nil {
		return s.db, nil
	}
	gTxn, ok := txn.(*Txn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if gTxn.beginErr != nil {
		return nil, gTxn.beginErr
	}
	if gTxn.finished {
		return nil, errors.New("transaction already finished")
	}
	return gTxn.db, nil
}
