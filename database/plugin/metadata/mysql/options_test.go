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
package mysql

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m, err := NewWithOptions(
		WithHost("db.local"),
		WithPort(3307),
		WithUser("governor"),
		WithPassword("secret"),
		WithDatabase("realms"),
		WithSSLMode("skip-verify"),
		WithTimeZone("Europe/Berlin"),
		WithDSN("user:pass@tcp(host:3306)/realms"),
		WithLogger(logger),
		WithPromRegistry(reg),
	)
	require.NoError(t, err)
	assert.Equal(t, "db.local", m.host)
	assert.Equal(t, uint(3307), m.port)
	assert.Equal(t, "governor", m.user)
	assert.Equal(t, "secret", m.password)
	assert.Equal(t, "realms", m.database)
	assert.Equal(t, "skip-verify", m.sslMode)
	assert.Equal(t, "Europe/Berlin", m.timeZone)
	assert.Equal(t, "user:pass@tcp(host:3306)/realms", m.dsn)
	assert.Same(t, logger, m.logger)
	assert.Equal(t, reg, m.promRegistry)
}

func TestDefaults(t *testing.T) {
	m, err := NewWithOptions()
	require.NoError(t, err)
	assert.Equal(t, "localhost", m.host)
	assert.Equal(t, uint(3306), m.port)
	assert.Equal(t, "root", m.user)
	assert.Equal(t, "leapfrog", m.database)
	assert.Equal(t, "UTC", m.timeZone)
	assert.NotNil(t, m.logger)
	// Closing a store that was never started is a no-op
	require.NoError(t, m.Close())
}

func TestDSNHelpers(t *testing.T) {
	db, ok := parseMysqlDatabaseFromDSN("user:pass@tcp(host:3306)/realms?parseTime=true")
	assert.True(t, ok)
	assert.Equal(t, "realms", db)

	_, ok = parseMysqlDatabaseFromDSN("user:pass@tcp(host:3306)/")
	assert.False(t, ok)

	admin, ok := stripDatabaseFromDSN("user:pass@tcp(host:3306)/realms?parseTime=true")
	assert.True(t, ok)
	assert.Equal(t, "user:pass@tcp(host:3306)/?parseTime=true", admin)

	admin, ok = stripDatabaseFromDSN("user:pass@tcp(host:3306)/realms")
	assert.True(t, ok)
	assert.Equal(t, "user:pass@tcp(host:3306)/", admin)

	_, ok = stripDatabaseFromDSN("no-slash")
	assert.False(t, ok)
}
