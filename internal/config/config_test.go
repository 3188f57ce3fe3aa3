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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/leapfrog/database/plugin"
	"github.com/blinklabs-io/leapfrog/tokenledger"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leapfrog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Same(t, cfg, GetConfig())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
databasePath: /var/lib/leapfrog
apiPort: 9000
cooldownPeriod: 1h
defaultQuorumPercent: 25
autoActivate: false
corsOrigins:
  - https://app.example.org
genesis:
  - mint: community
    account: alice
    amount: 1000
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	expected := defaultConfig()
	expected.DatabasePath = "/var/lib/leapfrog"
	expected.ApiPort = 9000
	expected.CooldownPeriod = time.Hour
	expected.DefaultQuorumPercent = 25
	expected.AutoActivate = false
	expected.CorsOrigins = []string{"https://app.example.org"}
	expected.Genesis = []tokenledger.Allocation{
		{Mint: "community", Account: "alice", Amount: 1000},
	}
	assert.Equal(t, expected, cfg)
}

func TestLoadConfigSection(t *testing.T) {
	var dsn string
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeMetadata,
		Name:               "cfgsection",
		NewFromOptionsFunc: func() plugin.Plugin { return plugin.NewErrorPlugin(nil) },
		Options: []plugin.PluginOption{
			{Name: "dsn", Type: plugin.PluginOptionTypeString, Dest: &dsn},
		},
	})
	path := writeConfig(t, `
config:
  metricsPort: 9100
  tracing: true
  tracingExporter: stdout
database:
  metadata:
    plugin: cfgsection
    cfgsection:
      dsn: "host=db user=gov"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint(9100), cfg.MetricsPort)
	assert.True(t, cfg.Tracing)
	assert.Equal(t, TracingExporterStdout, cfg.TracingExporter)
	assert.Equal(t, "cfgsection", cfg.MetadataPlugin)
	assert.Equal(t, DefaultBlobPlugin, cfg.BlobPlugin)
	assert.Equal(t, "host=db user=gov", dsn)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "apiPort: 9000\nredisUrl: redis://file:6379/0\n")
	t.Setenv("LEAPFROG_API_PORT", "9001")
	t.Setenv("LEAPFROG_FINALIZE_INTERVAL", "5s")
	t.Setenv("LEAPFROG_DATABASE_BLOB_PLUGIN", "memory")
	t.Setenv("LEAPFROG_CORS_ORIGINS", "https://a.example,https://b.example")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint(9001), cfg.ApiPort)
	assert.Equal(t, 5*time.Second, cfg.FinalizeInterval)
	assert.Equal(t, "memory", cfg.BlobPlugin)
	assert.Equal(t, "redis://file:6379/0", cfg.RedisUrl)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsOrigins)
}

func TestLoadInvalid(t *testing.T) {
	testDefs := []struct {
		name    string
		content string
	}{
		{name: "quorum zero", content: "defaultQuorumPercent: 0\n"},
		{name: "quorum above 100", content: "defaultQuorumPercent: 101\n"},
		{name: "negative cooldown", content: "cooldownPeriod: -1h\n"},
		{name: "unknown exporter", content: "tracingExporter: zipkin\n"},
		{name: "bad duration", content: "finalizeInterval: soon\n"},
		{name: "plugin option not a map", content: "database:\n  blob:\n    badger: 1\n"},
	}
	for _, tc := range testDefs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.content))
			require.Error(t, err)
		})
	}
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	cfg := defaultConfig()
	ctx := WithContext(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}
