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
package plugin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/leapfrog/database/plugin"
)

func TestProcessEnvVars(t *testing.T) {
	var (
		host  string
		cache uint64
		gc    bool
	)
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeMetadata,
		Name:               "envtest",
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
		Options: []plugin.PluginOption{
			{Name: "host", Type: plugin.PluginOptionTypeString, CustomEnvVar: "ENVTEST_HOST", Dest: &host},
			{Name: "cache-size", Type: plugin.PluginOptionTypeUint, Dest: &cache},
			{Name: "gc", Type: plugin.PluginOptionTypeBool, Dest: &gc},
		},
	})
	assert.Equal(
		t,
		"LEAPFROG_DATABASE_METADATA_ENVTEST_CACHE_SIZE",
		plugin.EnvVarName(plugin.PluginTypeMetadata, "envtest", plugin.PluginOption{Name: "cache-size"}),
	)

	t.Setenv("ENVTEST_HOST", "db.local")
	t.Setenv("LEAPFROG_DATABASE_METADATA_ENVTEST_CACHE_SIZE", "1024")
	t.Setenv("LEAPFROG_DATABASE_METADATA_ENVTEST_GC", "true")
	require.NoError(t, plugin.ProcessEnvVars())
	assert.Equal(t, "db.local", host)
	assert.Equal(t, uint64(1024), cache)
	assert.True(t, gc)

	t.Setenv("LEAPFROG_DATABASE_METADATA_ENVTEST_GC", "maybe")
	require.Error(t, plugin.ProcessEnvVars())
}

func TestProcessConfig(t *testing.T) {
	var (
		dir   string
		cache uint64
	)
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeBlob,
		Name:               "cfgtest",
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
		Options: []plugin.PluginOption{
			{Name: "data-dir", Type: plugin.PluginOptionTypeString, Dest: &dir},
			{Name: "cache-size", Type: plugin.PluginOptionTypeUint, Dest: &cache},
		},
	})
	require.NoError(t, plugin.ProcessConfig(map[string]map[string]map[string]any{
		"blob": {
			"cfgtest": {"data-dir": "/var/lib/leapfrog", "cache-size": 64},
		},
	}))
	assert.Equal(t, "/var/lib/leapfrog", dir)
	assert.Equal(t, uint64(64), cache)

	require.Error(t, plugin.ProcessConfig(map[string]map[string]map[string]any{
		"archive": {"cfgtest": {"data-dir": "x"}},
	}))
}
