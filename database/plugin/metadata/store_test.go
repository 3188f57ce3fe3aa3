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
package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/leapfrog/database/plugin"
	"github.com/blinklabs-io/leapfrog/database/plugin/metadata"
	"github.com/blinklabs-io/leapfrog/database/plugin/metadata/mysql"
	"github.com/blinklabs-io/leapfrog/database/plugin/metadata/postgres"
	"github.com/blinklabs-io/leapfrog/database/plugin/metadata/sqlite"
)

func TestPluginsImplementMetadataStore(t *testing.T) {
	var _ metadata.MetadataStore = &sqlite.MetadataStoreSqlite{}
	var _ metadata.MetadataStore = &mysql.MetadataStoreMysql{}
	var _ metadata.MetadataStore = &postgres.MetadataStorePostgres{}
	var _ plugin.InstrumentedPlugin = &sqlite.MetadataStoreSqlite{}
	var _ plugin.InstrumentedPlugin = &mysql.MetadataStoreMysql{}
	var _ plugin.InstrumentedPlugin = &postgres.MetadataStorePostgres{}

	names := []string{}
	for _, entry := range plugin.GetPlugins(plugin.PluginTypeMetadata) {
		names = append(names, entry.Name)
	}
	assert.Subset(t, names, []string{"sqlite", "mysql", "postgres"})
}

func TestNewSqliteInMemory(t *testing.T) {
	store, err := metadata.New("sqlite", "", nil, nil)
	require.NoError(t, err)
	defer store.Close()
	realms, err := store.GetRealms(nil)
	require.NoError(t, err)
	assert.Empty(t, realms)
}

func TestNewUnknownPlugin(t *testing.T) {
	_, err := metadata.New("nope", "", nil, nil)
	require.Error(t, err)
}
