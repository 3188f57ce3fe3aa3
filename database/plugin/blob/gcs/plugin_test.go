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

package gcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/leapfrog/database/plugin"
	"github.com/blinklabs-io/leapfrog/database/types"
)

func TestCredentialValidation(t *testing.T) {
	tempDir := t.TempDir()
	existing := filepath.Join(tempDir, "credentials.json")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0o600))

	testDefs := []struct {
		name            string
		credentialsFile string
		errorMessage    string
	}{
		{name: "valid credentials file", credentialsFile: existing},
		{
			name:            "nonexistent credentials file",
			credentialsFile: filepath.Join(tempDir, "nonexistent-credentials.json"),
			errorMessage:    "GCS credentials file does not exist",
		},
		{name: "empty credentials file path"},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			err := validateCredentials(testDef.credentialsFile)
			if testDef.errorMessage != "" {
				require.ErrorContains(t, err, testDef.errorMessage)
				return
			}
			require.NoError(t, err)
		})
	}

	// Start fails before dialing when the key file is missing
	d := NewWithOptions(
		WithBucket("bucket"),
		WithCredentialsFile(filepath.Join(tempDir, "missing.json")),
	)
	require.ErrorContains(t, d.Start(), "does not exist")
}

func TestNew(t *testing.T) {
	d, err := New("gcs://archive", WithCredentialsFile("/tmp/key.json"))
	require.NoError(t, err)
	assert.Equal(t, "archive", d.backend.bucketName)
	assert.Equal(t, "/tmp/key.json", d.backend.credentialsFile)

	_, err = New("gcs://")
	require.Error(t, err)
	_, err = New(".leapfrog")
	require.Error(t, err)
}

func TestUnstartedStore(t *testing.T) {
	d := NewWithOptions()
	require.Error(t, d.Start())
	require.NoError(t, d.Close())

	ctx := context.Background()
	_, err := d.backend.Get(ctx, "k")
	require.ErrorIs(t, err, types.ErrBlobStoreUnavailable)
	require.ErrorIs(t, d.backend.Put(ctx, "k", nil), types.ErrBlobStoreUnavailable)
	require.ErrorIs(t, d.backend.Delete(ctx, "k"), types.ErrBlobStoreUnavailable)
	_, err = d.backend.List(ctx, "")
	require.ErrorIs(t, err, types.ErrBlobStoreUnavailable)

	txn := d.NewTransaction(false)
	_, err = d.Get(txn, []byte("k"))
	require.ErrorIs(t, err, types.ErrBlobStoreUnavailable)
}

func TestNewFromCmdlineOptions(t *testing.T) {
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, "gcs", "bucket", "governance"))
	t.Cleanup(func() {
		_ = plugin.SetPluginOption(plugin.PluginTypeBlob, "gcs", "bucket", "")
	})
	d, ok := NewFromCmdlineOptions().(*BlobStoreGCS)
	require.True(t, ok)
	assert.Equal(t, "governance", d.backend.bucketName)
}
