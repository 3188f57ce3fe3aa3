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

package types_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/leapfrog/database/types"
)

func TestUint64ScanValue(t *testing.T) {
	testDefs := []struct {
		value    types.Uint64
		expected string
	}{
		{value: 123, expected: "123"},
		{value: 0, expected: "0"},
		// Above the signed 64-bit range
		{value: math.MaxUint64, expected: "18446744073709551615"},
	}
	for _, testDef := range testDefs {
		valueOut, err := testDef.value.Value()
		require.NoError(t, err)
		assert.Equal(t, testDef.expected, valueOut)

		var scanned types.Uint64
		require.NoError(t, scanned.Scan(valueOut))
		assert.Equal(t, testDef.value, scanned)

		var scannedBytes types.Uint64
		require.NoError(t, scannedBytes.Scan([]byte(testDef.expected)))
		assert.Equal(t, testDef.value, scannedBytes)
	}
}

func TestUint64ScanWrongType(t *testing.T) {
	var u types.Uint64
	require.Error(t, u.Scan(3.5))
	require.Error(t, u.Scan(int64(-1)))
	require.NoError(t, u.Scan(int64(5)))
	assert.Equal(t, types.Uint64(5), u)
	require.Error(t, u.Scan("not-a-number"))
}

func TestBlobKeys(t *testing.T) {
	assert.Equal(t, []byte("acproposal1"), types.AccountBlobKey("proposal1"))

	// A mint that is a prefix of another mint does not share balances
	assert.False(t, bytes.HasPrefix(
		types.LedgerBalanceBlobKey("mintA", "alice"),
		types.LedgerBalanceBlobKeyMintPrefix("mint"),
	))
	assert.True(t, bytes.HasPrefix(
		types.LedgerBalanceBlobKey("mint", "alice"),
		types.LedgerBalanceBlobKeyMintPrefix("mint"),
	))

	assert.Equal(t, uint64(42), types.BytesToUint64(types.Uint64ToBytes(42)))
	assert.Zero(t, types.BytesToUint64([]byte{1}))
}
