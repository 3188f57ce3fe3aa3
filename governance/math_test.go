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

package governance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckedAdd(t *testing.T) {
	sum, err := checkedAdd(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), sum)

	_, err = checkedAdd(math.MaxUint64, 1)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestCheckedSub(t *testing.T) {
	diff, err := checkedSub(5, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), diff)

	_, err = checkedSub(0, 1)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestMulDiv(t *testing.T) {
	testDefs := []struct {
		a, b, d  uint64
		expected uint64
		wantErr  bool
	}{
		{a: 100, b: 3, d: 10, expected: 30},
		{a: 7, b: 1, d: 2, expected: 3},
		// 128-bit intermediate
		{a: math.MaxUint64, b: FractionDenominator, d: FractionDenominator, expected: math.MaxUint64},
		{a: math.MaxUint64, b: 2, d: 1, wantErr: true},
		{a: 1, b: 1, d: 0, wantErr: true},
	}
	for _, testDef := range testDefs {
		got, err := mulDiv(testDef.a, testDef.b, testDef.d)
		if testDef.wantErr {
			require.ErrorIs(t, err, ErrArithmeticOverflow)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, testDef.expected, got, "%d*%d/%d", testDef.a, testDef.b, testDef.d)
	}
}

func TestISqrt(t *testing.T) {
	testDefs := map[uint64]uint64{
		0:                    0,
		1:                    1,
		2:                    1,
		3:                    1,
		4:                    2,
		99:                   9,
		100:                  10,
		10000:                100,
		10001:                100,
		1<<52 + 1:            1 << 26,
		math.MaxUint32 * 2:   92681,
		math.MaxUint64:       math.MaxUint32,
		math.MaxUint64 - 100: math.MaxUint32,
	}
	for n, expected := range testDefs {
		assert.Equal(t, expected, ISqrt(n), "isqrt(%d)", n)
	}
}

func TestISqrtMonotonic(t *testing.T) {
	var prev uint64
	for n := range uint64(5000) {
		r := ISqrt(n)
		require.GreaterOrEqual(t, r, prev)
		require.LessOrEqual(t, r*r, n)
		require.Greater(t, (r+1)*(r+1), n)
		prev = r
	}
}
