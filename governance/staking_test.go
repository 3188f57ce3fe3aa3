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

package governance_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/leapfrog/governance"
)

const testCooldown = 86400

func TestStake(t *testing.T) {
	rec := governance.NewTokenOwnerRecord(testRealm, testCommunity, testAlice)
	require.ErrorIs(t, rec.Stake(0), governance.ErrInvalidAmount)
	require.NoError(t, rec.Stake(10))
	require.NoError(t, rec.Stake(5))
	assert.Equal(t, uint64(15), rec.GoverningTokenDepositAmount)
	assert.Zero(t, rec.EarliestUnstakingTime)

	require.ErrorIs(t, rec.Stake(math.MaxUint64), governance.ErrArithmeticOverflow)
	assert.Equal(t, uint64(15), rec.GoverningTokenDepositAmount)
}

func TestUnstake(t *testing.T) {
	rec := governance.NewTokenOwnerRecord(testRealm, testCommunity, testAlice)
	require.NoError(t, rec.Stake(100))

	require.ErrorIs(t, rec.Unstake(0, 0, 1000, testCooldown), governance.ErrInvalidAmount)
	require.ErrorIs(t, rec.Unstake(101, 0, 1000, testCooldown), governance.ErrInsufficientStake)

	require.NoError(t, rec.Unstake(40, 0, 1000, testCooldown))
	assert.Equal(t, uint64(60), rec.GoverningTokenDepositAmount)
	assert.Equal(t, uint64(1000+testCooldown), rec.EarliestUnstakingTime)

	// Cooldown restarts only on a successful unstake
	require.ErrorIs(t, rec.Unstake(10, 0, 1000+testCooldown-1, testCooldown), governance.ErrCooldownActive)
	assert.Equal(t, uint64(1000+testCooldown), rec.EarliestUnstakingTime)
	require.NoError(t, rec.Stake(1))
	assert.Equal(t, uint64(1000+testCooldown), rec.EarliestUnstakingTime)

	require.NoError(t, rec.Unstake(61, 0, 1000+testCooldown, testCooldown))
	assert.Zero(t, rec.GoverningTokenDepositAmount)
}

func TestUnstakeLockedByVotes(t *testing.T) {
	rec := governance.NewTokenOwnerRecord(testRealm, testCommunity, testAlice)
	require.NoError(t, rec.Stake(100))
	rec.UnrelinquishedVotesCount = 1

	err := rec.Unstake(50, 60, 1000, testCooldown)
	require.ErrorIs(t, err, governance.ErrUnrelinquishedVotesExist)
	assert.Equal(t, uint64(100), rec.GoverningTokenDepositAmount)

	// Unlocked surplus can still leave
	require.NoError(t, rec.Unstake(40, 60, 1000, testCooldown))
	assert.Equal(t, uint64(60), rec.GoverningTokenDepositAmount)
}

func TestUnstakeLockCheckedBeforeCooldown(t *testing.T) {
	rec := governance.NewTokenOwnerRecord(testRealm, testCommunity, testAlice)
	require.NoError(t, rec.Stake(100))
	rec.UnrelinquishedVotesCount = 1
	rec.EarliestUnstakingTime = 5000
	require.ErrorIs(t, rec.Unstake(100, 100, 1000, testCooldown), governance.ErrUnrelinquishedVotesExist)
}

func TestLockedStake(t *testing.T) {
	locked, err := governance.LockedStake([]*governance.VoteRecord{
		{StakeAmount: 10},
		{StakeAmount: 20, IsRelinquished: true},
		{StakeAmount: 5},
		nil,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(15), locked)

	_, err = governance.LockedStake([]*governance.VoteRecord{
		{StakeAmount: math.MaxUint64},
		{StakeAmount: 1},
	})
	require.ErrorIs(t, err, governance.ErrArithmeticOverflow)
}
