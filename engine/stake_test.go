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

package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/leapfrog/engine"
	"github.com/blinklabs-io/leapfrog/event"
	"github.com/blinklabs-io/leapfrog/governance"
)

func TestStakeThenUnstakeDuringCooldown(t *testing.T) {
	env := newTestEnv(t)
	env.setupRealm(t)
	ctx := context.Background()
	_, stakedCh := env.bus.Subscribe(event.TokensStakedEventType)
	vault := governance.VaultAddress(testRealm, testCommunity)

	rec := env.stake(t, testBob, 1_000)
	assert.Equal(t, governance.TokenOwnerRecordAddress(testRealm, testCommunity, testBob), rec.Address)
	assert.Equal(t, uint64(1_000), rec.GoverningTokenDepositAmount)
	assert.Equal(t, uint64(9_000), env.balance(t, testCommunity, testBob))
	// Alice staked 1000 during setup
	assert.Equal(t, uint64(2_000), env.balance(t, testCommunity, vault))

	select {
	case evt := <-stakedCh:
		data := evt.Data.(event.StakeEvent)
		assert.Equal(t, string(testBob), data.Owner)
		assert.Equal(t, uint64(1_000), data.Amount)
		assert.Equal(t, uint64(1_000), data.Deposit)
	case <-time.After(time.Second):
		t.Fatal("no staked event")
	}

	req := engine.StakeRequest{Signer: testBob, Realm: testRealm, Amount: 400}
	rec, err := env.engine.UnstakeTokens(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), rec.GoverningTokenDepositAmount)
	assert.Equal(t, testStart+uint64(engine.DefaultCooldownPeriod/time.Second), rec.EarliestUnstakingTime)
	assert.Equal(t, uint64(9_400), env.balance(t, testCommunity, testBob))

	// Staking again does not lift the cooldown
	env.stake(t, testBob, 500)
	req.Amount = 1
	_, err = env.engine.UnstakeTokens(ctx, req)
	require.ErrorIs(t, err, governance.ErrCooldownActive)
	assert.Equal(t, uint64(8_900), env.balance(t, testCommunity, testBob))

	env.clock.Advance(testDay)
	rec, err = env.engine.UnstakeTokens(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_099), rec.GoverningTokenDepositAmount)
	assert.Equal(t, uint64(8_901), env.balance(t, testCommunity, testBob))
}

func TestCooldownPeriodOption(t *testing.T) {
	env := newTestEnv(t, engine.WithCooldownPeriod(time.Hour))
	env.setupRealm(t)
	ctx := context.Background()
	rec, err := env.engine.UnstakeTokens(ctx, engine.StakeRequest{
		Signer: testAlice,
		Realm:  testRealm,
		Amount: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, testStart+3600, rec.EarliestUnstakingTime)
}

func TestStakeErrors(t *testing.T) {
	env := newTestEnv(t)
	env.setupRealm(t)
	ctx := context.Background()
	base := func(modify func(*engine.StakeRequest)) engine.StakeRequest {
		req := engine.StakeRequest{Signer: testBob, Realm: testRealm, Amount: 10}
		modify(&req)
		return req
	}
	tests := []struct {
		name    string
		modify  func(*engine.StakeRequest)
		wantErr error
	}{
		{"no signer", func(r *engine.StakeRequest) { r.Signer = "" }, governance.ErrMissingAuthorization},
		{"signer not owner", func(r *engine.StakeRequest) { r.Owner = testAlice }, governance.ErrMissingAuthorization},
		{"zero amount", func(r *engine.StakeRequest) { r.Amount = 0 }, governance.ErrInvalidAmount},
		{"unknown realm", func(r *engine.StakeRequest) { r.Realm = "missing" }, governance.ErrAccountNotFound},
		{"foreign mint", func(r *engine.StakeRequest) { r.Mint = "other" }, governance.ErrInvalidProposalConfig},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.engine.StakeTokens(ctx, base(tc.modify))
			require.ErrorIs(t, err, tc.wantErr)
			_, err = env.engine.UnstakeTokens(ctx, base(tc.modify))
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	// Nothing staked yet
	_, err := env.engine.UnstakeTokens(ctx, base(func(*engine.StakeRequest) {}))
	require.ErrorIs(t, err, governance.ErrInsufficientStake)

	env.stake(t, testBob, 10)
	_, err = env.engine.UnstakeTokens(ctx, base(func(r *engine.StakeRequest) { r.Amount = 11 }))
	require.ErrorIs(t, err, governance.ErrInsufficientStake)
}

func TestUnstakeLockedByVotes(t *testing.T) {
	env := newTestEnv(t)
	env.setupRealm(t)
	ctx := context.Background()
	p := env.createProposal(t)
	env.stake(t, testBob, 10_000)
	vote := env.vote(t, p.Address, testBob, governance.SingleChoiceBallot(0), 6_000)

	req := engine.StakeRequest{Signer: testBob, Realm: testRealm, Amount: 5_000}
	_, err := env.engine.UnstakeTokens(ctx, req)
	require.ErrorIs(t, err, governance.ErrUnrelinquishedVotesExist)

	req.Amount = 4_000
	rec, err := env.engine.UnstakeTokens(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, uint64(6_000), rec.GoverningTokenDepositAmount)

	// The lock outlives the voting window until the vote is relinquished
	env.clock.Advance(testDay)
	req.Amount = 1
	_, err = env.engine.UnstakeTokens(ctx, req)
	require.ErrorIs(t, err, governance.ErrUnrelinquishedVotesExist)

	_, err = env.engine.RelinquishVote(ctx, engine.RelinquishVoteRequest{
		Signer:     testBob,
		VoteRecord: vote.Address,
	})
	require.NoError(t, err)
	req.Amount = 6_000
	rec, err = env.engine.UnstakeTokens(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), rec.GoverningTokenDepositAmount)
	assert.Equal(t, uint64(10_000), env.balance(t, testCommunity, testBob))
}

func TestListTokenOwnerRecords(t *testing.T) {
	env := newTestEnv(t)
	env.setupRealm(t)
	ctx := context.Background()
	_, err := env.engine.StakeTokens(ctx, engine.StakeRequest{
		Signer: testAlice,
		Realm:  testRealm,
		Mint:   testCouncil,
		Amount: 2,
	})
	require.NoError(t, err)

	records, err := env.engine.ListTokenOwnerRecords(ctx, testAlice)
	require.NoError(t, err)
	require.Len(t, records, 2)
	deposits := map[governance.Address]uint64{}
	for _, r := range records {
		deposits[r.GoverningTokenMint] = r.GoverningTokenDepositAmount
	}
	assert.Equal(t, uint64(1_000), deposits[testCommunity])
	assert.Equal(t, uint64(2), deposits[testCouncil])

	records, err = env.engine.ListTokenOwnerRecords(ctx, testCarol)
	require.NoError(t, err)
	assert.Empty(t, records)
}
