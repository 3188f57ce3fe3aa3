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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/leapfrog/governance"
)

// quadraticScenario builds a quadratic realm whose quorum threshold is 100
// (10% of a 1000 token absolute max vote weight)
func quadraticScenario(t *testing.T) (*governance.Realm, *governance.Proposal, *governance.TokenOwnerRecord) {
	t.Helper()
	realm := newTestRealm(t, func(p *governance.RealmParams) {
		p.UseQuadraticVoting = true
		p.CommunityMintMaxVoteWeightSource = governance.AbsoluteWeight(1000)
		p.QuorumPercent = 10
	})
	p := newTestProposal(t, realm)
	voter := governance.NewTokenOwnerRecord(testRealm, testCommunity, testBob)
	require.NoError(t, voter.Stake(10000))
	return realm, p, voter
}

func TestQuadraticVoteApproves(t *testing.T) {
	realm, p, voter := quadraticScenario(t)
	rec, err := governance.CastVote(realm, p, voter, castParams(governance.SingleChoiceBallot(0), 10000))
	require.NoError(t, err)
	assert.Equal(t, uint64(100), rec.VoteWeight)
	assert.Equal(t, []uint64{100, 0}, p.VoteResults)

	changed, err := p.Finalize(realm, 0, p.VotingEndsAt)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, governance.ProposalStateApproved, p.State)
}

func TestNoVotesExpires(t *testing.T) {
	realm, p, _ := quadraticScenario(t)
	changed, err := p.Finalize(realm, 0, p.VotingEndsAt)
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, governance.ProposalStateExpired, p.State)
}

func TestStakeThenUnstakeDuringCooldown(t *testing.T) {
	rec := governance.NewTokenOwnerRecord(testRealm, testCommunity, testBob)
	require.NoError(t, rec.Stake(1000))
	require.NoError(t, rec.Unstake(1, 0, testNow, testCooldown))
	require.NoError(t, rec.Stake(500))
	err := rec.Unstake(1, 0, testNow+1, testCooldown)
	require.ErrorIs(t, err, governance.ErrCooldownActive)
	assert.Equal(t, uint64(1499), rec.GoverningTokenDepositAmount)
}

func TestExecuteTwice(t *testing.T) {
	realm, p, voter := quadraticScenario(t)
	_, err := governance.CastVote(realm, p, voter, castParams(governance.SingleChoiceBallot(0), 10000))
	require.NoError(t, err)
	_, err = p.Finalize(realm, 0, p.VotingEndsAt)
	require.NoError(t, err)

	d := &recordingDispatcher{}
	require.NoError(t, governance.ExecuteProposal(context.Background(), p, d))
	assert.Equal(t, governance.ProposalStateExecuted, p.State)
	require.ErrorIs(t, governance.ExecuteProposal(context.Background(), p, d), governance.ErrAlreadyExecuted)
	require.Len(t, d.calls, 1)
	assert.Equal(t, []byte("transfer"), d.calls[0])
}
