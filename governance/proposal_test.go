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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/leapfrog/governance"
)

const testNow uint64 = 1_700_000_000

func stakedRecord(
	t *testing.T,
	mint, owner governance.Address,
	amount uint64,
) *governance.TokenOwnerRecord {
	t.Helper()
	rec := governance.NewTokenOwnerRecord(testRealm, mint, owner)
	if amount > 0 {
		require.NoError(t, rec.Stake(amount))
	}
	return rec
}

func testProposalParams() governance.ProposalParams {
	return governance.ProposalParams{
		Address:          "proposal1",
		ProposalOwner:    testAlice,
		Name:             "Fund the treasury",
		DescriptionLink:  "https://example.com/p1",
		VoteType:         governance.SingleChoice(),
		Options:          []string{"Yes", "No"},
		VotingPeriodDays: 3,
		Action:           []byte("transfer"),
		AutoActivate:     true,
	}
}

func newTestProposal(
	t *testing.T,
	realm *governance.Realm,
	mutate ...func(*governance.ProposalParams),
) *governance.Proposal {
	t.Helper()
	params := testProposalParams()
	for _, m := range mutate {
		m(&params)
	}
	mint := params.GoverningTokenMint
	if mint == "" {
		mint = realm.CommunityMint
	}
	creator := stakedRecord(t, mint, params.ProposalOwner, 1000)
	p, err := governance.NewProposal(realm, creator, params, testNow)
	require.NoError(t, err)
	return p
}

func TestNewProposal(t *testing.T) {
	realm := newTestRealm(t)
	p := newTestProposal(t, realm)
	assert.Equal(t, governance.ProposalStateActive, p.State)
	assert.Equal(t, testRealm, p.Governance)
	assert.Equal(t, testCommunity, p.GoverningTokenMint)
	assert.Equal(t, testNow, p.CreatedAt)
	assert.Equal(t, testNow, p.VotingStartsAt)
	assert.Equal(t, testNow+3*governance.SecondsPerDay, p.VotingEndsAt)
	assert.Equal(t, []uint64{0, 0}, p.VoteResults)
	assert.Zero(t, p.TotalVoteWeight)
}

func TestNewProposalDraft(t *testing.T) {
	realm := newTestRealm(t)
	p := newTestProposal(t, realm, func(pp *governance.ProposalParams) {
		pp.AutoActivate = false
	})
	assert.Equal(t, governance.ProposalStateDraft, p.State)
	assert.False(t, p.VotingOpen(testNow))

	require.NoError(t, p.Activate(testNow+10))
	assert.Equal(t, governance.ProposalStateActive, p.State)
	require.ErrorIs(t, p.Activate(testNow+10), governance.ErrInvalidStateTransition)
}

func TestActivateAfterWindow(t *testing.T) {
	realm := newTestRealm(t)
	p := newTestProposal(t, realm, func(pp *governance.ProposalParams) {
		pp.AutoActivate = false
	})
	require.ErrorIs(t, p.Activate(p.VotingEndsAt), governance.ErrInvalidStateTransition)
	assert.Equal(t, governance.ProposalStateDraft, p.State)
}

func TestNewProposalValidation(t *testing.T) {
	realm := newTestRealm(t)
	testDefs := []struct {
		name    string
		mutate  func(*governance.ProposalParams)
		wantErr error
	}{
		{"zero voting period", func(p *governance.ProposalParams) { p.VotingPeriodDays = 0 }, governance.ErrInvalidProposalConfig},
		{"empty name", func(p *governance.ProposalParams) { p.Name = "" }, governance.ErrInvalidProposalConfig},
		{"no options", func(p *governance.ProposalParams) { p.Options = nil }, governance.ErrInvalidProposalConfig},
		{"empty option", func(p *governance.ProposalParams) { p.Options = []string{"Yes", ""} }, governance.ErrInvalidProposalConfig},
		{"too many options", func(p *governance.ProposalParams) {
			p.Options = make([]string, governance.MaxOptions+1)
			for i := range p.Options {
				p.Options[i] = "opt"
			}
		}, governance.ErrInvalidProposalConfig},
		{"multi choice zero max", func(p *governance.ProposalParams) { p.VoteType = governance.MultiChoice(0) }, governance.ErrInvalidProposalConfig},
		{"multi choice max above options", func(p *governance.ProposalParams) { p.VoteType = governance.MultiChoice(3) }, governance.ErrInvalidProposalConfig},
		{"denial with one option", func(p *governance.ProposalParams) {
			p.Options = []string{"Deny"}
			p.UseDenialQuorum = true
		}, governance.ErrInvalidProposalConfig},
		{"foreign mint", func(p *governance.ProposalParams) { p.GoverningTokenMint = "other-mint" }, governance.ErrInvalidProposalConfig},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			params := testProposalParams()
			testDef.mutate(&params)
			creator := stakedRecord(t, testCommunity, testAlice, 1000)
			_, err := governance.NewProposal(realm, creator, params, testNow)
			require.ErrorIs(t, err, testDef.wantErr)
		})
	}
}

func TestNewProposalCreatorStake(t *testing.T) {
	realm := newTestRealm(t)
	params := testProposalParams()

	_, err := governance.NewProposal(realm, nil, params, testNow)
	require.ErrorIs(t, err, governance.ErrInsufficientStake)

	creator := stakedRecord(t, testCommunity, testAlice, 99)
	_, err = governance.NewProposal(realm, creator, params, testNow)
	require.ErrorIs(t, err, governance.ErrInsufficientStake)

	creator = stakedRecord(t, testCommunity, testAlice, 100)
	_, err = governance.NewProposal(realm, creator, params, testNow)
	require.NoError(t, err)

	// Another owner's record does not count
	creator = stakedRecord(t, testCommunity, testBob, 1000)
	_, err = governance.NewProposal(realm, creator, params, testNow)
	require.ErrorIs(t, err, governance.ErrInsufficientStake)
}

func TestNewProposalCouncil(t *testing.T) {
	realm := newTestRealm(t)
	params := testProposalParams()
	params.GoverningTokenMint = testCouncil

	creator := governance.NewTokenOwnerRecord(testRealm, testCouncil, testAlice)
	_, err := governance.NewProposal(realm, creator, params, testNow)
	require.ErrorIs(t, err, governance.ErrInsufficientStake)

	require.NoError(t, creator.Stake(1))
	p, err := governance.NewProposal(realm, creator, params, testNow)
	require.NoError(t, err)
	assert.Equal(t, testCouncil, p.GoverningTokenMint)
}

func TestProposalStateStrings(t *testing.T) {
	for st := governance.ProposalStateDraft; st <= governance.ProposalStateExecuted; st++ {
		parsed, err := governance.ParseProposalState(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, parsed)
	}
	_, err := governance.ParseProposalState("Bogus")
	require.Error(t, err)
	assert.True(t, governance.ProposalStateExpired.IsFinal())
	assert.False(t, governance.ProposalStateApproved.IsFinal())
}

func TestFinalizeNotDue(t *testing.T) {
	realm := newTestRealm(t)
	p := newTestProposal(t, realm)
	changed, err := p.Finalize(realm, 1000, p.VotingEndsAt-1)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, governance.ProposalStateActive, p.State)
}

func TestFinalizeOnlyFromActive(t *testing.T) {
	realm := newTestRealm(t)
	p := newTestProposal(t, realm, func(pp *governance.ProposalParams) {
		pp.AutoActivate = false
	})
	// A Draft proposal never skips Active
	changed, err := p.Finalize(realm, 1000, p.VotingEndsAt+1)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, governance.ProposalStateDraft, p.State)
}
