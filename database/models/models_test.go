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
package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blinklabs-io/leapfrog/database/models"
	"github.com/blinklabs-io/leapfrog/governance"
)

func TestRealmCouncilMint(t *testing.T) {
	realm := &governance.Realm{
		Address:                            "realm1",
		Name:                               "Test Realm",
		CommunityMint:                      "community",
		CouncilMint:                        governance.SomeAddress("council"),
		MinCommunityTokensToCreateProposal: 100,
		CommunityMintMaxVoteWeightSource:   governance.AbsoluteWeight(1_000_000),
		QuorumPercent:                      10,
	}
	m := models.RealmFromGovernance(realm)
	if assert.NotNil(t, m.CouncilMint) {
		assert.Equal(t, "council", *m.CouncilMint)
	}
	assert.Equal(t, realm, m.Governance())

	realm.CouncilMint = governance.NoAddress()
	m = models.RealmFromGovernance(realm)
	assert.Nil(t, m.CouncilMint)
	assert.False(t, m.Governance().CouncilMint.IsPresent())
}

func TestProposalConversionCopies(t *testing.T) {
	p := &governance.Proposal{
		Address:            "proposal1",
		Governance:         "realm1",
		GoverningTokenMint: "community",
		ProposalOwner:      "alice",
		Name:               "Fund the treasury",
		CreatedAt:          1_700_000_000,
		State:              governance.ProposalStateActive,
		VoteType:           governance.MultiChoice(2),
		Options:            []string{"A", "B", "C"},
		VotingStartsAt:     1_700_000_000,
		VotingEndsAt:       1_700_259_200,
		VoteResults:        []uint64{10, 0, 5},
		TotalVoteWeight:    15,
		Action:             []byte("transfer"),
	}
	m := models.ProposalFromGovernance(p)
	assert.Equal(t, uint64(1_700_000_000), m.SubmittedAt)
	assert.Equal(t, p, m.Governance())

	// The model must not alias the tally of the source proposal
	m.VoteResults[0] = 99
	assert.Equal(t, uint64(10), p.VoteResults[0])
}

func TestVoteRecordBallot(t *testing.T) {
	v := &governance.VoteRecord{
		Address:             "vote1",
		Proposal:            "proposal1",
		Realm:               "realm1",
		GoverningTokenMint:  "community",
		GoverningTokenOwner: "alice",
		Vote: governance.WeightedBallot(
			governance.WeightedChoice{OptionIndex: 0, Weight: 60},
			governance.WeightedChoice{OptionIndex: 1, Weight: 40},
		),
		StakeAmount: 100,
		VoteWeight:  10,
		CastAt:      1_700_000_060,
	}
	assert.Equal(t, v, models.VoteRecordFromGovernance(v).Governance())
}

func TestTokenOwnerRecordConversion(t *testing.T) {
	r := governance.NewTokenOwnerRecord("realm1", "community", "alice")
	r.GoverningTokenDepositAmount = 500
	r.UnrelinquishedVotesCount = 2
	r.EarliestUnstakingTime = 1_700_086_400
	m := models.TokenOwnerRecordFromGovernance(r)
	assert.Equal(t, "alice", m.GoverningTokenOwner)
	assert.Equal(t, r, m.Governance())
}
