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

package api

import (
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/leapfrog/database"
	"github.com/blinklabs-io/leapfrog/governance"
)

// MaxVoteWeightSource is {"kind": "SupplyFraction"|"Absolute", "value": n}
type MaxVoteWeightSource struct {
	Kind  string `json:"kind"`
	Value uint64 `json:"value"`
}

func (s MaxVoteWeightSource) toGovernance() (governance.MaxVoteWeightSource, error) {
	switch s.Kind {
	case governance.MaxVoteWeightSupplyFraction.String(), "":
		if s.Kind == "" && s.Value == 0 {
			return governance.FullSupply(), nil
		}
		return governance.SupplyFraction(s.Value), nil
	case governance.MaxVoteWeightAbsolute.String():
		return governance.AbsoluteWeight(s.Value), nil
	default:
		return governance.MaxVoteWeightSource{}, fmt.Errorf(
			"%w: unknown max vote weight source %q",
			governance.ErrInvalidProposalConfig,
			s.Kind,
		)
	}
}

type Realm struct {
	Address                            string              `json:"address"`
	Name                               string              `json:"name"`
	CommunityMint                      string              `json:"communityMint"`
	CouncilMint                        string              `json:"councilMint,omitempty"`
	MinCommunityTokensToCreateProposal uint64              `json:"minCommunityTokensToCreateProposal"`
	CommunityMintMaxVoteWeightSource   MaxVoteWeightSource `json:"communityMintMaxVoteWeightSource"`
	UseQuadraticVoting                 bool                `json:"useQuadraticVoting"`
	QuorumPercent                      uint8               `json:"quorumPercent"`
}

func (r Realm) params() (governance.RealmParams, error) {
	source, err := r.CommunityMintMaxVoteWeightSource.toGovernance()
	if err != nil {
		return governance.RealmParams{}, err
	}
	council := governance.NoAddress()
	if r.CouncilMint != "" {
		council = governance.SomeAddress(governance.Address(r.CouncilMint))
	}
	return governance.RealmParams{
		Address:                            governance.Address(r.Address),
		Name:                               r.Name,
		CommunityMint:                      governance.Address(r.CommunityMint),
		CouncilMint:                        council,
		MinCommunityTokensToCreateProposal: r.MinCommunityTokensToCreateProposal,
		CommunityMintMaxVoteWeightSource:   source,
		UseQuadraticVoting:                 r.UseQuadraticVoting,
		QuorumPercent:                      r.QuorumPercent,
	}, nil
}

func RealmFromGovernance(r *governance.Realm) Realm {
	ret := Realm{
		Address:                            string(r.Address),
		Name:                               r.Name,
		CommunityMint:                      string(r.CommunityMint),
		MinCommunityTokensToCreateProposal: r.MinCommunityTokensToCreateProposal,
		CommunityMintMaxVoteWeightSource: MaxVoteWeightSource{
			Kind:  r.CommunityMintMaxVoteWeightSource.Kind.String(),
			Value: r.CommunityMintMaxVoteWeightSource.Value,
		},
		UseQuadraticVoting: r.UseQuadraticVoting,
		QuorumPercent:      r.QuorumPercent,
	}
	if council, ok := r.CouncilMint.Get(); ok {
		ret.CouncilMint = string(council)
	}
	return ret
}

// VoteType is {"kind": "SingleChoice"|"MultiChoice"|"Weighted"}, with
// maxVoterOptions for MultiChoice
type VoteType struct {
	Kind            string `json:"kind"`
	MaxVoterOptions uint8  `json:"maxVoterOptions,omitempty"`
}

func (v VoteType) toGovernance() (governance.VoteType, error) {
	if v.Kind == "" {
		return governance.SingleChoice(), nil
	}
	kind, err := governance.ParseVoteTypeKind(v.Kind)
	if err != nil {
		return governance.VoteType{}, fmt.Errorf("%w: %w", governance.ErrInvalidProposalConfig, err)
	}
	return governance.VoteType{Kind: kind, MaxVoterOptions: v.MaxVoterOptions}, nil
}

// CreateProposal is the body of POST /v1/proposals. Action is hex encoded.
type CreateProposal struct {
	Realm              string   `json:"realm"`
	Address            string   `json:"address,omitempty"`
	GoverningTokenMint string   `json:"governingTokenMint,omitempty"`
	ProposalOwner      string   `json:"proposalOwner,omitempty"`
	Name               string   `json:"name"`
	DescriptionLink    string   `json:"descriptionLink,omitempty"`
	VoteType           VoteType `json:"voteType"`
	Options            []string `json:"options"`
	UseDenialQuorum    bool     `json:"useDenialQuorum,omitempty"`
	VotingPeriodDays   uint8    `json:"votingPeriodDays"`
	Action             string   `json:"action,omitempty"`
}

func (c CreateProposal) params() (governance.ProposalParams, error) {
	voteType, err := c.VoteType.toGovernance()
	if err != nil {
		return governance.ProposalParams{}, err
	}
	action, err := hex.DecodeString(c.Action)
	if err != nil {
		return governance.ProposalParams{}, fmt.Errorf(
			"%w: action is not hex: %w",
			governance.ErrInvalidProposalConfig,
			err,
		)
	}
	return governance.ProposalParams{
		Address:            governance.Address(c.Address),
		GoverningTokenMint: governance.Address(c.GoverningTokenMint),
		ProposalOwner:      governance.Address(c.ProposalOwner),
		Name:               c.Name,
		DescriptionLink:    c.DescriptionLink,
		VoteType:           voteType,
		Options:            c.Options,
		UseDenialQuorum:    c.UseDenialQuorum,
		VotingPeriodDays:   c.VotingPeriodDays,
		Action:             action,
	}, nil
}

type Proposal struct {
	Address            string   `json:"address"`
	Realm              string   `json:"realm"`
	GoverningTokenMint string   `json:"governingTokenMint"`
	ProposalOwner      string   `json:"proposalOwner"`
	Name               string   `json:"name"`
	DescriptionLink    string   `json:"descriptionLink,omitempty"`
	CreatedAt          uint64   `json:"createdAt"`
	State              string   `json:"state"`
	VoteType           VoteType `json:"voteType"`
	Options            []string `json:"options"`
	UseDenialQuorum    bool     `json:"useDenialQuorum"`
	VotingStartsAt     uint64   `json:"votingStartsAt"`
	VotingEndsAt       uint64   `json:"votingEndsAt"`
	VoteResults        []uint64 `json:"voteResults"`
	TotalVoteWeight    uint64   `json:"totalVoteWeight"`
	Action             string   `json:"action,omitempty"`
}

func ProposalFromGovernance(p *governance.Proposal) Proposal {
	return Proposal{
		Address:            string(p.Address),
		Realm:              string(p.Governance),
		GoverningTokenMint: string(p.GoverningTokenMint),
		ProposalOwner:      string(p.ProposalOwner),
		Name:               p.Name,
		DescriptionLink:    p.DescriptionLink,
		CreatedAt:          p.CreatedAt,
		State:              p.State.String(),
		VoteType: VoteType{
			Kind:            p.VoteType.Kind.String(),
			MaxVoterOptions: p.VoteType.MaxVoterOptions,
		},
		Options:         p.Options,
		UseDenialQuorum: p.UseDenialQuorum,
		VotingStartsAt:  p.VotingStartsAt,
		VotingEndsAt:    p.VotingEndsAt,
		VoteResults:     p.VoteResults,
		TotalVoteWeight: p.TotalVoteWeight,
		Action:          hex.EncodeToString(p.Action),
	}
}

// Ballot is {"kind": "SingleChoice", "options": [0]} or
// {"kind": "Weighted", "choices": [{"option": 0, "weight": 1}]}
type Ballot struct {
	Kind    string                      `json:"kind"`
	Options []uint16                    `json:"options,omitempty"`
	Choices []governance.WeightedChoice `json:"choices,omitempty"`
}

func (b Ballot) toGovernance() (governance.Ballot, error) {
	kind, err := governance.ParseVoteTypeKind(b.Kind)
	if err != nil {
		return governance.Ballot{}, fmt.Errorf("%w: %w", governance.ErrInvalidBallot, err)
	}
	return governance.Ballot{Kind: kind, Options: b.Options, Choices: b.Choices}, nil
}

func ballotFromGovernance(b governance.Ballot) Ballot {
	return Ballot{Kind: b.Kind.String(), Options: b.Options, Choices: b.Choices}
}

// CastVote is the body of POST /v1/proposals/:address/votes
type CastVote struct {
	Owner        string `json:"owner,omitempty"`
	Ballot       Ballot `json:"ballot"`
	StakedAmount uint64 `json:"stakedAmount"`
}

type VoteRecord struct {
	Address             string `json:"address"`
	Proposal            string `json:"proposal"`
	Realm               string `json:"realm"`
	GoverningTokenMint  string `json:"governingTokenMint"`
	GoverningTokenOwner string `json:"governingTokenOwner"`
	Vote                Ballot `json:"vote"`
	StakeAmount         uint64 `json:"stakeAmount"`
	VoteWeight          uint64 `json:"voteWeight"`
	IsRelinquished      bool   `json:"isRelinquished"`
	CastAt              uint64 `json:"castAt"`
}

func VoteRecordFromGovernance(v *governance.VoteRecord) VoteRecord {
	return VoteRecord{
		Address:             string(v.Address),
		Proposal:            string(v.Proposal),
		Realm:               string(v.Realm),
		GoverningTokenMint:  string(v.GoverningTokenMint),
		GoverningTokenOwner: string(v.GoverningTokenOwner),
		Vote:                ballotFromGovernance(v.Vote),
		StakeAmount:         v.StakeAmount,
		VoteWeight:          v.VoteWeight,
		IsRelinquished:      v.IsRelinquished,
		CastAt:              v.CastAt,
	}
}

// Stake is the body of POST /v1/stake and POST /v1/unstake
type Stake struct {
	Realm  string `json:"realm"`
	Mint   string `json:"mint,omitempty"`
	Owner  string `json:"owner,omitempty"`
	Amount uint64 `json:"amount"`
}

type TokenOwnerRecord struct {
	Address                     string `json:"address"`
	Realm                       string `json:"realm"`
	GoverningTokenMint          string `json:"governingTokenMint"`
	GoverningTokenOwner         string `json:"governingTokenOwner"`
	GoverningTokenDepositAmount uint64 `json:"governingTokenDepositAmount"`
	UnrelinquishedVotesCount    uint32 `json:"unrelinquishedVotesCount"`
	EarliestUnstakingTime       uint64 `json:"earliestUnstakingTime"`
}

func TokenOwnerRecordFromGovernance(r *governance.TokenOwnerRecord) TokenOwnerRecord {
	return TokenOwnerRecord{
		Address:                     string(r.Address),
		Realm:                       string(r.Realm),
		GoverningTokenMint:          string(r.GoverningTokenMint),
		GoverningTokenOwner:         string(r.GoverningTokenOwner),
		GoverningTokenDepositAmount: r.GoverningTokenDepositAmount,
		UnrelinquishedVotesCount:    r.UnrelinquishedVotesCount,
		EarliestUnstakingTime:       r.EarliestUnstakingTime,
	}
}

// Account holds exactly one entity, named by Type
type Account struct {
	Type             string            `json:"type"`
	Realm            *Realm            `json:"realm,omitempty"`
	Proposal         *Proposal         `json:"proposal,omitempty"`
	TokenOwnerRecord *TokenOwnerRecord `json:"tokenOwnerRecord,omitempty"`
	VoteRecord       *VoteRecord       `json:"voteRecord,omitempty"`
}

func AccountFromDatabase(a *database.Account) Account {
	ret := Account{Type: a.Type.String()}
	switch {
	case a.Realm != nil:
		r := RealmFromGovernance(a.Realm)
		ret.Realm = &r
	case a.Proposal != nil:
		p := ProposalFromGovernance(a.Proposal)
		ret.Proposal = &p
	case a.TokenOwnerRecord != nil:
		t := TokenOwnerRecordFromGovernance(a.TokenOwnerRecord)
		ret.TokenOwnerRecord = &t
	case a.VoteRecord != nil:
		v := VoteRecordFromGovernance(a.VoteRecord)
		ret.VoteRecord = &v
	}
	return ret
}

type Balance struct {
	Mint    string `json:"mint"`
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}

type Error struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
