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
package models

import (
	"github.com/blinklabs-io/leapfrog/database/types"
	"github.com/blinklabs-io/leapfrog/governance"
)

// Proposal is the queryable form of a governance proposal. Options and
// tallies are stored as JSON since they are only ever read whole.
type Proposal struct {
	ID                 uint         `gorm:"primarykey"`
	Address            string       `gorm:"uniqueIndex;size:128;not null"`
	Realm              string       `gorm:"index:idx_proposal_realm_state,priority:1;size:128;not null"`
	GoverningTokenMint string       `gorm:"size:128;not null"`
	ProposalOwner      string       `gorm:"index;size:128;not null"`
	Name               string       `gorm:"size:255;not null"`
	DescriptionLink    string       `gorm:"size:512"`
	SubmittedAt        uint64       `gorm:"not null"`
	State              uint8        `gorm:"index:idx_proposal_realm_state,priority:2;index:idx_proposal_state_ends,priority:1;not null"`
	VoteTypeKind       uint8        `gorm:"not null"`
	MaxVoterOptions    uint8        `gorm:"not null"`
	Options            []string     `gorm:"serializer:json"`
	UseDenialQuorum    bool         `gorm:"not null"`
	VotingStartsAt     uint64       `gorm:"not null"`
	VotingEndsAt       uint64       `gorm:"index:idx_proposal_state_ends,priority:2;not null"`
	VoteResults        []uint64     `gorm:"serializer:json"`
	TotalVoteWeight    types.Uint64 `gorm:"not null"`
	Action             []byte
}

func (Proposal) TableName() string {
	return "proposal"
}

func ProposalFromGovernance(p *governance.Proposal) *Proposal {
	return &Proposal{
		Address:            string(p.Address),
		Realm:              string(p.Governance),
		GoverningTokenMint: string(p.GoverningTokenMint),
		ProposalOwner:      string(p.ProposalOwner),
		Name:               p.Name,
		DescriptionLink:    p.DescriptionLink,
		SubmittedAt:        p.CreatedAt,
		State:              uint8(p.State),
		VoteTypeKind:       uint8(p.VoteType.Kind),
		MaxVoterOptions:    p.VoteType.MaxVoterOptions,
		Options:            append([]string(nil), p.Options...),
		UseDenialQuorum:    p.UseDenialQuorum,
		VotingStartsAt:     p.VotingStartsAt,
		VotingEndsAt:       p.VotingEndsAt,
		VoteResults:        append([]uint64(nil), p.VoteResults...),
		TotalVoteWeight:    types.Uint64(p.TotalVoteWeight),
		Action:             append([]byte(nil), p.Action...),
	}
}

func (p *Proposal) Governance() *governance.Proposal {
	return &governance.Proposal{
		Address:            governance.Address(p.Address),
		Governance:         governance.Address(p.Realm),
		GoverningTokenMint: governance.Address(p.GoverningTokenMint),
		ProposalOwner:      governance.Address(p.ProposalOwner),
		Name:               p.Name,
		DescriptionLink:    p.DescriptionLink,
		CreatedAt:          p.SubmittedAt,
		State:              governance.ProposalState(p.State),
		VoteType: governance.VoteType{
			Kind:            governance.VoteTypeKind(p.VoteTypeKind),
			MaxVoterOptions: p.MaxVoterOptions,
		},
		Options:         append([]string(nil), p.Options...),
		UseDenialQuorum: p.UseDenialQuorum,
		VotingStartsAt:  p.VotingStartsAt,
		VotingEndsAt:    p.VotingEndsAt,
		VoteResults:     append([]uint64(nil), p.VoteResults...),
		TotalVoteWeight: uint64(p.TotalVoteWeight),
		Action:          append([]byte(nil), p.Action...),
	}
}
