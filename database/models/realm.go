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

// Realm is the queryable form of a governance realm
type Realm struct {
	ID                       uint         `gorm:"primarykey"`
	Address                  string       `gorm:"uniqueIndex;size:128;not null"`
	Name                     string       `gorm:"size:255;not null"`
	CommunityMint            string       `gorm:"index;size:128;not null"`
	CouncilMint              *string      `gorm:"size:128"`
	MinCommunityTokens       types.Uint64 `gorm:"not null"`
	MaxVoteWeightSourceKind  uint8        `gorm:"not null"`
	MaxVoteWeightSourceValue types.Uint64 `gorm:"not null"`
	UseQuadraticVoting       bool         `gorm:"not null"`
	QuorumPercent            uint8        `gorm:"not null"`
}

func (Realm) TableName() string {
	return "realm"
}

func RealmFromGovernance(r *governance.Realm) *Realm {
	ret := &Realm{
		Address:                  string(r.Address),
		Name:                     r.Name,
		CommunityMint:            string(r.CommunityMint),
		MinCommunityTokens:       types.Uint64(r.MinCommunityTokensToCreateProposal),
		MaxVoteWeightSourceKind:  uint8(r.CommunityMintMaxVoteWeightSource.Kind),
		MaxVoteWeightSourceValue: types.Uint64(r.CommunityMintMaxVoteWeightSource.Value),
		UseQuadraticVoting:       r.UseQuadraticVoting,
		QuorumPercent:            r.QuorumPercent,
	}
	if council, ok := r.CouncilMint.Get(); ok {
		tmp := string(council)
		ret.CouncilMint = &tmp
	}
	return ret
}

func (r *Realm) Governance() *governance.Realm {
	ret := &governance.Realm{
		Address:                            governance.Address(r.Address),
		Name:                               r.Name,
		CommunityMint:                      governance.Address(r.CommunityMint),
		CouncilMint:                        governance.NoAddress(),
		MinCommunityTokensToCreateProposal: uint64(r.MinCommunityTokens),
		CommunityMintMaxVoteWeightSource: governance.MaxVoteWeightSource{
			Kind:  governance.MaxVoteWeightSourceKind(r.MaxVoteWeightSourceKind),
			Value: uint64(r.MaxVoteWeightSourceValue),
		},
		UseQuadraticVoting: r.UseQuadraticVoting,
		QuorumPercent:      r.QuorumPercent,
	}
	if r.CouncilMint != nil {
		ret.CouncilMint = governance.SomeAddress(governance.Address(*r.CouncilMint))
	}
	return ret
}
