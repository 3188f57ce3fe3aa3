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
	"errors"
	"fmt"
)

// MaxVoteWeightSourceKind selects how a realm derives max vote weight
type MaxVoteWeightSourceKind uint8

const (
	MaxVoteWeightSupplyFraction MaxVoteWeightSourceKind = iota
	MaxVoteWeightAbsolute
)

func (k MaxVoteWeightSourceKind) String() string {
	switch k {
	case MaxVoteWeightSupplyFraction:
		return "SupplyFraction"
	case MaxVoteWeightAbsolute:
		return "Absolute"
	default:
		return fmt.Sprintf("MaxVoteWeightSourceKind(%d)", uint8(k))
	}
}

// MaxVoteWeightSource is either SupplyFraction{fraction} or Absolute{value}.
// Value holds the fraction or the absolute weight depending on Kind.
type MaxVoteWeightSource struct {
	Kind  MaxVoteWeightSourceKind
	Value uint64
}

// SupplyFraction returns a source using fraction/FractionDenominator of the
// mint supply
func SupplyFraction(fraction uint64) MaxVoteWeightSource {
	return MaxVoteWeightSource{Kind: MaxVoteWeightSupplyFraction, Value: fraction}
}

// FullSupply is SupplyFraction(FractionDenominator)
func FullSupply() MaxVoteWeightSource {
	return SupplyFraction(FractionDenominator)
}

// AbsoluteWeight returns a source with a fixed max vote weight
func AbsoluteWeight(value uint64) MaxVoteWeightSource {
	return MaxVoteWeightSource{Kind: MaxVoteWeightAbsolute, Value: value}
}

// Validate checks the source is well formed
func (s MaxVoteWeightSource) Validate() error {
	switch s.Kind {
	case MaxVoteWeightSupplyFraction:
		if s.Value == 0 || s.Value > FractionDenominator {
			return fmt.Errorf(
				"%w: supply fraction %d out of range 1..%d",
				ErrInvalidProposalConfig,
				s.Value,
				FractionDenominator,
			)
		}
	case MaxVoteWeightAbsolute:
		if s.Value == 0 {
			return fmt.Errorf(
				"%w: absolute max vote weight must be positive",
				ErrInvalidProposalConfig,
			)
		}
	default:
		return fmt.Errorf(
			"%w: unknown max vote weight source %s",
			ErrInvalidProposalConfig,
			s.Kind,
		)
	}
	return nil
}

// MaxVoteWeight resolves the source against the supply of its mint
func (s MaxVoteWeightSource) MaxVoteWeight(supply uint64) (uint64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if s.Kind == MaxVoteWeightAbsolute {
		return s.Value, nil
	}
	return mulDiv(supply, s.Value, FractionDenominator)
}

func (s MaxVoteWeightSource) String() string {
	return fmt.Sprintf("%s{%d}", s.Kind, s.Value)
}

// Realm is the governance configuration scope. It is immutable once created.
type Realm struct {
	Address                            Address
	Name                               string
	CommunityMint                      Address
	CouncilMint                        OptionalAddress
	MinCommunityTokensToCreateProposal uint64
	CommunityMintMaxVoteWeightSource   MaxVoteWeightSource
	UseQuadraticVoting                 bool
	QuorumPercent                      uint8
}

// RealmParams carries the InitializeRealm arguments
type RealmParams struct {
	Address                            Address
	Name                               string
	CommunityMint                      Address
	CouncilMint                        OptionalAddress
	MinCommunityTokensToCreateProposal uint64
	CommunityMintMaxVoteWeightSource   MaxVoteWeightSource
	UseQuadraticVoting                 bool
	QuorumPercent                      uint8
}

// NewRealm validates params and builds a realm
func NewRealm(params RealmParams) (*Realm, error) {
	if params.Address == "" {
		return nil, fmt.Errorf("%w: realm address is empty", ErrInvalidProposalConfig)
	}
	if params.Name == "" {
		return nil, fmt.Errorf("%w: realm name is empty", ErrInvalidProposalConfig)
	}
	if params.CommunityMint == "" {
		return nil, fmt.Errorf("%w: community mint is empty", ErrInvalidProposalConfig)
	}
	if council, ok := params.CouncilMint.Get(); ok {
		if council == "" {
			return nil, fmt.Errorf("%w: council mint is empty", ErrInvalidProposalConfig)
		}
		if council == params.CommunityMint {
			return nil, fmt.Errorf(
				"%w: council mint must differ from community mint",
				ErrInvalidProposalConfig,
			)
		}
	}
	if err := params.CommunityMintMaxVoteWeightSource.Validate(); err != nil {
		return nil, err
	}
	if params.QuorumPercent == 0 || params.QuorumPercent > 100 {
		return nil, fmt.Errorf(
			"%w: quorum percent %d out of range 1..100",
			ErrInvalidProposalConfig,
			params.QuorumPercent,
		)
	}
	return &Realm{
		Address:                            params.Address,
		Name:                               params.Name,
		CommunityMint:                      params.CommunityMint,
		CouncilMint:                        params.CouncilMint,
		MinCommunityTokensToCreateProposal: params.MinCommunityTokensToCreateProposal,
		CommunityMintMaxVoteWeightSource:   params.CommunityMintMaxVoteWeightSource,
		UseQuadraticVoting:                 params.UseQuadraticVoting,
		QuorumPercent:                      params.QuorumPercent,
	}, nil
}

var errNotGoverningMint = errors.New("mint is not a governing mint of the realm")

// IsGoverningMint returns true for the community mint and the council mint
func (r *Realm) IsGoverningMint(mint Address) bool {
	return mint == r.CommunityMint || r.CouncilMint.Is(mint)
}

// CheckGoverningMint returns an error if mint does not govern this realm
func (r *Realm) CheckGoverningMint(mint Address) error {
	if !r.IsGoverningMint(mint) {
		return fmt.Errorf(
			"%w: %w: %s",
			ErrInvalidProposalConfig,
			errNotGoverningMint,
			mint,
		)
	}
	return nil
}

// MaxVoteWeightSource returns the source applied to proposals on mint.
// The council mint always uses its full supply.
func (r *Realm) MaxVoteWeightSource(mint Address) MaxVoteWeightSource {
	if mint == r.CommunityMint {
		return r.CommunityMintMaxVoteWeightSource
	}
	return FullSupply()
}
