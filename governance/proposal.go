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
	"fmt"
	"slices"
)

// ProposalState is a proposal lifecycle state
type ProposalState uint8

const (
	ProposalStateDraft ProposalState = iota
	ProposalStateActive
	ProposalStateApproved
	ProposalStateRejected
	ProposalStateExpired
	ProposalStateExecuted
)

func (s ProposalState) String() string {
	switch s {
	case ProposalStateDraft:
		return "Draft"
	case ProposalStateActive:
		return "Active"
	case ProposalStateApproved:
		return "Approved"
	case ProposalStateRejected:
		return "Rejected"
	case ProposalStateExpired:
		return "Expired"
	case ProposalStateExecuted:
		return "Executed"
	default:
		return fmt.Sprintf("ProposalState(%d)", uint8(s))
	}
}

// ParseProposalState is the inverse of ProposalState.String
func ParseProposalState(s string) (ProposalState, error) {
	for st := ProposalStateDraft; st <= ProposalStateExecuted; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown proposal state: %q", s)
}

// IsFinal returns true for states no transition leaves
func (s ProposalState) IsFinal() bool {
	switch s {
	case ProposalStateRejected, ProposalStateExpired, ProposalStateExecuted:
		return true
	default:
		return false
	}
}

// VoteTypeKind identifies the ballot shape accepted by a proposal
type VoteTypeKind uint8

const (
	VoteTypeSingleChoice VoteTypeKind = iota
	VoteTypeMultiChoice
	VoteTypeWeighted
)

func (k VoteTypeKind) String() string {
	switch k {
	case VoteTypeSingleChoice:
		return "SingleChoice"
	case VoteTypeMultiChoice:
		return "MultiChoice"
	case VoteTypeWeighted:
		return "Weighted"
	default:
		return fmt.Sprintf("VoteTypeKind(%d)", uint8(k))
	}
}

// ParseVoteTypeKind is the inverse of VoteTypeKind.String
func ParseVoteTypeKind(s string) (VoteTypeKind, error) {
	for k := VoteTypeSingleChoice; k <= VoteTypeWeighted; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown vote type: %q", s)
}

// VoteType is SingleChoice, MultiChoice{MaxVoterOptions} or Weighted
type VoteType struct {
	Kind            VoteTypeKind
	MaxVoterOptions uint8
}

func SingleChoice() VoteType {
	return VoteType{Kind: VoteTypeSingleChoice}
}

func MultiChoice(maxVoterOptions uint8) VoteType {
	return VoteType{Kind: VoteTypeMultiChoice, MaxVoterOptions: maxVoterOptions}
}

func Weighted() VoteType {
	return VoteType{Kind: VoteTypeWeighted}
}

func (v VoteType) String() string {
	if v.Kind == VoteTypeMultiChoice {
		return fmt.Sprintf("MultiChoice{%d}", v.MaxVoterOptions)
	}
	return v.Kind.String()
}

// Proposal is a voteable decision. VoteResults is indexed by option position.
type Proposal struct {
	Address            Address
	Governance         Address
	GoverningTokenMint Address
	ProposalOwner      Address
	Name               string
	DescriptionLink    string
	CreatedAt          uint64
	State              ProposalState
	VoteType           VoteType
	Options            []string
	UseDenialQuorum    bool
	VotingStartsAt     uint64
	VotingEndsAt       uint64
	VoteResults        []uint64
	TotalVoteWeight    uint64
	Action             []byte
}

// ProposalParams carries the CreateProposal arguments
type ProposalParams struct {
	Address            Address
	GoverningTokenMint Address
	ProposalOwner      Address
	Name               string
	DescriptionLink    string
	VoteType           VoteType
	Options            []string
	UseDenialQuorum    bool
	VotingPeriodDays   uint8
	Action             []byte
	// AutoActivate opens voting immediately instead of leaving the
	// proposal in Draft
	AutoActivate bool
}

// NewProposal validates params against the realm and the creator's token
// owner record, and returns a proposal with zeroed tallies
func NewProposal(
	realm *Realm,
	creator *TokenOwnerRecord,
	params ProposalParams,
	now uint64,
) (*Proposal, error) {
	if params.Address == "" {
		return nil, fmt.Errorf("%w: proposal address is empty", ErrInvalidProposalConfig)
	}
	if params.Name == "" {
		return nil, fmt.Errorf("%w: proposal name is empty", ErrInvalidProposalConfig)
	}
	if params.VotingPeriodDays == 0 {
		return nil, fmt.Errorf("%w: voting period must be positive", ErrInvalidProposalConfig)
	}
	mint := params.GoverningTokenMint
	if mint == "" {
		mint = realm.CommunityMint
	}
	if err := realm.CheckGoverningMint(mint); err != nil {
		return nil, err
	}
	if err := validateOptions(params.VoteType, params.Options, params.UseDenialQuorum); err != nil {
		return nil, err
	}
	if err := checkCreatorStake(realm, creator, mint, params.ProposalOwner); err != nil {
		return nil, err
	}
	endsAt, err := checkedAdd(now, uint64(params.VotingPeriodDays)*SecondsPerDay)
	if err != nil {
		return nil, fmt.Errorf("voting window: %w", err)
	}
	p := &Proposal{
		Address:            params.Address,
		Governance:         realm.Address,
		GoverningTokenMint: mint,
		ProposalOwner:      params.ProposalOwner,
		Name:               params.Name,
		DescriptionLink:    params.DescriptionLink,
		CreatedAt:          now,
		State:              ProposalStateDraft,
		VoteType:           params.VoteType,
		Options:            slices.Clone(params.Options),
		UseDenialQuorum:    params.UseDenialQuorum,
		VotingStartsAt:     now,
		VotingEndsAt:       endsAt,
		VoteResults:        make([]uint64, len(params.Options)),
		Action:             slices.Clone(params.Action),
	}
	if params.AutoActivate {
		p.State = ProposalStateActive
	}
	return p, nil
}

func validateOptions(vt VoteType, options []string, denial bool) error {
	if len(options) == 0 {
		return fmt.Errorf("%w: options list is empty", ErrInvalidProposalConfig)
	}
	if len(options) > MaxOptions {
		return fmt.Errorf(
			"%w: %d options exceeds %d",
			ErrInvalidProposalConfig,
			len(options),
			MaxOptions,
		)
	}
	for i, opt := range options {
		if opt == "" {
			return fmt.Errorf("%w: option %d is empty", ErrInvalidProposalConfig, i)
		}
	}
	switch vt.Kind {
	case VoteTypeSingleChoice, VoteTypeWeighted:
	case VoteTypeMultiChoice:
		if vt.MaxVoterOptions == 0 || int(vt.MaxVoterOptions) > len(options) {
			return fmt.Errorf(
				"%w: max voter options %d out of range 1..%d",
				ErrInvalidProposalConfig,
				vt.MaxVoterOptions,
				len(options),
			)
		}
	default:
		return fmt.Errorf("%w: unknown vote type %s", ErrInvalidProposalConfig, vt.Kind)
	}
	if denial && len(options) < 2 {
		return fmt.Errorf(
			"%w: denial quorum needs a deny option besides at least one other",
			ErrInvalidProposalConfig,
		)
	}
	return nil
}

func checkCreatorStake(
	realm *Realm,
	creator *TokenOwnerRecord,
	mint, owner Address,
) error {
	if creator == nil {
		return fmt.Errorf("%w: creator has no token owner record", ErrInsufficientStake)
	}
	if creator.Realm != realm.Address ||
		creator.GoverningTokenMint != mint ||
		creator.GoverningTokenOwner != owner {
		return fmt.Errorf(
			"%w: token owner record %s does not belong to %s on %s",
			ErrInsufficientStake,
			creator.Address,
			owner,
			mint,
		)
	}
	deposit := creator.GoverningTokenDepositAmount
	if mint == realm.CommunityMint {
		if deposit < realm.MinCommunityTokensToCreateProposal {
			return fmt.Errorf(
				"%w: deposit %d below minimum %d",
				ErrInsufficientStake,
				deposit,
				realm.MinCommunityTokensToCreateProposal,
			)
		}
		return nil
	}
	if deposit == 0 {
		return fmt.Errorf("%w: council deposit is zero", ErrInsufficientStake)
	}
	return nil
}

// Activate moves a Draft proposal to Active while its window is still open
func (p *Proposal) Activate(now uint64) error {
	if p.State != ProposalStateDraft {
		return fmt.Errorf(
			"%w: cannot activate %s proposal",
			ErrInvalidStateTransition,
			p.State,
		)
	}
	if now >= p.VotingEndsAt {
		return fmt.Errorf(
			"%w: voting window ended at %d",
			ErrInvalidStateTransition,
			p.VotingEndsAt,
		)
	}
	p.State = ProposalStateActive
	return nil
}

// VotingOpen returns true while the proposal accepts votes
func (p *Proposal) VotingOpen(now uint64) bool {
	return p.State == ProposalStateActive &&
		now >= p.VotingStartsAt &&
		now < p.VotingEndsAt
}

// NeedsFinalization returns true once an Active proposal's window elapsed
func (p *Proposal) NeedsFinalization(now uint64) bool {
	return p.State == ProposalStateActive && now >= p.VotingEndsAt
}

// Finalize closes an elapsed Active proposal with the outcome of the quorum
// evaluation. It reports false without changes when the proposal is not due.
func (p *Proposal) Finalize(realm *Realm, supply, now uint64) (bool, error) {
	if !p.NeedsFinalization(now) {
		return false, nil
	}
	maxWeight, err := realm.MaxVoteWeightSource(p.GoverningTokenMint).MaxVoteWeight(supply)
	if err != nil {
		return false, fmt.Errorf("max vote weight: %w", err)
	}
	threshold, err := QuorumThreshold(maxWeight, realm.QuorumPercent)
	if err != nil {
		return false, fmt.Errorf("quorum threshold: %w", err)
	}
	p.State = EvaluateOutcome(p, threshold)
	return true, nil
}
