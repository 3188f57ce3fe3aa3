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

// WeightedChoice is one (option, weight) pair of a Weighted ballot
type WeightedChoice struct {
	OptionIndex uint16 `json:"option"`
	Weight      uint64 `json:"weight"`
}

// Ballot is a cast vote. Options is used by SingleChoice and MultiChoice
// ballots, Choices by Weighted ballots.
type Ballot struct {
	Kind    VoteTypeKind     `json:"kind"`
	Options []uint16         `json:"options,omitempty"`
	Choices []WeightedChoice `json:"choices,omitempty"`
}

func SingleChoiceBallot(option uint16) Ballot {
	return Ballot{Kind: VoteTypeSingleChoice, Options: []uint16{option}}
}

func MultiChoiceBallot(options ...uint16) Ballot {
	return Ballot{Kind: VoteTypeMultiChoice, Options: options}
}

func WeightedBallot(choices ...WeightedChoice) Ballot {
	return Ballot{Kind: VoteTypeWeighted, Choices: choices}
}

// Allocation is the share of a vote weight credited to one option
type Allocation struct {
	OptionIndex uint16
	Weight      uint64
}

// VoteRecord is the append-only record of a cast ballot
type VoteRecord struct {
	Address             Address
	Proposal            Address
	Realm               Address
	GoverningTokenMint  Address
	GoverningTokenOwner Address
	Vote                Ballot
	StakeAmount         uint64
	VoteWeight          uint64
	IsRelinquished      bool
	CastAt              uint64
}

// ValidateBallot checks the ballot shape against the proposal vote type
func ValidateBallot(vt VoteType, numOptions int, b Ballot) error {
	if b.Kind != vt.Kind {
		return fmt.Errorf(
			"%w: %s ballot on %s proposal",
			ErrInvalidBallot,
			b.Kind,
			vt,
		)
	}
	inRange := func(idx uint16) error {
		if int(idx) >= numOptions {
			return fmt.Errorf(
				"%w: option %d out of range, %d options",
				ErrInvalidBallot,
				idx,
				numOptions,
			)
		}
		return nil
	}
	switch b.Kind {
	case VoteTypeSingleChoice:
		if len(b.Options) != 1 || len(b.Choices) != 0 {
			return fmt.Errorf("%w: single choice ballot needs exactly one option", ErrInvalidBallot)
		}
		return inRange(b.Options[0])
	case VoteTypeMultiChoice:
		if len(b.Choices) != 0 {
			return fmt.Errorf("%w: multi choice ballot carries weights", ErrInvalidBallot)
		}
		if len(b.Options) == 0 || len(b.Options) > int(vt.MaxVoterOptions) {
			return fmt.Errorf(
				"%w: %d options selected, allowed 1..%d",
				ErrInvalidBallot,
				len(b.Options),
				vt.MaxVoterOptions,
			)
		}
		seen := make(map[uint16]struct{}, len(b.Options))
		for _, idx := range b.Options {
			if err := inRange(idx); err != nil {
				return err
			}
			if _, ok := seen[idx]; ok {
				return fmt.Errorf("%w: duplicate option %d", ErrInvalidBallot, idx)
			}
			seen[idx] = struct{}{}
		}
		return nil
	case VoteTypeWeighted:
		if len(b.Options) != 0 {
			return fmt.Errorf("%w: weighted ballot carries bare options", ErrInvalidBallot)
		}
		if len(b.Choices) == 0 {
			return fmt.Errorf("%w: weighted ballot is empty", ErrInvalidBallot)
		}
		seen := make(map[uint16]struct{}, len(b.Choices))
		var sum uint64
		for _, c := range b.Choices {
			if err := inRange(c.OptionIndex); err != nil {
				return err
			}
			if _, ok := seen[c.OptionIndex]; ok {
				return fmt.Errorf("%w: duplicate option %d", ErrInvalidBallot, c.OptionIndex)
			}
			seen[c.OptionIndex] = struct{}{}
			var err error
			if sum, err = checkedAdd(sum, c.Weight); err != nil {
				return fmt.Errorf("%w: weights: %w", ErrInvalidBallot, err)
			}
		}
		if sum == 0 {
			return fmt.Errorf("%w: weights sum to zero", ErrInvalidBallot)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown ballot kind %s", ErrInvalidBallot, b.Kind)
	}
}

// VoteWeight converts a raw stake into vote weight
func VoteWeight(stakedAmount uint64, quadratic bool) uint64 {
	if quadratic {
		return ISqrt(stakedAmount)
	}
	return stakedAmount
}

// AllocateVoteWeight splits weight across the options of a validated ballot.
// Integer remainders go to the first listed option so the allocations always
// sum to weight.
func AllocateVoteWeight(b Ballot, weight uint64) ([]Allocation, error) {
	switch b.Kind {
	case VoteTypeSingleChoice:
		return []Allocation{{OptionIndex: b.Options[0], Weight: weight}}, nil
	case VoteTypeMultiChoice:
		n := uint64(len(b.Options))
		share := weight / n
		ret := make([]Allocation, len(b.Options))
		for i, idx := range b.Options {
			ret[i] = Allocation{OptionIndex: idx, Weight: share}
		}
		ret[0].Weight += weight - share*n
		return ret, nil
	case VoteTypeWeighted:
		var sum uint64
		for _, c := range b.Choices {
			sum += c.Weight
		}
		ret := make([]Allocation, len(b.Choices))
		var allocated uint64
		for i, c := range b.Choices {
			share, err := mulDiv(weight, c.Weight, sum)
			if err != nil {
				return nil, err
			}
			ret[i] = Allocation{OptionIndex: c.OptionIndex, Weight: share}
			allocated += share
		}
		ret[0].Weight += weight - allocated
		return ret, nil
	default:
		return nil, fmt.Errorf("%w: unknown ballot kind %s", ErrInvalidBallot, b.Kind)
	}
}

// CastVoteParams carries the inputs of CastVote
type CastVoteParams struct {
	RecordAddress Address
	Ballot        Ballot
	StakedAmount  uint64
	// HasActiveVote reports whether the voter already holds a
	// non-relinquished vote record on the proposal
	HasActiveVote bool
	Now           uint64
}

// CastVote validates a ballot and applies it to the proposal tallies and the
// voter's token owner record. Nothing is modified when an error is returned.
func CastVote(
	realm *Realm,
	proposal *Proposal,
	voter *TokenOwnerRecord,
	params CastVoteParams,
) (*VoteRecord, error) {
	if !proposal.VotingOpen(params.Now) {
		return nil, fmt.Errorf(
			"%w: proposal %s is %s, window %d..%d, now %d",
			ErrVotingClosed,
			proposal.Address,
			proposal.State,
			proposal.VotingStartsAt,
			proposal.VotingEndsAt,
			params.Now,
		)
	}
	if params.HasActiveVote {
		return nil, fmt.Errorf("%w: on proposal %s", ErrAlreadyVoted, proposal.Address)
	}
	if voter == nil ||
		voter.Realm != proposal.Governance ||
		voter.GoverningTokenMint != proposal.GoverningTokenMint {
		return nil, fmt.Errorf(
			"%w: no deposit on mint %s",
			ErrInsufficientStake,
			proposal.GoverningTokenMint,
		)
	}
	if params.StakedAmount == 0 || params.StakedAmount > voter.GoverningTokenDepositAmount {
		return nil, fmt.Errorf(
			"%w: staked amount %d, deposit %d",
			ErrInsufficientStake,
			params.StakedAmount,
			voter.GoverningTokenDepositAmount,
		)
	}
	if err := ValidateBallot(proposal.VoteType, len(proposal.Options), params.Ballot); err != nil {
		return nil, err
	}
	weight := VoteWeight(params.StakedAmount, realm.UseQuadraticVoting)
	allocs, err := AllocateVoteWeight(params.Ballot, weight)
	if err != nil {
		return nil, err
	}
	results := slices.Clone(proposal.VoteResults)
	for _, a := range allocs {
		if results[a.OptionIndex], err = checkedAdd(results[a.OptionIndex], a.Weight); err != nil {
			return nil, fmt.Errorf("tally option %d: %w", a.OptionIndex, err)
		}
	}
	total, err := checkedAdd(proposal.TotalVoteWeight, weight)
	if err != nil {
		return nil, fmt.Errorf("total vote weight: %w", err)
	}
	votes, err := voter.incrementVotes()
	if err != nil {
		return nil, err
	}
	proposal.VoteResults = results
	proposal.TotalVoteWeight = total
	voter.UnrelinquishedVotesCount = votes
	return &VoteRecord{
		Address:             params.RecordAddress,
		Proposal:            proposal.Address,
		Realm:               proposal.Governance,
		GoverningTokenMint:  proposal.GoverningTokenMint,
		GoverningTokenOwner: voter.GoverningTokenOwner,
		Vote:                params.Ballot,
		StakeAmount:         params.StakedAmount,
		VoteWeight:          weight,
		CastAt:              params.Now,
	}, nil
}

// RelinquishVote releases the voter's lock held by record. While the
// proposal still accepts votes the tally contribution is reversed; after
// that the tallies are frozen. Nothing is modified when an error is returned.
func RelinquishVote(
	proposal *Proposal,
	voter *TokenOwnerRecord,
	record *VoteRecord,
	now uint64,
) error {
	if record.IsRelinquished {
		return fmt.Errorf(
			"%w: vote record %s already relinquished",
			ErrInvalidStateTransition,
			record.Address,
		)
	}
	if record.Proposal != proposal.Address ||
		record.GoverningTokenOwner != voter.GoverningTokenOwner ||
		record.GoverningTokenMint != voter.GoverningTokenMint {
		return fmt.Errorf(
			"%w: vote record %s does not match proposal and owner",
			ErrInvalidStateTransition,
			record.Address,
		)
	}
	votes, err := voter.decrementVotes()
	if err != nil {
		return err
	}
	results := proposal.VoteResults
	total := proposal.TotalVoteWeight
	if proposal.VotingOpen(now) {
		allocs, err := AllocateVoteWeight(record.Vote, record.VoteWeight)
		if err != nil {
			return err
		}
		results = slices.Clone(proposal.VoteResults)
		for _, a := range allocs {
			if int(a.OptionIndex) >= len(results) {
				return fmt.Errorf("%w: option %d", ErrInvalidBallot, a.OptionIndex)
			}
			if results[a.OptionIndex], err = checkedSub(results[a.OptionIndex], a.Weight); err != nil {
				return fmt.Errorf("reverse tally option %d: %w", a.OptionIndex, err)
			}
		}
		if total, err = checkedSub(total, record.VoteWeight); err != nil {
			return fmt.Errorf("reverse total vote weight: %w", err)
		}
	}
	proposal.VoteResults = results
	proposal.TotalVoteWeight = total
	voter.UnrelinquishedVotesCount = votes
	record.IsRelinquished = true
	return nil
}
