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

import "fmt"

// QuorumThreshold is max_vote_weight * percent / 100, never below 1
func QuorumThreshold(maxVoteWeight uint64, percent uint8) (uint64, error) {
	if percent == 0 || percent > 100 {
		return 0, fmt.Errorf(
			"%w: quorum percent %d out of range 1..100",
			ErrInvalidProposalConfig,
			percent,
		)
	}
	threshold, err := mulDiv(maxVoteWeight, uint64(percent), 100)
	if err != nil {
		return 0, err
	}
	return max(threshold, 1), nil
}

// EvaluateOutcome decides the closing state of a proposal from its tallies.
// In denial mode the last option is the deny option.
func EvaluateOutcome(p *Proposal, threshold uint64) ProposalState {
	if p.TotalVoteWeight == 0 {
		return ProposalStateExpired
	}
	if p.UseDenialQuorum {
		deny := len(p.VoteResults) - 1
		if p.VoteResults[deny] >= threshold {
			return ProposalStateRejected
		}
		if lead, _ := leadingOption(p.VoteResults[:deny]); lead > 0 {
			return ProposalStateApproved
		}
		return ProposalStateRejected
	}
	lead, unique := leadingOption(p.VoteResults)
	if unique && lead >= threshold {
		return ProposalStateApproved
	}
	return ProposalStateRejected
}

// leadingOption returns the highest tally and whether exactly one option
// holds it
func leadingOption(results []uint64) (uint64, bool) {
	var lead uint64
	count := 0
	for _, v := range results {
		switch {
		case v > lead:
			lead = v
			count = 1
		case v == lead:
			count++
		}
	}
	return lead, count == 1
}
