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

import "errors"

// Governance errors
var (
	ErrMissingAuthorization     = errors.New("missing authorization")
	ErrInvalidProposalConfig    = errors.New("invalid proposal config")
	ErrInsufficientStake        = errors.New("insufficient stake")
	ErrVotingClosed             = errors.New("voting closed")
	ErrAlreadyVoted             = errors.New("already voted")
	ErrInvalidBallot            = errors.New("invalid ballot")
	ErrInvalidStateTransition   = errors.New("invalid state transition")
	ErrAlreadyExecuted          = errors.New("proposal already executed")
	ErrCooldownActive           = errors.New("unstake cooldown active")
	ErrUnrelinquishedVotesExist = errors.New("unrelinquished votes exist")
	ErrArithmeticOverflow       = errors.New("arithmetic overflow")
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrAccountNotFound          = errors.New("account not found")
	ErrAccountAlreadyExists     = errors.New("account already exists")
	ErrAccountTypeMismatch      = errors.New("account type mismatch")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrMissingAuthorization, "missing_authorization"},
	{ErrInvalidProposalConfig, "invalid_proposal_config"},
	{ErrInsufficientStake, "insufficient_stake"},
	{ErrVotingClosed, "voting_closed"},
	{ErrAlreadyVoted, "already_voted"},
	{ErrInvalidBallot, "invalid_ballot"},
	{ErrInvalidStateTransition, "invalid_state_transition"},
	{ErrAlreadyExecuted, "already_executed"},
	{ErrCooldownActive, "cooldown_active"},
	{ErrUnrelinquishedVotesExist, "unrelinquished_votes_exist"},
	{ErrArithmeticOverflow, "arithmetic_overflow"},
	{ErrInvalidAmount, "invalid_amount"},
	{ErrAccountNotFound, "account_not_found"},
	{ErrAccountAlreadyExists, "account_already_exists"},
	{ErrAccountTypeMismatch, "account_type_mismatch"},
}

// ErrorKind returns a stable snake_case name for the first governance error
// found in the chain of err, or "internal" when there is none.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "internal"
}
