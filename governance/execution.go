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
	"context"
	"fmt"
)

// CheckExecutable returns nil when the proposal may be executed
func CheckExecutable(p *Proposal) error {
	switch p.State {
	case ProposalStateApproved:
		return nil
	case ProposalStateExecuted:
		return fmt.Errorf("%w: %s", ErrAlreadyExecuted, p.Address)
	default:
		return fmt.Errorf(
			"%w: cannot execute %s proposal %s",
			ErrInvalidStateTransition,
			p.State,
			p.Address,
		)
	}
}

// ExecuteProposal dispatches the action of an Approved proposal and marks it
// Executed. The proposal stays Approved if the dispatch fails.
func ExecuteProposal(
	ctx context.Context,
	p *Proposal,
	dispatcher ActionDispatcher,
) error {
	if err := CheckExecutable(p); err != nil {
		return err
	}
	if dispatcher != nil {
		if err := dispatcher.Dispatch(ctx, p.Address, p.Action); err != nil {
			return fmt.Errorf("dispatch proposal %s: %w", p.Address, err)
		}
	}
	p.State = ProposalStateExecuted
	return nil
}
