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

package engine

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/blinklabs-io/leapfrog/event"
	"github.com/blinklabs-io/leapfrog/governance"
)

// CreateProposalRequest raises a proposal on a realm. An empty Address gets
// a generated one, an empty ProposalOwner defaults to the signer and an
// empty GoverningTokenMint to the community mint. AutoActivate is ignored in
// favor of the engine setting.
type CreateProposalRequest struct {
	Signer governance.Address
	Realm  governance.Address
	governance.ProposalParams
}

func (e *Engine) CreateProposal(
	ctx context.Context,
	req CreateProposalRequest,
) (*governance.Proposal, error) {
	var ret *governance.Proposal
	err := e.observe(ctx, "CreateProposal", func(ctx context.Context) error {
		params := req.ProposalParams
		if params.ProposalOwner == "" {
			params.ProposalOwner = req.Signer
		}
		if err := governance.RequireSigner(req.Signer, params.ProposalOwner); err != nil {
			return err
		}
		if params.Address == "" {
			params.Address = e.newAddress()
		}
		params.AutoActivate = e.autoActivate
		realm, err := e.db.GetRealm(req.Realm, nil)
		if err != nil {
			return fmt.Errorf("load realm %s: %w", req.Realm, err)
		}
		if params.GoverningTokenMint == "" {
			params.GoverningTokenMint = realm.CommunityMint
		}
		creatorAddr := governance.TokenOwnerRecordAddress(
			realm.Address,
			params.GoverningTokenMint,
			params.ProposalOwner,
		)
		return e.update(
			ctx,
			[]governance.Address{params.Address, creatorAddr},
			func(o *op) error {
				creator, err := e.tokenOwnerRecord(creatorAddr, o.txn)
				if err != nil {
					return err
				}
				p, err := governance.NewProposal(realm, creator, params, o.now)
				if err != nil {
					return err
				}
				if err := e.db.InsertProposal(p, o.txn); err != nil {
					return err
				}
				e.publish(o, event.ProposalCreatedEventType, proposalEvent(p))
				if p.State == governance.ProposalStateActive {
					e.publish(o, event.ProposalActivatedEventType, proposalEvent(p))
				}
				o.onCommit(func() {
					e.logger.Info(
						"proposal created",
						"component", "engine",
						"realm", p.Governance,
						"proposal", p.Address,
						"owner", p.ProposalOwner,
						"state", p.State.String(),
						"voting_ends_at", p.VotingEndsAt,
					)
				})
				ret = p
				return nil
			},
		)
	}, attribute.String("realm", string(req.Realm)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

type ActivateProposalRequest struct {
	Signer   governance.Address
	Proposal governance.Address
}

// ActivateProposal opens voting on a Draft proposal. Only the proposal owner
// may activate it.
func (e *Engine) ActivateProposal(
	ctx context.Context,
	req ActivateProposalRequest,
) (*governance.Proposal, error) {
	var ret *governance.Proposal
	err := e.observe(ctx, "ActivateProposal", func(ctx context.Context) error {
		if err := governance.RequireSigner(req.Signer, ""); err != nil {
			return err
		}
		return e.update(
			ctx,
			[]governance.Address{req.Proposal},
			func(o *op) error {
				p, err := e.db.GetProposal(req.Proposal, o.txn)
				if err != nil {
					return err
				}
				if err := governance.RequireSigner(req.Signer, p.ProposalOwner); err != nil {
					return err
				}
				if err := p.Activate(o.now); err != nil {
					return err
				}
				if err := e.db.UpdateProposal(p, o.txn); err != nil {
					return err
				}
				e.publish(o, event.ProposalActivatedEventType, proposalEvent(p))
				ret = p
				return nil
			},
		)
	}, attribute.String("proposal", string(req.Proposal)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// GetProposal returns a proposal, closing it first when its voting window
// elapsed
func (e *Engine) GetProposal(
	ctx context.Context,
	address governance.Address,
) (*governance.Proposal, error) {
	var ret *governance.Proposal
	err := e.observe(ctx, "GetProposal", func(ctx context.Context) error {
		p, err := e.db.GetProposal(address, nil)
		if err != nil {
			return err
		}
		if !p.NeedsFinalization(e.clock.Now()) {
			ret = p
			return nil
		}
		ret, _, err = e.finalizeProposal(ctx, address)
		return err
	}, attribute.String("proposal", string(address)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ListProposals returns the proposals of a realm in creation order. States
// are as stored; use GetProposal for an up to date state.
func (e *Engine) ListProposals(
	ctx context.Context,
	realm governance.Address,
) ([]*governance.Proposal, error) {
	var ret []*governance.Proposal
	err := e.observe(ctx, "ListProposals", func(context.Context) error {
		var err error
		ret, err = e.db.GetProposalsByRealm(realm, nil)
		return err
	}, attribute.String("realm", string(realm)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// FinalizeProposal closes an Active proposal whose voting window elapsed.
// Anyone may finalize.
func (e *Engine) FinalizeProposal(
	ctx context.Context,
	address governance.Address,
) (*governance.Proposal, error) {
	var ret *governance.Proposal
	err := e.observe(ctx, "FinalizeProposal", func(ctx context.Context) error {
		p, changed, err := e.finalizeProposal(ctx, address)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf(
				"%w: %s proposal %s is not due for finalization",
				governance.ErrInvalidStateTransition,
				p.State,
				p.Address,
			)
		}
		ret = p
		return nil
	}, attribute.String("proposal", string(address)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (e *Engine) finalizeProposal(
	ctx context.Context,
	address governance.Address,
) (*governance.Proposal, bool, error) {
	var (
		ret     *governance.Proposal
		changed bool
	)
	err := e.update(
		ctx,
		[]governance.Address{address},
		func(o *op) error {
			p, err := e.db.GetProposal(address, o.txn)
			if err != nil {
				return err
			}
			if changed, err = e.finalize(o, p); err != nil {
				return err
			}
			ret = p
			return nil
		},
	)
	return ret, changed, err
}

// FinalizeDueProposals closes up to limit Active proposals whose voting
// window elapsed and returns how many were closed. A failure on one proposal
// does not stop the others.
func (e *Engine) FinalizeDueProposals(ctx context.Context, limit int) (int, error) {
	var count int
	err := e.observe(ctx, "FinalizeDueProposals", func(ctx context.Context) error {
		due, err := e.db.GetProposalsDue(e.clock.Now(), limit, nil)
		if err != nil {
			return err
		}
		var errs []error
		for _, p := range due {
			if err := ctx.Err(); err != nil {
				errs = append(errs, err)
				break
			}
			_, changed, err := e.finalizeProposal(ctx, p.Address)
			if err != nil {
				e.logger.Warn(
					"failed to finalize proposal",
					"component", "engine",
					"proposal", p.Address,
					"error", err,
				)
				errs = append(errs, fmt.Errorf("finalize %s: %w", p.Address, err))
				continue
			}
			if changed {
				count++
			}
		}
		return errors.Join(errs...)
	})
	return count, err
}

type ExecuteProposalRequest struct {
	Signer   governance.Address
	Proposal governance.Address
}

// ExecuteProposal dispatches the action of an Approved proposal exactly once
// and marks it Executed. A proposal whose window elapsed is finalized first;
// that finalization is kept even when the proposal is not executable or the
// dispatch fails.
func (e *Engine) ExecuteProposal(
	ctx context.Context,
	req ExecuteProposalRequest,
) (*governance.Proposal, error) {
	var ret *governance.Proposal
	err := e.observe(ctx, "ExecuteProposal", func(ctx context.Context) error {
		if err := governance.RequireSigner(req.Signer, ""); err != nil {
			return err
		}
		var execErr error
		err := e.update(
			ctx,
			[]governance.Address{req.Proposal},
			func(o *op) error {
				p, err := e.db.GetProposal(req.Proposal, o.txn)
				if err != nil {
					return err
				}
				finalized, err := e.finalize(o, p)
				if err != nil {
					return err
				}
				ret = p
				if execErr = governance.ExecuteProposal(o.ctx, p, e.dispatcher); execErr != nil {
					if finalized {
						return nil
					}
					return execErr
				}
				if err := e.db.UpdateProposal(p, o.txn); err != nil {
					return err
				}
				e.publish(o, event.ProposalExecutedEventType, proposalEvent(p))
				o.onCommit(func() {
					e.metrics.proposalExecuted()
					e.logger.Info(
						"proposal executed",
						"component", "engine",
						"proposal", p.Address,
						"signer", req.Signer,
					)
				})
				return nil
			},
		)
		if err != nil {
			if execErr == nil && errors.Is(err, errCommitFailed) {
				// The action already ran but the Executed state was lost
				e.logger.Error(
					"proposal action dispatched but not recorded",
					"component", "engine",
					"proposal", req.Proposal,
					"error", err,
				)
			}
			return err
		}
		return execErr
	}, attribute.String("proposal", string(req.Proposal)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}
