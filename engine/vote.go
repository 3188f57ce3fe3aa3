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
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/blinklabs-io/leapfrog/event"
	"github.com/blinklabs-io/leapfrog/governance"
)

// CastVoteRequest votes StakedAmount of the owner's deposit on a proposal.
// An empty Owner defaults to the signer.
type CastVoteRequest struct {
	Signer       governance.Address
	Proposal     governance.Address
	Owner        governance.Address
	Ballot       governance.Ballot
	StakedAmount uint64
}

func (e *Engine) CastVote(
	ctx context.Context,
	req CastVoteRequest,
) (*governance.VoteRecord, error) {
	var ret *governance.VoteRecord
	err := e.observe(ctx, "CastVote", func(ctx context.Context) error {
		owner := req.Owner
		if owner == "" {
			owner = req.Signer
		}
		if err := governance.RequireSigner(req.Signer, owner); err != nil {
			return err
		}
		// Realm and mint of a proposal never change, so the voter record
		// address can be derived before locking
		p, err := e.db.GetProposal(req.Proposal, nil)
		if err != nil {
			return err
		}
		voterAddr := governance.TokenOwnerRecordAddress(
			p.Governance,
			p.GoverningTokenMint,
			owner,
		)
		recordAddr := e.newAddress()
		return e.update(
			ctx,
			[]governance.Address{req.Proposal, voterAddr},
			func(o *op) error {
				p, err := e.db.GetProposal(req.Proposal, o.txn)
				if err != nil {
					return err
				}
				realm, err := e.db.GetRealm(p.Governance, o.txn)
				if err != nil {
					return fmt.Errorf("load realm %s: %w", p.Governance, err)
				}
				voter, err := e.tokenOwnerRecord(voterAddr, o.txn)
				if err != nil {
					return err
				}
				active, err := e.db.GetActiveVoteRecord(p.Address, owner, o.txn)
				if err != nil {
					return err
				}
				record, err := governance.CastVote(realm, p, voter, governance.CastVoteParams{
					RecordAddress: recordAddr,
					Ballot:        req.Ballot,
					StakedAmount:  req.StakedAmount,
					HasActiveVote: active != nil,
					Now:           o.now,
				})
				if err != nil {
					return err
				}
				if err := e.db.UpdateProposal(p, o.txn); err != nil {
					return err
				}
				if err := e.db.SetTokenOwnerRecord(voter, o.txn); err != nil {
					return err
				}
				if err := e.db.InsertVoteRecord(record, o.txn); err != nil {
					return err
				}
				e.publish(o, event.VoteCastEventType, voteEvent(record))
				o.onCommit(func() {
					e.metrics.voteCast(record.VoteWeight)
					e.logger.Debug(
						"vote cast",
						"component", "engine",
						"proposal", record.Proposal,
						"vote_record", record.Address,
						"owner", record.GoverningTokenOwner,
						"vote_weight", record.VoteWeight,
					)
				})
				ret = record
				return nil
			},
		)
	}, attribute.String("proposal", string(req.Proposal)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

type RelinquishVoteRequest struct {
	Signer     governance.Address
	VoteRecord governance.Address
}

// RelinquishVote releases the stake locked by a vote. While the proposal
// accepts votes its tallies drop the vote; a proposal whose window elapsed
// is finalized first so the outcome keeps the vote.
func (e *Engine) RelinquishVote(
	ctx context.Context,
	req RelinquishVoteRequest,
) (*governance.VoteRecord, error) {
	var ret *governance.VoteRecord
	err := e.observe(ctx, "RelinquishVote", func(ctx context.Context) error {
		if err := governance.RequireSigner(req.Signer, ""); err != nil {
			return err
		}
		record, err := e.db.GetVoteRecord(req.VoteRecord, nil)
		if err != nil {
			return err
		}
		if err := governance.RequireSigner(req.Signer, record.GoverningTokenOwner); err != nil {
			return err
		}
		voterAddr := governance.TokenOwnerRecordAddress(
			record.Realm,
			record.GoverningTokenMint,
			record.GoverningTokenOwner,
		)
		return e.update(
			ctx,
			[]governance.Address{record.Proposal, voterAddr},
			func(o *op) error {
				record, err := e.db.GetVoteRecord(req.VoteRecord, o.txn)
				if err != nil {
					return err
				}
				p, err := e.db.GetProposal(record.Proposal, o.txn)
				if err != nil {
					return err
				}
				if _, err := e.finalize(o, p); err != nil {
					return err
				}
				voter, err := e.db.GetTokenOwnerRecord(voterAddr, o.txn)
				if err != nil {
					return err
				}
				tallied := p.VotingOpen(o.now)
				if err := governance.RelinquishVote(p, voter, record, o.now); err != nil {
					return err
				}
				if tallied {
					if err := e.db.UpdateProposal(p, o.txn); err != nil {
						return err
					}
				}
				if err := e.db.SetTokenOwnerRecord(voter, o.txn); err != nil {
					return err
				}
				if err := e.db.UpdateVoteRecord(record, o.txn); err != nil {
					return err
				}
				e.publish(o, event.VoteRelinquishedEventType, voteEvent(record))
				ret = record
				return nil
			},
		)
	}, attribute.String("vote_record", string(req.VoteRecord)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (e *Engine) GetVoteRecord(
	ctx context.Context,
	address governance.Address,
) (*governance.VoteRecord, error) {
	var ret *governance.VoteRecord
	err := e.observe(ctx, "GetVoteRecord", func(context.Context) error {
		var err error
		ret, err = e.db.GetVoteRecord(address, nil)
		return err
	}, attribute.String("vote_record", string(address)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ListVoteRecords returns every vote cast on a proposal, relinquished ones
// included
func (e *Engine) ListVoteRecords(
	ctx context.Context,
	proposal governance.Address,
) ([]*governance.VoteRecord, error) {
	var ret []*governance.VoteRecord
	err := e.observe(ctx, "ListVoteRecords", func(context.Context) error {
		if _, err := e.db.GetProposal(proposal, nil); err != nil {
			return err
		}
		var err error
		ret, err = e.db.GetVoteRecordsByProposal(proposal, nil)
		return err
	}, attribute.String("proposal", string(proposal)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func voteEvent(record *governance.VoteRecord) event.VoteEvent {
	return event.VoteEvent{
		Realm:      string(record.Realm),
		Proposal:   string(record.Proposal),
		VoteRecord: string(record.Address),
		Owner:      string(record.GoverningTokenOwner),
		VoteWeight: record.VoteWeight,
	}
}
