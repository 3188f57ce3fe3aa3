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

// StakeRequest moves Amount of Mint from the owner into the realm vault, or
// back for UnstakeTokens. An empty Owner defaults to the signer and an empty
// Mint to the community mint.
type StakeRequest struct {
	Signer governance.Address
	Realm  governance.Address
	Mint   governance.Address
	Owner  governance.Address
	Amount uint64
}

// StakeTokens deposits tokens and credits them to the owner's token owner
// record, creating it on first stake
func (e *Engine) StakeTokens(
	ctx context.Context,
	req StakeRequest,
) (*governance.TokenOwnerRecord, error) {
	var ret *governance.TokenOwnerRecord
	err := e.observe(ctx, "StakeTokens", func(ctx context.Context) error {
		req, err := e.resolveStake(req)
		if err != nil {
			return err
		}
		addr := governance.TokenOwnerRecordAddress(req.Realm, req.Mint, req.Owner)
		return e.update(ctx, []governance.Address{addr}, func(o *op) error {
			record, err := e.tokenOwnerRecord(addr, o.txn)
			if err != nil {
				return err
			}
			if record == nil {
				record = governance.NewTokenOwnerRecord(req.Realm, req.Mint, req.Owner)
			}
			if err := record.Stake(req.Amount); err != nil {
				return err
			}
			if err := e.db.SetTokenOwnerRecord(record, o.txn); err != nil {
				return err
			}
			o.transfer(transfer{
				mint:    req.Mint,
				owner:   req.Owner,
				vault:   governance.VaultAddress(req.Realm, req.Mint),
				amount:  req.Amount,
				deposit: true,
			})
			e.publish(o, event.TokensStakedEventType, stakeEvent(record, req.Amount))
			ret = record
			return nil
		})
	}, attribute.String("realm", string(req.Realm)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// UnstakeTokens withdraws tokens not locked by unrelinquished votes once the
// cooldown of the previous unstake elapsed, and restarts the cooldown
func (e *Engine) UnstakeTokens(
	ctx context.Context,
	req StakeRequest,
) (*governance.TokenOwnerRecord, error) {
	var ret *governance.TokenOwnerRecord
	err := e.observe(ctx, "UnstakeTokens", func(ctx context.Context) error {
		req, err := e.resolveStake(req)
		if err != nil {
			return err
		}
		addr := governance.TokenOwnerRecordAddress(req.Realm, req.Mint, req.Owner)
		return e.update(ctx, []governance.Address{addr}, func(o *op) error {
			record, err := e.tokenOwnerRecord(addr, o.txn)
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf(
					"%w: %s has no deposit on %s",
					governance.ErrInsufficientStake,
					req.Owner,
					req.Mint,
				)
			}
			var locked uint64
			if record.UnrelinquishedVotesCount > 0 {
				votes, err := e.db.GetActiveVoteRecordsByOwner(
					req.Realm,
					req.Mint,
					req.Owner,
					o.txn,
				)
				if err != nil {
					return err
				}
				if locked, err = governance.LockedStake(votes); err != nil {
					return err
				}
			}
			if err := record.Unstake(req.Amount, locked, o.now, e.cooldownSeconds()); err != nil {
				return err
			}
			if err := e.db.SetTokenOwnerRecord(record, o.txn); err != nil {
				return err
			}
			o.transfer(transfer{
				mint:   req.Mint,
				owner:  req.Owner,
				vault:  governance.VaultAddress(req.Realm, req.Mint),
				amount: req.Amount,
			})
			e.publish(o, event.TokensUnstakedEventType, stakeEvent(record, req.Amount))
			ret = record
			return nil
		})
	}, attribute.String("realm", string(req.Realm)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (e *Engine) resolveStake(req StakeRequest) (StakeRequest, error) {
	if req.Owner == "" {
		req.Owner = req.Signer
	}
	if err := governance.RequireSigner(req.Signer, req.Owner); err != nil {
		return req, err
	}
	if req.Amount == 0 {
		return req, fmt.Errorf("%w: amount must be positive", governance.ErrInvalidAmount)
	}
	realm, err := e.db.GetRealm(req.Realm, nil)
	if err != nil {
		return req, fmt.Errorf("load realm %s: %w", req.Realm, err)
	}
	if req.Mint == "" {
		req.Mint = realm.CommunityMint
	}
	if err := realm.CheckGoverningMint(req.Mint); err != nil {
		return req, err
	}
	return req, nil
}

func (e *Engine) GetTokenOwnerRecord(
	ctx context.Context,
	address governance.Address,
) (*governance.TokenOwnerRecord, error) {
	var ret *governance.TokenOwnerRecord
	err := e.observe(ctx, "GetTokenOwnerRecord", func(context.Context) error {
		var err error
		ret, err = e.db.GetTokenOwnerRecord(address, nil)
		return err
	}, attribute.String("token_owner_record", string(address)))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ListTokenOwnerRecords returns the records of owner across realms and mints
func (e *Engine) ListTokenOwnerRecords(
	ctx context.Context,
	owner governance.Address,
) ([]*governance.TokenOwnerRecord, error) {
	var ret []*governance.TokenOwnerRecord
	err := e.observe(ctx, "ListTokenOwnerRecords", func(context.Context) error {
		var err error
		ret, err = e.db.GetTokenOwnerRecordsByOwner(owner, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func stakeEvent(record *governance.TokenOwnerRecord, amount uint64) event.StakeEvent {
	return event.StakeEvent{
		Realm:            string(record.Realm),
		Mint:             string(record.GoverningTokenMint),
		Owner:            string(record.GoverningTokenOwner),
		TokenOwnerRecord: string(record.Address),
		Amount:           amount,
		Deposit:          record.GoverningTokenDepositAmount,
	}
}
