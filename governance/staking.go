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
	"math"
)

// TokenOwnerRecord is one owner's staked deposit on a realm mint
type TokenOwnerRecord struct {
	Address                     Address
	Realm                       Address
	GoverningTokenMint          Address
	GoverningTokenOwner         Address
	GoverningTokenDepositAmount uint64
	UnrelinquishedVotesCount    uint32
	EarliestUnstakingTime       uint64
}

// NewTokenOwnerRecord returns an empty record at its derived address
func NewTokenOwnerRecord(realm, mint, owner Address) *TokenOwnerRecord {
	return &TokenOwnerRecord{
		Address:             TokenOwnerRecordAddress(realm, mint, owner),
		Realm:               realm,
		GoverningTokenMint:  mint,
		GoverningTokenOwner: owner,
	}
}

// Stake adds amount to the deposit. Staking never touches the cooldown.
func (r *TokenOwnerRecord) Stake(amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("%w: stake amount must be positive", ErrInvalidAmount)
	}
	deposit, err := checkedAdd(r.GoverningTokenDepositAmount, amount)
	if err != nil {
		return fmt.Errorf("stake: %w", err)
	}
	r.GoverningTokenDepositAmount = deposit
	return nil
}

// Unstake removes amount from the deposit and restarts the cooldown.
// locked is the stake still committed to unrelinquished votes on this
// realm mint.
func (r *TokenOwnerRecord) Unstake(amount, locked, now, cooldown uint64) error {
	if amount == 0 {
		return fmt.Errorf("%w: unstake amount must be positive", ErrInvalidAmount)
	}
	if amount > r.GoverningTokenDepositAmount {
		return fmt.Errorf(
			"%w: unstake %d exceeds deposit %d",
			ErrInsufficientStake,
			amount,
			r.GoverningTokenDepositAmount,
		)
	}
	remaining := r.GoverningTokenDepositAmount - amount
	if r.UnrelinquishedVotesCount > 0 && remaining < locked {
		return fmt.Errorf(
			"%w: %d votes lock %d, %d would remain",
			ErrUnrelinquishedVotesExist,
			r.UnrelinquishedVotesCount,
			locked,
			remaining,
		)
	}
	if now < r.EarliestUnstakingTime {
		return fmt.Errorf(
			"%w: next unstake allowed at %d",
			ErrCooldownActive,
			r.EarliestUnstakingTime,
		)
	}
	earliest, err := checkedAdd(now, cooldown)
	if err != nil {
		return fmt.Errorf("unstake cooldown: %w", err)
	}
	r.GoverningTokenDepositAmount = remaining
	r.EarliestUnstakingTime = earliest
	return nil
}

func (r *TokenOwnerRecord) incrementVotes() (uint32, error) {
	if r.UnrelinquishedVotesCount == math.MaxUint32 {
		return 0, fmt.Errorf("%w: unrelinquished votes count", ErrArithmeticOverflow)
	}
	return r.UnrelinquishedVotesCount + 1, nil
}

func (r *TokenOwnerRecord) decrementVotes() (uint32, error) {
	if r.UnrelinquishedVotesCount == 0 {
		return 0, fmt.Errorf("%w: unrelinquished votes count", ErrArithmeticOverflow)
	}
	return r.UnrelinquishedVotesCount - 1, nil
}

// LockedStake sums the stake of the non-relinquished votes in records
func LockedStake(records []*VoteRecord) (uint64, error) {
	var total uint64
	for _, rec := range records {
		if rec == nil || rec.IsRelinquished {
			continue
		}
		var err error
		total, err = checkedAdd(total, rec.StakeAmount)
		if err != nil {
			return 0, fmt.Errorf("locked stake: %w", err)
		}
	}
	return total, nil
}
