// Copyright 2025 Blink Labs Software
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


// Package tokenledger provides token custodians for the governance engine.
// Both implementations only move existing balances: tokens enter a ledger
// through genesis allocations.
package tokenledger

import (
	"context"
	"errors"
	"fmt"
	"math/bits"

	"github.com/blinklabs-io/leapfrog/governance"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// Allocation credits Amount of Mint to Account when a ledger is seeded
type Allocation struct {
	Mint    governance.Address `yaml:"mint"    json:"mint"`
	Account governance.Address `yaml:"account" json:"account"`
	Amount  uint64             `yaml:"amount"  json:"amount"`
}

// Ledger is a governance.TokenLedger that can be seeded with allocations
type Ledger interface {
	governance.TokenLedger
	// Seed applies allocations for mints that hold no supply yet, so
	// restarting a persistent ledger does not credit them twice
	Seed(allocations []Allocation) error
	// Balances returns every nonzero balance of a mint
	Balances(ctx context.Context, mint governance.Address) (map[governance.Address]uint64, error)
}

func checkTransfer(mint, from, to governance.Address, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("%w: transfer amount must be positive", governance.ErrInvalidAmount)
	}
	if mint == "" || from == "" || to == "" {
		return fmt.Errorf("%w: transfer needs mint and accounts", governance.ErrInvalidAmount)
	}
	return nil
}

func debit(balance, amount uint64, account governance.Address) (uint64, error) {
	if balance < amount {
		return 0, fmt.Errorf(
			"%w: %s holds %d, needs %d",
			ErrInsufficientBalance,
			account,
			balance,
			amount,
		)
	}
	return balance - amount, nil
}

func credit(balance, amount uint64) (uint64, error) {
	sum, carry := bits.Add64(balance, amount, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: balance", governance.ErrArithmeticOverflow)
	}
	return sum, nil
}

// groupAllocations groups allocations by mint preserving order
func groupAllocations(allocations []Allocation) ([]governance.Address, map[governance.Address][]Allocation) {
	var mints []governance.Address
	ret := make(map[governance.Address][]Allocation)
	for _, a := range allocations {
		if _, ok := ret[a.Mint]; !ok {
			mints = append(mints, a.Mint)
		}
		ret[a.Mint] = append(ret[a.Mint], a)
	}
	return mints, ret
}
