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


package tokenledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/blinklabs-io/leapfrog/governance"
)

// Memory is an in-process ledger
type Memory struct {
	balances map[governance.Address]map[governance.Address]uint64
	supply   map[governance.Address]uint64
	mu       sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{
		balances: make(map[governance.Address]map[governance.Address]uint64),
		supply:   make(map[governance.Address]uint64),
	}
}

func (m *Memory) Seed(allocations []Allocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mints, byMint := groupAllocations(allocations)
	for _, mint := range mints {
		if m.supply[mint] > 0 {
			continue
		}
		for _, a := range byMint[mint] {
			if a.Amount == 0 || a.Account == "" {
				return fmt.Errorf("%w: allocation of %s", governance.ErrInvalidAmount, mint)
			}
			supply, err := credit(m.supply[mint], a.Amount)
			if err != nil {
				return fmt.Errorf("seed %s: %w", mint, err)
			}
			m.supply[mint] = supply
			// Balances never exceed supply
			m.account(mint)[a.Account] += a.Amount
		}
	}
	return nil
}

func (m *Memory) account(mint governance.Address) map[governance.Address]uint64 {
	accounts, ok := m.balances[mint]
	if !ok {
		accounts = make(map[governance.Address]uint64)
		m.balances[mint] = accounts
	}
	return accounts
}

func (m *Memory) transfer(
	ctx context.Context,
	mint, from, to governance.Address,
	amount uint64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkTransfer(mint, from, to, amount); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	accounts := m.account(mint)
	fromBalance, err := debit(accounts[from], amount, from)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	toBalance, err := credit(accounts[to], amount)
	if err != nil {
		return err
	}
	accounts[from] = fromBalance
	accounts[to] = toBalance
	return nil
}

func (m *Memory) Deposit(
	ctx context.Context,
	mint, from, vault governance.Address,
	amount uint64,
) error {
	return m.transfer(ctx, mint, from, vault, amount)
}

func (m *Memory) Withdraw(
	ctx context.Context,
	mint, vault, to governance.Address,
	amount uint64,
) error {
	return m.transfer(ctx, mint, vault, to, amount)
}

func (m *Memory) BalanceOf(
	ctx context.Context,
	mint, account governance.Address,
) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[mint][account], nil
}

func (m *Memory) Supply(ctx context.Context, mint governance.Address) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.supply[mint], nil
}

// Balances returns every nonzero balance of mint keyed by account
func (m *Memory) Balances(
	ctx context.Context,
	mint governance.Address,
) (map[governance.Address]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ret := make(map[governance.Address]uint64)
	for account, balance := range m.balances[mint] {
		if balance > 0 {
			ret[account] = balance
		}
	}
	return ret, nil
}
