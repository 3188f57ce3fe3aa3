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


package tokenledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/leapfrog/database/plugin/blob/badger"
	"github.com/blinklabs-io/leapfrog/governance"
	"github.com/blinklabs-io/leapfrog/tokenledger"
)

var testAllocations = []tokenledger.Allocation{
	{Mint: "community", Account: "alice", Amount: 1000},
	{Mint: "community", Account: "bob", Amount: 500},
	{Mint: "council", Account: "carol", Amount: 1},
}

func ledgers(t *testing.T) map[string]tokenledger.Ledger {
	t.Helper()
	store, err := badger.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return map[string]tokenledger.Ledger{
		"memory": tokenledger.NewMemory(),
		"blob":   tokenledger.NewBlob(store, nil),
	}
}

func TestLedgerSeed(t *testing.T) {
	ctx := context.Background()
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, l.Seed(testAllocations))
			supply, err := l.Supply(ctx, "community")
			require.NoError(t, err)
			assert.Equal(t, uint64(1500), supply)
			balance, err := l.BalanceOf(ctx, "community", "alice")
			require.NoError(t, err)
			assert.Equal(t, uint64(1000), balance)

			// Seeding again does not credit twice
			require.NoError(t, l.Seed(testAllocations))
			supply, err = l.Supply(ctx, "community")
			require.NoError(t, err)
			assert.Equal(t, uint64(1500), supply)

			balances, err := l.Balances(ctx, "community")
			require.NoError(t, err)
			assert.Equal(t, map[governance.Address]uint64{"alice": 1000, "bob": 500}, balances)

			err = l.Seed([]tokenledger.Allocation{{Mint: "other", Account: "x"}})
			require.ErrorIs(t, err, governance.ErrInvalidAmount)
		})
	}
}

func TestLedgerTransfer(t *testing.T) {
	ctx := context.Background()
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, l.Seed(testAllocations))
			vault := governance.VaultAddress("realm", "community")
			require.NoError(t, l.Deposit(ctx, "community", "alice", vault, 400))

			balance, err := l.BalanceOf(ctx, "community", "alice")
			require.NoError(t, err)
			assert.Equal(t, uint64(600), balance)
			balance, err = l.BalanceOf(ctx, "community", vault)
			require.NoError(t, err)
			assert.Equal(t, uint64(400), balance)

			require.NoError(t, l.Withdraw(ctx, "community", vault, "alice", 150))
			balance, err = l.BalanceOf(ctx, "community", vault)
			require.NoError(t, err)
			assert.Equal(t, uint64(250), balance)

			err = l.Deposit(ctx, "community", "bob", vault, 501)
			require.ErrorIs(t, err, tokenledger.ErrInsufficientBalance)
			err = l.Deposit(ctx, "community", "bob", vault, 0)
			require.ErrorIs(t, err, governance.ErrInvalidAmount)
			err = l.Withdraw(ctx, "council", vault, "carol", 1)
			require.ErrorIs(t, err, tokenledger.ErrInsufficientBalance)

			// Transfers never change supply
			supply, err := l.Supply(ctx, "community")
			require.NoError(t, err)
			assert.Equal(t, uint64(1500), supply)
		})
	}
}

func TestLedgerCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			err := l.Deposit(ctx, "community", "alice", "vault", 1)
			require.ErrorIs(t, err, context.Canceled)
			_, err = l.Supply(ctx, "community")
			require.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestLedgerConcurrentTransfers(t *testing.T) {
	ctx := context.Background()
	for name, l := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, l.Seed(testAllocations))
			var wg sync.WaitGroup
			errs := make(chan error, 20)
			for range 20 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs <- l.Deposit(ctx, "community", "alice", "vault", 10)
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}
			balance, err := l.BalanceOf(ctx, "community", "vault")
			require.NoError(t, err)
			assert.Equal(t, uint64(200), balance)
			balance, err = l.BalanceOf(ctx, "community", "alice")
			require.NoError(t, err)
			assert.Equal(t, uint64(800), balance)
		})
	}
}
