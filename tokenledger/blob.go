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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/leapfrog/database/plugin/blob"
	"github.com/blinklabs-io/leapfrog/database/types"
	"github.com/blinklabs-io/leapfrog/governance"
)

const (
	DefaultMaxRetries   = 100
	DefaultRetryBackoff = time.Millisecond
)

// Blob keeps balances in a blob store. Each transfer runs in its own blob
// transaction and is retried when it conflicts with a concurrent transfer.
type Blob struct {
	store      blob.BlobStore
	logger     *slog.Logger
	maxRetries int
}

// NewBlob creates a ledger on store
func NewBlob(store blob.BlobStore, logger *slog.Logger) *Blob {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Blob{
		store:      store,
		logger:     logger,
		maxRetries: DefaultMaxRetries,
	}
}

func (b *Blob) getUint64(txn types.Txn, key []byte) (uint64, error) {
	val, err := b.store.Get(txn, key)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return types.BytesToUint64(val), nil
}

func (b *Blob) setUint64(txn types.Txn, key []byte, val uint64) error {
	return b.store.Set(txn, key, types.Uint64ToBytes(val))
}

// update runs fn in a read-write blob transaction, retrying on conflict
func (b *Blob) update(ctx context.Context, fn func(types.Txn) error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		txn := b.store.NewTransaction(true)
		err := fn(txn)
		if err == nil {
			err = txn.Commit()
		}
		if err == nil {
			return nil
		}
		_ = txn.Rollback()
		if !errors.Is(err, types.ErrBlobTxnConflict) || attempt >= b.maxRetries {
			return err
		}
		b.logger.Debug(
			"ledger transaction conflict, retrying",
			"component", "tokenledger",
			"attempt", attempt+1,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(DefaultRetryBackoff * time.Duration(attempt%10+1)):
		}
	}
}

// Seed applies allocations for mints without a recorded supply
func (b *Blob) Seed(allocations []Allocation) error {
	mints, byMint := groupAllocations(allocations)
	for _, mint := range mints {
		err := b.update(context.Background(), func(txn types.Txn) error {
			supplyKey := types.LedgerSupplyBlobKey(string(mint))
			supply, err := b.getUint64(txn, supplyKey)
			if err != nil {
				return err
			}
			if supply > 0 {
				return nil
			}
			balances := make(map[governance.Address]uint64)
			for _, a := range byMint[mint] {
				if a.Amount == 0 || a.Account == "" {
					return fmt.Errorf("%w: allocation of %s", governance.ErrInvalidAmount, mint)
				}
				if supply, err = credit(supply, a.Amount); err != nil {
					return err
				}
				balances[a.Account] += a.Amount
			}
			for account, amount := range balances {
				if err := b.setUint64(
					txn,
					types.LedgerBalanceBlobKey(string(mint), string(account)),
					amount,
				); err != nil {
					return err
				}
			}
			return b.setUint64(txn, supplyKey, supply)
		})
		if err != nil {
			return fmt.Errorf("seed %s: %w", mint, err)
		}
		b.logger.Debug(
			"seeded ledger mint",
			"component", "tokenledger",
			"mint", mint,
		)
	}
	return nil
}

func (b *Blob) transfer(
	ctx context.Context,
	mint, from, to governance.Address,
	amount uint64,
) error {
	if err := checkTransfer(mint, from, to, amount); err != nil {
		return err
	}
	return b.update(ctx, func(txn types.Txn) error {
		fromKey := types.LedgerBalanceBlobKey(string(mint), string(from))
		toKey := types.LedgerBalanceBlobKey(string(mint), string(to))
		fromBalance, err := b.getUint64(txn, fromKey)
		if err != nil {
			return err
		}
		newFrom, err := debit(fromBalance, amount, from)
		if err != nil {
			return err
		}
		if from == to {
			return nil
		}
		toBalance, err := b.getUint64(txn, toKey)
		if err != nil {
			return err
		}
		newTo, err := credit(toBalance, amount)
		if err != nil {
			return err
		}
		if err := b.setUint64(txn, fromKey, newFrom); err != nil {
			return err
		}
		return b.setUint64(txn, toKey, newTo)
	})
}

func (b *Blob) Deposit(
	ctx context.Context,
	mint, from, vault governance.Address,
	amount uint64,
) error {
	return b.transfer(ctx, mint, from, vault, amount)
}

func (b *Blob) Withdraw(
	ctx context.Context,
	mint, vault, to governance.Address,
	amount uint64,
) error {
	return b.transfer(ctx, mint, vault, to, amount)
}

func (b *Blob) read(ctx context.Context, key []byte) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	txn := b.store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	return b.getUint64(txn, key)
}

func (b *Blob) BalanceOf(
	ctx context.Context,
	mint, account governance.Address,
) (uint64, error) {
	return b.read(ctx, types.LedgerBalanceBlobKey(string(mint), string(account)))
}

func (b *Blob) Supply(ctx context.Context, mint governance.Address) (uint64, error) {
	return b.read(ctx, types.LedgerSupplyBlobKey(string(mint)))
}

// Balances returns every nonzero balance of mint keyed by account
func (b *Blob) Balances(
	ctx context.Context,
	mint governance.Address,
) (map[governance.Address]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := b.store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	prefix := types.LedgerBalanceBlobKeyMintPrefix(string(mint))
	iter := b.store.NewIterator(txn, types.BlobIteratorOptions{Prefix: prefix})
	defer iter.Close()
	ret := make(map[governance.Address]uint64)
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		if balance := types.BytesToUint64(val); balance > 0 {
			account := bytes.TrimPrefix(item.Key(), prefix)
			ret[governance.Address(account)] = balance
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}
