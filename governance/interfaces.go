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

// Clock is a monotonic timestamp source in unix seconds
type Clock interface {
	Now() uint64
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() uint64

func (f ClockFunc) Now() uint64 {
	return f()
}

// TokenLedger is the external custodian of raw token balances
type TokenLedger interface {
	// Deposit moves amount of mint from an owner account into a vault
	Deposit(ctx context.Context, mint, from, vault Address, amount uint64) error
	// Withdraw moves amount of mint from a vault back to an owner account
	Withdraw(ctx context.Context, mint, vault, to Address, amount uint64) error
	BalanceOf(ctx context.Context, mint, account Address) (uint64, error)
	Supply(ctx context.Context, mint Address) (uint64, error)
}

// ActionDispatcher runs the opaque action attached to an approved proposal
type ActionDispatcher interface {
	Dispatch(ctx context.Context, proposal Address, action []byte) error
}

// ActionDispatcherFunc adapts a function to the ActionDispatcher interface
type ActionDispatcherFunc func(ctx context.Context, proposal Address, action []byte) error

func (f ActionDispatcherFunc) Dispatch(
	ctx context.Context,
	proposal Address,
	action []byte,
) error {
	return f(ctx, proposal, action)
}

// RequireSigner checks that a signer is present and, when owner is not
// empty, that it is the owner
func RequireSigner(signer, owner Address) error {
	if signer == "" {
		return fmt.Errorf("%w: no signer", ErrMissingAuthorization)
	}
	if owner != "" && signer != owner {
		return fmt.Errorf(
			"%w: signer %s is not owner %s",
			ErrMissingAuthorization,
			signer,
			owner,
		)
	}
	return nil
}
