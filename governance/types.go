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
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const (
	// FractionDenominator is the denominator applied to
	// SupplyFraction max vote weight sources. A fraction equal to the
	// denominator means the full mint supply.
	FractionDenominator uint64 = 10_000_000_000

	// SecondsPerDay converts voting_period_days into a window length
	SecondsPerDay uint64 = 86400

	// MaxOptions bounds the number of proposal options so every option
	// index fits in a uint8
	MaxOptions = 255

	// ReservedSize is the trailing padding carried by every persisted
	// account layout
	ReservedSize = 64
)

// Address identifies an entity (realm, proposal, record, mint or owner).
// Addresses are supplied by the dispatcher and never resolved here.
type Address string

func (a Address) String() string {
	return string(a)
}

// AccountType tags persisted entities so structurally similar records
// cannot be confused at the storage boundary
type AccountType uint8

const (
	AccountTypeUninitialized AccountType = iota
	AccountTypeRealm
	AccountTypeProposal
	AccountTypeTokenOwnerRecord
	AccountTypeVoteRecord
)

func (t AccountType) String() string {
	switch t {
	case AccountTypeUninitialized:
		return "Uninitialized"
	case AccountTypeRealm:
		return "Realm"
	case AccountTypeProposal:
		return "Proposal"
	case AccountTypeTokenOwnerRecord:
		return "TokenOwnerRecord"
	case AccountTypeVoteRecord:
		return "VoteRecord"
	default:
		return fmt.Sprintf("AccountType(%d)", uint8(t))
	}
}

// OptionalAddress is a tagged optional address
type OptionalAddress struct {
	value   Address
	present bool
}

// SomeAddress returns a present OptionalAddress
func SomeAddress(a Address) OptionalAddress {
	return OptionalAddress{value: a, present: true}
}

// NoAddress returns an absent OptionalAddress
func NoAddress() OptionalAddress {
	return OptionalAddress{}
}

// Get returns the address and whether it is present
func (o OptionalAddress) Get() (Address, bool) {
	return o.value, o.present
}

// IsPresent returns true if the address is present
func (o OptionalAddress) IsPresent() bool {
	return o.present
}

// Is returns true if the address is present and equal to a
func (o OptionalAddress) Is(a Address) bool {
	return o.present && o.value == a
}

// TokenOwnerRecordAddress derives the address of the token owner record for
// (realm, mint, owner). The derivation is deterministic so dispatchers can
// compute it without a lookup.
func TokenOwnerRecordAddress(realm, mint, owner Address) Address {
	h, _ := blake2b.New256(nil)
	for _, seed := range []string{
		"token-owner-record",
		string(realm),
		string(mint),
		string(owner),
	} {
		// Length-prefix each seed so adjacent seeds cannot be shifted
		h.Write([]byte{byte(len(seed) >> 8), byte(len(seed))})
		h.Write([]byte(seed))
	}
	return Address(hex.EncodeToString(h.Sum(nil)))
}

// VaultAddress is the token account holding deposits staked on a realm mint
func VaultAddress(realm, mint Address) Address {
	return Address("vault/" + string(realm) + "/" + string(mint))
}
