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

package types

import (
	"encoding/binary"
	"slices"
)

const (
	AccountBlobKeyPrefix       = "ac"
	LedgerBalanceBlobKeyPrefix = "lb"
	LedgerSupplyBlobKeyPrefix  = "ls"
	CommitTimestampBlobKey     = "metadata_commit_timestamp"
)

// keySeparator never appears in addresses, so composite keys cannot collide
const keySeparator = 0x00

func Uint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

func BytesToUint64(input []byte) uint64 {
	if len(input) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(input)
}

// AccountBlobKey is the key of a persisted account image. Accounts of all
// types share one address space, and the image carries its own type tag.
func AccountBlobKey(address string) []byte {
	return slices.Concat([]byte(AccountBlobKeyPrefix), []byte(address))
}

// LedgerBalanceBlobKey is the key of a token balance in the blob ledger
func LedgerBalanceBlobKey(mint, account string) []byte {
	return slices.Concat(
		LedgerBalanceBlobKeyMintPrefix(mint),
		[]byte(account),
	)
}

// LedgerBalanceBlobKeyMintPrefix matches every balance of one mint
func LedgerBalanceBlobKeyMintPrefix(mint string) []byte {
	return slices.Concat(
		[]byte(LedgerBalanceBlobKeyPrefix),
		[]byte(mint),
		[]byte{keySeparator},
	)
}

// LedgerSupplyBlobKey is the key of a mint's total supply in the blob ledger
func LedgerSupplyBlobKey(mint string) []byte {
	return slices.Concat([]byte(LedgerSupplyBlobKeyPrefix), []byte(mint))
}
