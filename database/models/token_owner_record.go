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
package models

import (
	"github.com/blinklabs-io/leapfrog/database/types"
	"github.com/blinklabs-io/leapfrog/governance"
)

type TokenOwnerRecord struct {
	ID                       uint         `gorm:"primarykey"`
	Address                  string       `gorm:"uniqueIndex;size:128;not null"`
	Realm                    string       `gorm:"index:idx_tor_owner,priority:1;size:128;not null"`
	GoverningTokenMint       string       `gorm:"index:idx_tor_owner,priority:2;size:128;not null"`
	GoverningTokenOwner      string       `gorm:"index:idx_tor_owner,priority:3;size:128;not null"`
	DepositAmount            types.Uint64 `gorm:"not null"`
	UnrelinquishedVotesCount uint32       `gorm:"not null"`
	EarliestUnstakingTime    uint64       `gorm:"not null"`
}

func (TokenOwnerRecord) TableName() string {
	return "token_owner_record"
}

func TokenOwnerRecordFromGovernance(
	r *governance.TokenOwnerRecord,
) *TokenOwnerRecord {
	return &TokenOwnerRecord{
		Address:                  string(r.Address),
		Realm:                    string(r.Realm),
		GoverningTokenMint:       string(r.GoverningTokenMint),
		GoverningTokenOwner:      string(r.GoverningTokenOwner),
		DepositAmount:            types.Uint64(r.GoverningTokenDepositAmount),
		UnrelinquishedVotesCount: r.UnrelinquishedVotesCount,
		EarliestUnstakingTime:    r.EarliestUnstakingTime,
	}
}

func (r *TokenOwnerRecord) Governance() *governance.TokenOwnerRecord {
	return &governance.TokenOwnerRecord{
		Address:                     governance.Address(r.Address),
		Realm:                       governance.Address(r.Realm),
		GoverningTokenMint:          governance.Address(r.GoverningTokenMint),
		GoverningTokenOwner:         governance.Address(r.GoverningTokenOwner),
		GoverningTokenDepositAmount: uint64(r.DepositAmount),
		UnrelinquishedVotesCount:    r.UnrelinquishedVotesCount,
		EarliestUnstakingTime:       r.EarliestUnstakingTime,
	}
}
