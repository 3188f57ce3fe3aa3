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

// VoteRecord is a voter's ballot on a proposal. A voter may hold several
// relinquished records for the same proposal but at most one active one.
type VoteRecord struct {
	ID                  uint              `gorm:"primarykey"`
	Address             string            `gorm:"uniqueIndex;size:128;not null"`
	Proposal            string            `gorm:"index:idx_vote_record_proposal,priority:1;size:128;not null"`
	Realm               string            `gorm:"index:idx_vote_record_owner,priority:1;size:128;not null"`
	GoverningTokenMint  string            `gorm:"index:idx_vote_record_owner,priority:2;size:128;not null"`
	GoverningTokenOwner string            `gorm:"index:idx_vote_record_proposal,priority:2;index:idx_vote_record_owner,priority:3;size:128;not null"`
	Ballot              governance.Ballot `gorm:"serializer:json"`
	StakeAmount         types.Uint64      `gorm:"not null"`
	VoteWeight          types.Uint64      `gorm:"not null"`
	IsRelinquished      bool              `gorm:"index:idx_vote_record_owner,priority:4;not null"`
	CastAt              uint64            `gorm:"not null"`
}

func (VoteRecord) TableName() string {
	return "vote_record"
}

func VoteRecordFromGovernance(v *governance.VoteRecord) *VoteRecord {
	return &VoteRecord{
		Address:             string(v.Address),
		Proposal:            string(v.Proposal),
		Realm:               string(v.Realm),
		GoverningTokenMint:  string(v.GoverningTokenMint),
		GoverningTokenOwner: string(v.GoverningTokenOwner),
		Ballot:              v.Vote,
		StakeAmount:         types.Uint64(v.StakeAmount),
		VoteWeight:          types.Uint64(v.VoteWeight),
		IsRelinquished:      v.IsRelinquished,
		CastAt:              v.CastAt,
	}
}

func (v *VoteRecord) Governance() *governance.VoteRecord {
	return &governance.VoteRecord{
		Address:             governance.Address(v.Address),
		Proposal:            governance.Address(v.Proposal),
		Realm:               governance.Address(v.Realm),
		GoverningTokenMint:  governance.Address(v.GoverningTokenMint),
		GoverningTokenOwner: governance.Address(v.GoverningTokenOwner),
		Vote:                v.Ballot,
		StakeAmount:         uint64(v.StakeAmount),
		VoteWeight:          uint64(v.VoteWeight),
		IsRelinquished:      v.IsRelinquished,
		CastAt:              v.CastAt,
	}
}
