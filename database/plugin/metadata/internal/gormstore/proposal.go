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
package gormstore

import (
	"github.com/blinklabs-io/leapfrog/database/models"
	"github.com/blinklabs-io/leapfrog/database/types"
	"github.com/blinklabs-io/leapfrog/governance"
)

// GetProposal returns the proposal with the given address, or nil if not found
func (s *Store) GetProposal(
	address string,
	txn types.Txn,
) (*models.Proposal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.Proposal](db, "address = ?", address)
}

// GetProposalsByRealm returns the proposals of a realm in submission order
func (s *Store) GetProposalsByRealm(
	realm string,
	txn types.Txn,
) ([]models.Proposal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Proposal
	result := db.Where("realm = ?", realm).
		Order("submitted_at, id").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetProposalsDue returns up to limit Active proposals whose voting window
// ended at or before now, oldest deadline first
func (s *Store) GetProposalsDue(
	now uint64,
	limit int,
	txn types.Txn,
) ([]models.Proposal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Proposal
	query := db.Where(
		"state = ? AND voting_ends_at <= ?",
		uint8(governance.ProposalStateActive),
		now,
	).Order("voting_ends_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) SetProposal(proposal *models.Proposal, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	tmp := *proposal
	tmp.ID = 0
	return upsertByAddress(db, &tmp)
}
