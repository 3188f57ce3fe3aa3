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
)

// GetVoteRecord returns the vote record with the given address, or nil if
// not found
func (s *Store) GetVoteRecord(
	address string,
	txn types.Txn,
) (*models.VoteRecord, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.VoteRecord](db, "address = ?", address)
}

// GetVoteRecordsByProposal returns all vote records for a proposal,
// including relinquished ones, in the order they were cast
func (s *Store) GetVoteRecordsByProposal(
	proposal string,
	txn types.Txn,
) ([]models.VoteRecord, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.VoteRecord
	result := db.Where("proposal = ?", proposal).
		Order("cast_at, id").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetActiveVoteRecord returns the non-relinquished vote record of owner on
// proposal, or nil if there is none
func (s *Store) GetActiveVoteRecord(
	proposal string,
	owner string,
	txn types.Txn,
) (*models.VoteRecord, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.VoteRecord](
		db,
		"proposal = ? AND governing_token_owner = ? AND is_relinquished = ?",
		proposal,
		owner,
		false,
	)
}

// GetActiveVoteRecordsByOwner returns the non-relinquished vote records of
// owner on a realm mint. Their stake amounts make up the owner's locked stake.
func (s *Store) GetActiveVoteRecordsByOwner(
	realm string,
	mint string,
	owner string,
	txn types.Txn,
) ([]models.VoteRecord, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.VoteRecord
	result := db.Where(
		"realm = ? AND governing_token_mint = ? AND governing_token_owner = ? AND is_relinquished = ?",
		realm,
		mint,
		owner,
		false,
	).Order("id").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) SetVoteRecord(record *models.VoteRecord, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	tmp := *record
	tmp.ID = 0
	return upsertByAddress(db, &tmp)
}
