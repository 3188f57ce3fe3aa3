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

// GetTokenOwnerRecord returns the record with the given address, or nil if
// not found
func (s *Store) GetTokenOwnerRecord(
	address string,
	txn types.Txn,
) (*models.TokenOwnerRecord, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.TokenOwnerRecord](db, "address = ?", address)
}

// GetTokenOwnerRecordsByOwner returns every record held by owner across
// realms and mints
func (s *Store) GetTokenOwnerRecordsByOwner(
	owner string,
	txn types.Txn,
) ([]models.TokenOwnerRecord, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.TokenOwnerRecord
	result := db.Where("governing_token_owner = ?", owner).
		Order("id").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) SetTokenOwnerRecord(
	record *models.TokenOwnerRecord,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	tmp := *record
	tmp.ID = 0
	return upsertByAddress(db, &tmp)
}
