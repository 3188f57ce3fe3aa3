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

// GetRealm returns the realm with the given address, or nil if not found
func (s *Store) GetRealm(address string, txn types.Txn) (*models.Realm, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	return first[models.Realm](db, "address = ?", address)
}

// GetRealms returns all realms in creation order
func (s *Store) GetRealms(txn types.Txn) ([]models.Realm, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Realm
	if result := db.Order("id").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) SetRealm(realm *models.Realm, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	tmp := *realm
	tmp.ID = 0
	return upsertByAddress(db, &tmp)
}
