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


package database

import (
	"fmt"

	"github.com/blinklabs-io/leapfrog/database/models"
	"github.com/blinklabs-io/leapfrog/governance"
)

// GetRealm returns the realm at address
func (d *Database) GetRealm(
	address governance.Address,
	txn *Txn,
) (*governance.Realm, error) {
	if txn == nil {
		txn = d.BlobTxn(false)
		defer txn.Release()
	}
	data, err := d.getAccountImage(address, txn)
	if err != nil {
		return nil, err
	}
	return DecodeRealm(data)
}

// GetRealms returns all realms
func (d *Database) GetRealms(txn *Txn) ([]*governance.Realm, error) {
	rows, err := d.metadata.GetRealms(metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("get realms: %w", err)
	}
	ret := make([]*governance.Realm, 0, len(rows))
	for i := range rows {
		ret = append(ret, rows[i].Governance())
	}
	return ret, nil
}

// SetRealm stores a new realm. Realms are immutable, so an address already
// holding any account fails with governance.ErrAccountAlreadyExists.
func (d *Database) SetRealm(realm *governance.Realm, txn *Txn) error {
	data, err := EncodeRealm(realm)
	if err != nil {
		return fmt.Errorf("encode realm: %w", err)
	}
	return d.withTxn(txn, func(txn *Txn) error {
		if err := d.putAccountImage(
			realm.Address,
			governance.AccountTypeRealm,
			data,
			putCreate,
			txn,
		); err != nil {
			return err
		}
		return d.metadata.SetRealm(
			models.RealmFromGovernance(realm),
			txn.Metadata(),
		)
	})
}
