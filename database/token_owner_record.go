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

// GetTokenOwnerRecord returns the token owner record at address
func (d *Database) GetTokenOwnerRecord(
	address governance.Address,
	txn *Txn,
) (*governance.TokenOwnerRecord, error) {
	if txn == nil {
		txn = d.BlobTxn(false)
		defer txn.Release()
	}
	data, err := d.getAccountImage(address, txn)
	if err != nil {
		return nil, err
	}
	return DecodeTokenOwnerRecord(data)
}

// GetTokenOwnerRecordsByOwner returns every record held by owner across
// realms and mints
func (d *Database) GetTokenOwnerRecordsByOwner(
	owner governance.Address,
	txn *Txn,
) ([]*governance.TokenOwnerRecord, error) {
	rows, err := d.metadata.GetTokenOwnerRecordsByOwner(
		string(owner),
		metadataTxn(txn),
	)
	if err != nil {
		return nil, fmt.Errorf("get token owner records for %s: %w", owner, err)
	}
	ret := make([]*governance.TokenOwnerRecord, 0, len(rows))
	for i := range rows {
		ret = append(ret, rows[i].Governance())
	}
	return ret, nil
}

// SetTokenOwnerRecord creates or replaces a token owner record
func (d *Database) SetTokenOwnerRecord(
	record *governance.TokenOwnerRecord,
	txn *Txn,
) error {
	data, err := EncodeTokenOwnerRecord(record)
	if err != nil {
		return fmt.Errorf("encode token owner record: %w", err)
	}
	return d.withTxn(txn, func(txn *Txn) error {
		if err := d.putAccountImage(
			record.Address,
			governance.AccountTypeTokenOwnerRecord,
			data,
			putUpsert,
			txn,
		); err != nil {
			return err
		}
		return d.metadata.SetTokenOwnerRecord(
			models.TokenOwnerRecordFromGovernance(record),
			txn.Metadata(),
		)
	})
}
