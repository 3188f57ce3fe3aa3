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

// GetVoteRecord returns the vote record at address
func (d *Database) GetVoteRecord(
	address governance.Address,
	txn *Txn,
) (*governance.VoteRecord, error) {
	if txn == nil {
		txn = d.BlobTxn(false)
		defer txn.Release()
	}
	data, err := d.getAccountImage(address, txn)
	if err != nil {
		return nil, err
	}
	return DecodeVoteRecord(data)
}

// GetVoteRecordsByProposal returns every vote record cast on a proposal,
// relinquished ones included
func (d *Database) GetVoteRecordsByProposal(
	proposal governance.Address,
	txn *Txn,
) ([]*governance.VoteRecord, error) {
	rows, err := d.metadata.GetVoteRecordsByProposal(
		string(proposal),
		metadataTxn(txn),
	)
	if err != nil {
		return nil, fmt.Errorf("get vote records for %s: %w", proposal, err)
	}
	return voteRecordsFromModels(rows), nil
}

// GetActiveVoteRecord returns the non-relinquished vote record of owner on a
// proposal, or nil when there is none
func (d *Database) GetActiveVoteRecord(
	proposal governance.Address,
	owner governance.Address,
	txn *Txn,
) (*governance.VoteRecord, error) {
	row, err := d.metadata.GetActiveVoteRecord(
		string(proposal),
		string(owner),
		metadataTxn(txn),
	)
	if err != nil {
		return nil, fmt.Errorf("get active vote record: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	return row.Governance(), nil
}

// GetActiveVoteRecordsByOwner returns the non-relinquished vote records of
// owner on proposals of a realm mint
func (d *Database) GetActiveVoteRecordsByOwner(
	realm governance.Address,
	mint governance.Address,
	owner governance.Address,
	txn *Txn,
) ([]*governance.VoteRecord, error) {
	rows, err := d.metadata.GetActiveVoteRecordsByOwner(
		string(realm),
		string(mint),
		string(owner),
		metadataTxn(txn),
	)
	if err != nil {
		return nil, fmt.Errorf("get active vote records for %s: %w", owner, err)
	}
	return voteRecordsFromModels(rows), nil
}

// InsertVoteRecord stores a new vote record at an unused address
func (d *Database) InsertVoteRecord(v *governance.VoteRecord, txn *Txn) error {
	return d.setVoteRecord(v, putCreate, txn)
}

// UpdateVoteRecord replaces an existing vote record
func (d *Database) UpdateVoteRecord(v *governance.VoteRecord, txn *Txn) error {
	return d.setVoteRecord(v, putUpdate, txn)
}

func (d *Database) setVoteRecord(
	v *governance.VoteRecord,
	mode putMode,
	txn *Txn,
) error {
	data, err := EncodeVoteRecord(v)
	if err != nil {
		return fmt.Errorf("encode vote record: %w", err)
	}
	return d.withTxn(txn, func(txn *Txn) error {
		if err := d.putAccountImage(
			v.Address,
			governance.AccountTypeVoteRecord,
			data,
			mode,
			txn,
		); err != nil {
			return err
		}
		return d.metadata.SetVoteRecord(
			models.VoteRecordFromGovernance(v),
			txn.Metadata(),
		)
	})
}

func voteRecordsFromModels(rows []models.VoteRecord) []*governance.VoteRecord {
	ret := make([]*governance.VoteRecord, 0, len(rows))
	for i := range rows {
		ret = append(ret, rows[i].Governance())
	}
	return ret
}
