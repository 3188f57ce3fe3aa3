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

// GetProposal returns the proposal at address
func (d *Database) GetProposal(
	address governance.Address,
	txn *Txn,
) (*governance.Proposal, error) {
	if txn == nil {
		txn = d.BlobTxn(false)
		defer txn.Release()
	}
	data, err := d.getAccountImage(address, txn)
	if err != nil {
		return nil, err
	}
	return DecodeProposal(data)
}

// GetProposalsByRealm returns the proposals of a realm in creation order
func (d *Database) GetProposalsByRealm(
	realm governance.Address,
	txn *Txn,
) ([]*governance.Proposal, error) {
	rows, err := d.metadata.GetProposalsByRealm(string(realm), metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("get proposals for realm %s: %w", realm, err)
	}
	return proposalsFromModels(rows), nil
}

// GetProposalsDue returns up to limit Active proposals whose voting window
// ended at or before now, earliest first
func (d *Database) GetProposalsDue(
	now uint64,
	limit int,
	txn *Txn,
) ([]*governance.Proposal, error) {
	rows, err := d.metadata.GetProposalsDue(now, limit, metadataTxn(txn))
	if err != nil {
		return nil, fmt.Errorf("get due proposals: %w", err)
	}
	return proposalsFromModels(rows), nil
}

// InsertProposal stores a new proposal at an unused address
func (d *Database) InsertProposal(p *governance.Proposal, txn *Txn) error {
	return d.setProposal(p, putCreate, txn)
}

// UpdateProposal replaces an existing proposal
func (d *Database) UpdateProposal(p *governance.Proposal, txn *Txn) error {
	return d.setProposal(p, putUpdate, txn)
}

func (d *Database) setProposal(
	p *governance.Proposal,
	mode putMode,
	txn *Txn,
) error {
	data, err := EncodeProposal(p)
	if err != nil {
		return fmt.Errorf("encode proposal: %w", err)
	}
	return d.withTxn(txn, func(txn *Txn) error {
		if err := d.putAccountImage(
			p.Address,
			governance.AccountTypeProposal,
			data,
			mode,
			txn,
		); err != nil {
			return err
		}
		return d.metadata.SetProposal(
			models.ProposalFromGovernance(p),
			txn.Metadata(),
		)
	})
}

func proposalsFromModels(rows []models.Proposal) []*governance.Proposal {
	ret := make([]*governance.Proposal, 0, len(rows))
	for i := range rows {
		ret = append(ret, rows[i].Governance())
	}
	return ret
}
