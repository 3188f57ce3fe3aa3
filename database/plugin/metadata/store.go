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
package metadata

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/blinklabs-io/leapfrog/database/models"
	"github.com/blinklabs-io/leapfrog/database/plugin"
	"github.com/blinklabs-io/leapfrog/database/types"
)

// MetadataStore is the queryable side of the database. Lookups by address
// return nil without an error when the row does not exist.
type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Realms
	GetRealm(string, types.Txn) (*models.Realm, error)
	GetRealms(types.Txn) ([]models.Realm, error)
	SetRealm(*models.Realm, types.Txn) error

	// Proposals
	GetProposal(string, types.Txn) (*models.Proposal, error)
	GetProposalsByRealm(string, types.Txn) ([]models.Proposal, error)
	GetProposalsDue(
		uint64, // now
		int, // limit
		types.Txn,
	) ([]models.Proposal, error)
	SetProposal(*models.Proposal, types.Txn) error

	// Token owner records
	GetTokenOwnerRecord(string, types.Txn) (*models.TokenOwnerRecord, error)
	GetTokenOwnerRecordsByOwner(
		string, // owner
		types.Txn,
	) ([]models.TokenOwnerRecord, error)
	SetTokenOwnerRecord(*models.TokenOwnerRecord, types.Txn) error

	// Vote records
	GetVoteRecord(string, types.Txn) (*models.VoteRecord, error)
	GetVoteRecordsByProposal(string, types.Txn) ([]models.VoteRecord, error)
	GetActiveVoteRecord(
		string, // proposal
		string, // owner
		types.Txn,
	) (*models.VoteRecord, error)
	GetActiveVoteRecordsByOwner(
		string, // realm
		string, // mint
		string, // owner
		types.Txn,
	) ([]models.VoteRecord, error)
	SetVoteRecord(*models.VoteRecord, types.Txn) error
}

// New starts the named metadata plugin. dataDir is passed to plugins that
// store data locally, where an empty value selects in-memory storage.
func New(
	pluginName string,
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	if err := plugin.SetPluginOption(
		plugin.PluginTypeMetadata,
		pluginName,
		"data-dir",
		dataDir,
	); err != nil {
		return nil, err
	}
	p, err := plugin.StartInstrumentedPlugin(
		plugin.PluginTypeMetadata,
		pluginName,
		logger,
		promRegistry,
	)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
