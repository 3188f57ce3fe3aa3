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


package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/leapfrog/database"
	"github.com/blinklabs-io/leapfrog/governance"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func testRealm(address governance.Address) *governance.Realm {
	return &governance.Realm{
		Address:                            address,
		Name:                               "Test Realm",
		CommunityMint:                      "community",
		CouncilMint:                        governance.SomeAddress("council"),
		MinCommunityTokensToCreateProposal: 100,
		CommunityMintMaxVoteWeightSource:   governance.FullSupply(),
		UseQuadraticVoting:                 true,
		QuorumPercent:                      10,
	}
}

func testProposal(address governance.Address, endsAt uint64) *governance.Proposal {
	return &governance.Proposal{
		Address:            address,
		Governance:         "realm",
		GoverningTokenMint: "community",
		ProposalOwner:      "alice",
		Name:               "Fund the thing",
		DescriptionLink:    "https://example.com/p/1",
		CreatedAt:          1000,
		State:              governance.ProposalStateActive,
		VoteType:           governance.MultiChoice(2),
		Options:            []string{"a", "b", "c"},
		VotingStartsAt:     1000,
		VotingEndsAt:       endsAt,
		VoteResults:        []uint64{5, 3, 0},
		TotalVoteWeight:    8,
		Action:             []byte("payload"),
	}
}

func TestDatabaseRealm(t *testing.T) {
	db := newTestDatabase(t)
	realm := testRealm("realm")
	require.NoError(t, db.SetRealm(realm, nil))

	got, err := db.GetRealm("realm", nil)
	require.NoError(t, err)
	assert.Equal(t, realm, got)

	// Realms are immutable
	err = db.SetRealm(realm, nil)
	require.ErrorIs(t, err, governance.ErrAccountAlreadyExists)

	realms, err := db.GetRealms(nil)
	require.NoError(t, err)
	require.Len(t, realms, 1)
	assert.Equal(t, realm, realms[0])

	_, err = db.GetRealm("missing", nil)
	require.ErrorIs(t, err, governance.ErrAccountNotFound)
}

func TestDatabaseAccountTypes(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.SetRealm(testRealm("shared"), nil))

	_, err := db.GetProposal("shared", nil)
	require.ErrorIs(t, err, governance.ErrAccountTypeMismatch)

	// One address space for every account type
	err = db.InsertProposal(testProposal("shared", 2000), nil)
	require.ErrorIs(t, err, governance.ErrAccountAlreadyExists)
	err = db.UpdateProposal(testProposal("shared", 2000), nil)
	require.ErrorIs(t, err, governance.ErrAccountTypeMismatch)
	err = db.UpdateProposal(testProposal("missing", 2000), nil)
	require.ErrorIs(t, err, governance.ErrAccountNotFound)

	account, err := db.GetAccount("shared", nil)
	require.NoError(t, err)
	assert.Equal(t, governance.AccountTypeRealm, account.Type)
	require.NotNil(t, account.Realm)
	assert.Nil(t, account.Proposal)

	exists, err := db.AccountExists("shared", nil)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = db.AccountExists("missing", nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDatabaseProposal(t *testing.T) {
	db := newTestDatabase(t)
	p := testProposal("p1", 2000)
	require.NoError(t, db.InsertProposal(p, nil))
	require.NoError(t, db.InsertProposal(testProposal("p2", 5000), nil))

	got, err := db.GetProposal("p1", nil)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	p.State = governance.ProposalStateApproved
	p.VoteResults = []uint64{9, 3, 0}
	p.TotalVoteWeight = 12
	require.NoError(t, db.UpdateProposal(p, nil))
	got, err = db.GetProposal("p1", nil)
	require.NoError(t, err)
	assert.Equal(t, governance.ProposalStateApproved, got.State)
	assert.Equal(t, []uint64{9, 3, 0}, got.VoteResults)

	byRealm, err := db.GetProposalsByRealm("realm", nil)
	require.NoError(t, err)
	require.Len(t, byRealm, 2)
	assert.Equal(t, governance.Address("p1"), byRealm[0].Address)
	assert.Equal(t, uint64(12), byRealm[0].TotalVoteWeight)
}

func TestDatabaseProposalsDue(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.InsertProposal(testProposal("late", 3000), nil))
	require.NoError(t, db.InsertProposal(testProposal("early", 2000), nil))
	require.NoError(t, db.InsertProposal(testProposal("open", 9000), nil))
	done := testProposal("done", 1500)
	done.State = governance.ProposalStateRejected
	require.NoError(t, db.InsertProposal(done, nil))

	due, err := db.GetProposalsDue(3000, 10, nil)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, governance.Address("early"), due[0].Address)
	assert.Equal(t, governance.Address("late"), due[1].Address)

	due, err = db.GetProposalsDue(3000, 1, nil)
	require.NoError(t, err)
	require.Len(t, due, 1)
}

func TestDatabaseTokenOwnerRecord(t *testing.T) {
	db := newTestDatabase(t)
	rec := governance.NewTokenOwnerRecord("realm", "community", "alice")
	rec.GoverningTokenDepositAmount = 500
	require.NoError(t, db.SetTokenOwnerRecord(rec, nil))

	rec.GoverningTokenDepositAmount = 400
	rec.EarliestUnstakingTime = 90000
	require.NoError(t, db.SetTokenOwnerRecord(rec, nil))

	got, err := db.GetTokenOwnerRecord(rec.Address, nil)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	other := governance.NewTokenOwnerRecord("realm", "council", "alice")
	other.GoverningTokenDepositAmount = 1
	require.NoError(t, db.SetTokenOwnerRecord(other, nil))
	records, err := db.GetTokenOwnerRecordsByOwner("alice", nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.NoError(t, db.SetRealm(testRealm("realm"), nil))
	clash := governance.NewTokenOwnerRecord("x", "y", "z")
	clash.Address = "realm"
	err = db.SetTokenOwnerRecord(clash, nil)
	require.ErrorIs(t, err, governance.ErrAccountTypeMismatch)
}

func TestDatabaseVoteRecord(t *testing.T) {
	db := newTestDatabase(t)
	vote := &governance.VoteRecord{
		Address:             "v1",
		Proposal:            "p1",
		Realm:               "realm",
		GoverningTokenMint:  "community",
		GoverningTokenOwner: "alice",
		Vote: governance.WeightedBallot(
			governance.WeightedChoice{OptionIndex: 0, Weight: 3},
			governance.WeightedChoice{OptionIndex: 2, Weight: 1},
		),
		StakeAmount: 100,
		VoteWeight:  10,
		CastAt:      1200,
	}
	require.NoError(t, db.InsertVoteRecord(vote, nil))
	got, err := db.GetVoteRecord("v1", nil)
	require.NoError(t, err)
	assert.Equal(t, vote, got)

	active, err := db.GetActiveVoteRecord("p1", "alice", nil)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, vote.Vote, active.Vote)

	byOwner, err := db.GetActiveVoteRecordsByOwner("realm", "community", "alice", nil)
	require.NoError(t, err)
	require.Len(t, byOwner, 1)

	vote.IsRelinquished = true
	require.NoError(t, db.UpdateVoteRecord(vote, nil))
	active, err = db.GetActiveVoteRecord("p1", "alice", nil)
	require.NoError(t, err)
	assert.Nil(t, active)
	byOwner, err = db.GetActiveVoteRecordsByOwner("realm", "community", "alice", nil)
	require.NoError(t, err)
	assert.Empty(t, byOwner)

	all, err := db.GetVoteRecordsByProposal("p1", nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsRelinquished)

	err = db.InsertVoteRecord(vote, nil)
	require.ErrorIs(t, err, governance.ErrAccountAlreadyExists)
}

func TestDatabaseTransactionRollback(t *testing.T) {
	db := newTestDatabase(t)
	txn := db.Transaction(true)
	require.NoError(t, db.SetRealm(testRealm("realm"), txn))
	// Visible inside the transaction
	_, err := db.GetRealm("realm", txn)
	require.NoError(t, err)
	require.NoError(t, txn.Rollback())

	_, err = db.GetRealm("realm", nil)
	require.ErrorIs(t, err, governance.ErrAccountNotFound)
	realms, err := db.GetRealms(nil)
	require.NoError(t, err)
	assert.Empty(t, realms)
}

func TestDatabaseTransactionDo(t *testing.T) {
	db := newTestDatabase(t)
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := db.SetRealm(testRealm("r1"), txn); err != nil {
			return err
		}
		// Fails and rolls back the first write
		return db.SetRealm(testRealm("r1"), txn)
	})
	require.ErrorIs(t, err, governance.ErrAccountAlreadyExists)
	_, err = db.GetRealm("r1", nil)
	require.ErrorIs(t, err, governance.ErrAccountNotFound)
}

func TestDatabaseCommitTimestamp(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.SetRealm(testRealm("realm"), nil))
	metadataTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	blobTs, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Positive(t, metadataTs)
	assert.Equal(t, metadataTs, blobTs)
}

func TestDatabasePersistence(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	require.NoError(t, db.SetRealm(testRealm("realm"), nil))
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	defer db.Close()
	got, err := db.GetRealm("realm", nil)
	require.NoError(t, err)
	assert.Equal(t, "Test Realm", got.Name)
}

func TestDatabaseRecoverCommitTimestamp(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.SetRealm(testRealm("realm"), nil))
	metadataTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)

	// Simulate a partial commit that only reached the blob store
	txn := db.BlobTxn(true)
	require.NoError(t, db.Blob().SetCommitTimestamp(metadataTs+1, txn.Blob()))
	require.NoError(t, txn.Commit())

	require.NoError(t, db.RecoverCommitTimestamp())
	metadataTs, err = db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	blobTs, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, metadataTs, blobTs)
	// No-op when the stores agree
	require.NoError(t, db.RecoverCommitTimestamp())
}
