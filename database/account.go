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
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/blinklabs-io/leapfrog/database/types"
	"github.com/blinklabs-io/leapfrog/governance"
)

// Account is a decoded account image. Exactly one of the entity fields is
// set, matching Type.
type Account struct {
	Type             governance.AccountType
	Realm            *governance.Realm
	Proposal         *governance.Proposal
	TokenOwnerRecord *governance.TokenOwnerRecord
	VoteRecord       *governance.VoteRecord
}

// Account images are CBOR arrays whose first element is the account type.
// Every layout ends with a reserved block so fields can be added without
// changing the length of existing images.

type realmImage struct {
	_                        struct{} `cbor:",toarray"`
	Type                     governance.AccountType
	Address                  string
	Name                     string
	CommunityMint            string
	HasCouncilMint           bool
	CouncilMint              string
	MinCommunityTokens       uint64
	MaxVoteWeightSourceKind  uint8
	MaxVoteWeightSourceValue uint64
	UseQuadraticVoting       bool
	QuorumPercent            uint8
	Reserved                 [governance.ReservedSize]byte
}

type proposalImage struct {
	_                  struct{} `cbor:",toarray"`
	Type               governance.AccountType
	Address            string
	Governance         string
	GoverningTokenMint string
	ProposalOwner      string
	Name               string
	DescriptionLink    string
	CreatedAt          uint64
	State              uint8
	VoteTypeKind       uint8
	MaxVoterOptions    uint8
	Options            []string
	UseDenialQuorum    bool
	VotingStartsAt     uint64
	VotingEndsAt       uint64
	VoteResults        []uint64
	TotalVoteWeight    uint64
	Action             []byte
	Reserved           [governance.ReservedSize]byte
}

type tokenOwnerRecordImage struct {
	_                        struct{} `cbor:",toarray"`
	Type                     governance.AccountType
	Address                  string
	Realm                    string
	GoverningTokenMint       string
	GoverningTokenOwner      string
	DepositAmount            uint64
	UnrelinquishedVotesCount uint32
	EarliestUnstakingTime    uint64
	Reserved                 [governance.ReservedSize]byte
}

type voteRecordImage struct {
	_                   struct{} `cbor:",toarray"`
	Type                governance.AccountType
	Address             string
	Proposal            string
	Realm               string
	GoverningTokenMint  string
	GoverningTokenOwner string
	Vote                governance.Ballot
	StakeAmount         uint64
	VoteWeight          uint64
	IsRelinquished      bool
	CastAt              uint64
	Reserved            [governance.ReservedSize]byte
}

// EncodeRealm returns the account image of a realm
func EncodeRealm(r *governance.Realm) ([]byte, error) {
	council, hasCouncil := r.CouncilMint.Get()
	return cbor.Marshal(realmImage{
		Type:                     governance.AccountTypeRealm,
		Address:                  string(r.Address),
		Name:                     r.Name,
		CommunityMint:            string(r.CommunityMint),
		HasCouncilMint:           hasCouncil,
		CouncilMint:              string(council),
		MinCommunityTokens:       r.MinCommunityTokensToCreateProposal,
		MaxVoteWeightSourceKind:  uint8(r.CommunityMintMaxVoteWeightSource.Kind),
		MaxVoteWeightSourceValue: r.CommunityMintMaxVoteWeightSource.Value,
		UseQuadraticVoting:       r.UseQuadraticVoting,
		QuorumPercent:            r.QuorumPercent,
	})
}

// DecodeRealm decodes a realm account image
func DecodeRealm(data []byte) (*governance.Realm, error) {
	if err := checkAccountType(data, governance.AccountTypeRealm); err != nil {
		return nil, err
	}
	var img realmImage
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("decode realm: %w", err)
	}
	ret := &governance.Realm{
		Address:                            governance.Address(img.Address),
		Name:                               img.Name,
		CommunityMint:                      governance.Address(img.CommunityMint),
		CouncilMint:                        governance.NoAddress(),
		MinCommunityTokensToCreateProposal: img.MinCommunityTokens,
		CommunityMintMaxVoteWeightSource: governance.MaxVoteWeightSource{
			Kind:  governance.MaxVoteWeightSourceKind(img.MaxVoteWeightSourceKind),
			Value: img.MaxVoteWeightSourceValue,
		},
		UseQuadraticVoting: img.UseQuadraticVoting,
		QuorumPercent:      img.QuorumPercent,
	}
	if img.HasCouncilMint {
		ret.CouncilMint = governance.SomeAddress(governance.Address(img.CouncilMint))
	}
	return ret, nil
}

// EncodeProposal returns the account image of a proposal
func EncodeProposal(p *governance.Proposal) ([]byte, error) {
	return cbor.Marshal(proposalImage{
		Type:               governance.AccountTypeProposal,
		Address:            string(p.Address),
		Governance:         string(p.Governance),
		GoverningTokenMint: string(p.GoverningTokenMint),
		ProposalOwner:      string(p.ProposalOwner),
		Name:               p.Name,
		DescriptionLink:    p.DescriptionLink,
		CreatedAt:          p.CreatedAt,
		State:              uint8(p.State),
		VoteTypeKind:       uint8(p.VoteType.Kind),
		MaxVoterOptions:    p.VoteType.MaxVoterOptions,
		Options:            p.Options,
		UseDenialQuorum:    p.UseDenialQuorum,
		VotingStartsAt:     p.VotingStartsAt,
		VotingEndsAt:       p.VotingEndsAt,
		VoteResults:        p.VoteResults,
		TotalVoteWeight:    p.TotalVoteWeight,
		Action:             p.Action,
	})
}

// DecodeProposal decodes a proposal account image
func DecodeProposal(data []byte) (*governance.Proposal, error) {
	if err := checkAccountType(data, governance.AccountTypeProposal); err != nil {
		return nil, err
	}
	var img proposalImage
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("decode proposal: %w", err)
	}
	return &governance.Proposal{
		Address:            governance.Address(img.Address),
		Governance:         governance.Address(img.Governance),
		GoverningTokenMint: governance.Address(img.GoverningTokenMint),
		ProposalOwner:      governance.Address(img.ProposalOwner),
		Name:               img.Name,
		DescriptionLink:    img.DescriptionLink,
		CreatedAt:          img.CreatedAt,
		State:              governance.ProposalState(img.State),
		VoteType: governance.VoteType{
			Kind:            governance.VoteTypeKind(img.VoteTypeKind),
			MaxVoterOptions: img.MaxVoterOptions,
		},
		Options:         img.Options,
		UseDenialQuorum: img.UseDenialQuorum,
		VotingStartsAt:  img.VotingStartsAt,
		VotingEndsAt:    img.VotingEndsAt,
		VoteResults:     img.VoteResults,
		TotalVoteWeight: img.TotalVoteWeight,
		Action:          img.Action,
	}, nil
}

// EncodeTokenOwnerRecord returns the account image of a token owner record
func EncodeTokenOwnerRecord(r *governance.TokenOwnerRecord) ([]byte, error) {
	return cbor.Marshal(tokenOwnerRecordImage{
		Type:                     governance.AccountTypeTokenOwnerRecord,
		Address:                  string(r.Address),
		Realm:                    string(r.Realm),
		GoverningTokenMint:       string(r.GoverningTokenMint),
		GoverningTokenOwner:      string(r.GoverningTokenOwner),
		DepositAmount:            r.GoverningTokenDepositAmount,
		UnrelinquishedVotesCount: r.UnrelinquishedVotesCount,
		EarliestUnstakingTime:    r.EarliestUnstakingTime,
	})
}

// DecodeTokenOwnerRecord decodes a token owner record account image
func DecodeTokenOwnerRecord(data []byte) (*governance.TokenOwnerRecord, error) {
	if err := checkAccountType(data, governance.AccountTypeTokenOwnerRecord); err != nil {
		return nil, err
	}
	var img tokenOwnerRecordImage
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("decode token owner record: %w", err)
	}
	return &governance.TokenOwnerRecord{
		Address:                     governance.Address(img.Address),
		Realm:                       governance.Address(img.Realm),
		GoverningTokenMint:          governance.Address(img.GoverningTokenMint),
		GoverningTokenOwner:         governance.Address(img.GoverningTokenOwner),
		GoverningTokenDepositAmount: img.DepositAmount,
		UnrelinquishedVotesCount:    img.UnrelinquishedVotesCount,
		EarliestUnstakingTime:       img.EarliestUnstakingTime,
	}, nil
}

// EncodeVoteRecord returns the account image of a vote record
func EncodeVoteRecord(v *governance.VoteRecord) ([]byte, error) {
	return cbor.Marshal(voteRecordImage{
		Type:                governance.AccountTypeVoteRecord,
		Address:             string(v.Address),
		Proposal:            string(v.Proposal),
		Realm:               string(v.Realm),
		GoverningTokenMint:  string(v.GoverningTokenMint),
		GoverningTokenOwner: string(v.GoverningTokenOwner),
		Vote:                v.Vote,
		StakeAmount:         v.StakeAmount,
		VoteWeight:          v.VoteWeight,
		IsRelinquished:      v.IsRelinquished,
		CastAt:              v.CastAt,
	})
}

// DecodeVoteRecord decodes a vote record account image
func DecodeVoteRecord(data []byte) (*governance.VoteRecord, error) {
	if err := checkAccountType(data, governance.AccountTypeVoteRecord); err != nil {
		return nil, err
	}
	var img voteRecordImage
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("decode vote record: %w", err)
	}
	return &governance.VoteRecord{
		Address:             governance.Address(img.Address),
		Proposal:            governance.Address(img.Proposal),
		Realm:               governance.Address(img.Realm),
		GoverningTokenMint:  governance.Address(img.GoverningTokenMint),
		GoverningTokenOwner: governance.Address(img.GoverningTokenOwner),
		Vote:                img.Vote,
		StakeAmount:         img.StakeAmount,
		VoteWeight:          img.VoteWeight,
		IsRelinquished:      img.IsRelinquished,
		CastAt:              img.CastAt,
	}, nil
}

// AccountTypeOf returns the type tag of an account image
func AccountTypeOf(data []byte) (governance.AccountType, error) {
	var fields []cbor.RawMessage
	if err := cbor.Unmarshal(data, &fields); err != nil {
		return governance.AccountTypeUninitialized, fmt.Errorf(
			"decode account image: %w",
			err,
		)
	}
	if len(fields) == 0 {
		return governance.AccountTypeUninitialized, errors.New(
			"decode account image: empty account",
		)
	}
	var ret governance.AccountType
	if err := cbor.Unmarshal(fields[0], &ret); err != nil {
		return governance.AccountTypeUninitialized, fmt.Errorf(
			"decode account type: %w",
			err,
		)
	}
	return ret, nil
}

func checkAccountType(data []byte, want governance.AccountType) error {
	got, err := AccountTypeOf(data)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf(
			"%w: expected %s, found %s",
			governance.ErrAccountTypeMismatch,
			want,
			got,
		)
	}
	return nil
}

// DecodeAccount decodes an account image of any type
func DecodeAccount(data []byte) (*Account, error) {
	accountType, err := AccountTypeOf(data)
	if err != nil {
		return nil, err
	}
	ret := &Account{Type: accountType}
	switch accountType {
	case governance.AccountTypeRealm:
		ret.Realm, err = DecodeRealm(data)
	case governance.AccountTypeProposal:
		ret.Proposal, err = DecodeProposal(data)
	case governance.AccountTypeTokenOwnerRecord:
		ret.TokenOwnerRecord, err = DecodeTokenOwnerRecord(data)
	case governance.AccountTypeVoteRecord:
		ret.VoteRecord, err = DecodeVoteRecord(data)
	default:
		return nil, fmt.Errorf(
			"%w: unexpected account type %s",
			governance.ErrAccountTypeMismatch,
			accountType,
		)
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// GetAccount returns the decoded account image stored at address
func (d *Database) GetAccount(
	address governance.Address,
	txn *Txn,
) (*Account, error) {
	if txn == nil {
		txn = d.BlobTxn(false)
		defer txn.Release()
	}
	data, err := d.getAccountImage(address, txn)
	if err != nil {
		return nil, err
	}
	return DecodeAccount(data)
}

func (d *Database) getAccountImage(
	address governance.Address,
	txn *Txn,
) ([]byte, error) {
	if txn.Blob() == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	data, err := d.Blob().Get(txn.Blob(), types.AccountBlobKey(string(address)))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, fmt.Errorf(
				"%w: %s",
				governance.ErrAccountNotFound,
				address,
			)
		}
		return nil, err
	}
	return data, nil
}

type putMode int

const (
	// putCreate requires the address to be unused by any account type
	putCreate putMode = iota
	// putUpdate requires an account of the same type at the address
	putUpdate
	// putUpsert accepts an unused address or one of the same type
	putUpsert
)

func (d *Database) putAccountImage(
	address governance.Address,
	accountType governance.AccountType,
	data []byte,
	mode putMode,
	txn *Txn,
) error {
	existing, err := d.getAccountImage(address, txn)
	switch {
	case err == nil:
		if mode == putCreate {
			return fmt.Errorf(
				"%w: %s",
				governance.ErrAccountAlreadyExists,
				address,
			)
		}
		if err := checkAccountType(existing, accountType); err != nil {
			return err
		}
	case errors.Is(err, governance.ErrAccountNotFound):
		if mode == putUpdate {
			return err
		}
	default:
		return err
	}
	return d.Blob().Set(txn.Blob(), types.AccountBlobKey(string(address)), data)
}

// AccountExists returns true when any account is stored at address
func (d *Database) AccountExists(
	address governance.Address,
	txn *Txn,
) (bool, error) {
	if txn == nil {
		txn = d.BlobTxn(false)
		defer txn.Release()
	}
	_, err := d.getAccountImage(address, txn)
	if err != nil {
		if errors.Is(err, governance.ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
