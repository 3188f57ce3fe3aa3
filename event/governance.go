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


package event

const (
	RealmInitializedEventType  = EventType("governance.realm.initialized")
	ProposalCreatedEventType   = EventType("governance.proposal.created")
	ProposalActivatedEventType = EventType("governance.proposal.activated")
	ProposalFinalizedEventType = EventType("governance.proposal.finalized")
	ProposalExecutedEventType  = EventType("governance.proposal.executed")
	VoteCastEventType          = EventType("governance.vote.cast")
	VoteRelinquishedEventType  = EventType("governance.vote.relinquished")
	TokensStakedEventType      = EventType("governance.stake.deposited")
	TokensUnstakedEventType    = EventType("governance.stake.withdrawn")
)

// GovernanceEventTypes lists every event type published by the engine
var GovernanceEventTypes = []EventType{
	RealmInitializedEventType,
	ProposalCreatedEventType,
	ProposalActivatedEventType,
	ProposalFinalizedEventType,
	ProposalExecutedEventType,
	VoteCastEventType,
	VoteRelinquishedEventType,
	TokensStakedEventType,
	TokensUnstakedEventType,
}

// RealmEvent is published when a realm is created
type RealmEvent struct {
	Realm         string `json:"realm"`
	Name          string `json:"name"`
	CommunityMint string `json:"communityMint"`
}

// ProposalEvent is published on every proposal state change. State holds
// the state after the change.
type ProposalEvent struct {
	Realm    string `json:"realm"`
	Proposal string `json:"proposal"`
	Owner    string `json:"owner,omitempty"`
	State    string `json:"state"`
	// TotalVoteWeight is set once the proposal leaves Active
	TotalVoteWeight uint64 `json:"totalVoteWeight,omitempty"`
}

// VoteEvent is published when a vote is cast or relinquished
type VoteEvent struct {
	Realm      string `json:"realm"`
	Proposal   string `json:"proposal"`
	VoteRecord string `json:"voteRecord"`
	Owner      string `json:"owner"`
	VoteWeight uint64 `json:"voteWeight"`
}

// StakeEvent is published when tokens are staked or unstaked. Deposit is the
// resulting deposit on the token owner record.
type StakeEvent struct {
	Realm            string `json:"realm"`
	Mint             string `json:"mint"`
	Owner            string `json:"owner"`
	TokenOwnerRecord string `json:"tokenOwnerRecord"`
	Amount           uint64 `json:"amount"`
	Deposit          uint64 `json:"deposit"`
}
