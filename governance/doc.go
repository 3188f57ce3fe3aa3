// Copyright 2026 Blink Labs Software
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

// Package governance implements the governance state machine: realms,
// proposals, the staking ledger held in token owner records, vote weighting
// and tallying, quorum evaluation and the execution gate.
//
// # Entities
//
// Realm: immutable configuration binding a community mint (and optionally a
// council mint) to voting policy: the minimum stake to create a proposal, the
// max vote weight source, the quorum percentage and whether quadratic voting
// is used.
//
// Proposal: a voteable decision. Proposals move through
// Draft -> Active -> {Approved, Rejected, Expired} and Approved -> Executed.
// Tallies are a dense slice indexed by option position.
//
// TokenOwnerRecord: one owner's staked deposit on a realm mint, the number of
// votes the owner has not relinquished, and the earliest time a further
// unstake is allowed.
//
// VoteRecord: an append-only record of a cast ballot. Relinquishing a vote
// only flips a flag.
//
// # Purity
//
// Nothing in this package performs I/O or reads the wall clock. Operations
// receive the current timestamp and collaborator hooks as arguments, validate
// everything before mutating, and leave their inputs untouched on error. The
// transactional boundary, locking and persistence live in package engine.
//
// # Arithmetic
//
// Every weight, tally and balance update is checked. Overflow and underflow
// surface as ErrArithmeticOverflow rather than wrapping.
package governance
