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

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blinklabs-io/leapfrog/engine"
	"github.com/blinklabs-io/leapfrog/governance"
)

type Realms struct {
	engine *engine.Engine
}

func NewRealms(e *engine.Engine) *Realms {
	return &Realms{engine: e}
}

// Initialize handles POST /v1/realms
func (h *Realms) Initialize(c *gin.Context) {
	var req Realm
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	params, err := req.params()
	if err != nil {
		abortWithError(c, err)
		return
	}
	realm, err := h.engine.InitializeRealm(
		c.Request.Context(),
		engine.InitializeRealmRequest{Signer: signer(c), RealmParams: params},
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, RealmFromGovernance(realm))
}

func (h *Realms) Get(c *gin.Context) {
	realm, err := h.engine.GetRealm(
		c.Request.Context(),
		governance.Address(c.Param("address")),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, RealmFromGovernance(realm))
}

func (h *Realms) List(c *gin.Context) {
	realms, err := h.engine.ListRealms(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	ret := make([]Realm, 0, len(realms))
	for _, r := range realms {
		ret = append(ret, RealmFromGovernance(r))
	}
	c.JSON(http.StatusOK, ret)
}

// Proposals handles GET /v1/realms/:address/proposals
func (h *Realms) Proposals(c *gin.Context) {
	proposals, err := h.engine.ListProposals(
		c.Request.Context(),
		governance.Address(c.Param("address")),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	ret := make([]Proposal, 0, len(proposals))
	for _, p := range proposals {
		ret = append(ret, ProposalFromGovernance(p))
	}
	c.JSON(http.StatusOK, ret)
}

type Proposals struct {
	engine *engine.Engine
}

func NewProposals(e *engine.Engine) *Proposals {
	return &Proposals{engine: e}
}

// Create handles POST /v1/proposals
func (h *Proposals) Create(c *gin.Context) {
	var req CreateProposal
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	params, err := req.params()
	if err != nil {
		abortWithError(c, err)
		return
	}
	p, err := h.engine.CreateProposal(
		c.Request.Context(),
		engine.CreateProposalRequest{
			Signer:         signer(c),
			Realm:          governance.Address(req.Realm),
			ProposalParams: params,
		},
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ProposalFromGovernance(p))
}

// Get returns the proposal, finalizing it first when its window elapsed
func (h *Proposals) Get(c *gin.Context) {
	p, err := h.engine.GetProposal(
		c.Request.Context(),
		governance.Address(c.Param("address")),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProposalFromGovernance(p))
}

func (h *Proposals) Activate(c *gin.Context) {
	p, err := h.engine.ActivateProposal(
		c.Request.Context(),
		engine.ActivateProposalRequest{
			Signer:   signer(c),
			Proposal: governance.Address(c.Param("address")),
		},
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProposalFromGovernance(p))
}

func (h *Proposals) Finalize(c *gin.Context) {
	p, err := h.engine.FinalizeProposal(
		c.Request.Context(),
		governance.Address(c.Param("address")),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProposalFromGovernance(p))
}

func (h *Proposals) Execute(c *gin.Context) {
	p, err := h.engine.ExecuteProposal(
		c.Request.Context(),
		engine.ExecuteProposalRequest{
			Signer:   signer(c),
			Proposal: governance.Address(c.Param("address")),
		},
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProposalFromGovernance(p))
}

type Votes struct {
	engine *engine.Engine
}

func NewVotes(e *engine.Engine) *Votes {
	return &Votes{engine: e}
}

// Cast handles POST /v1/proposals/:address/votes
func (h *Votes) Cast(c *gin.Context) {
	var req CastVote
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ballot, err := req.Ballot.toGovernance()
	if err != nil {
		abortWithError(c, err)
		return
	}
	record, err := h.engine.CastVote(
		c.Request.Context(),
		engine.CastVoteRequest{
			Signer:       signer(c),
			Proposal:     governance.Address(c.Param("address")),
			Owner:        governance.Address(req.Owner),
			Ballot:       ballot,
			StakedAmount: req.StakedAmount,
		},
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, VoteRecordFromGovernance(record))
}

func (h *Votes) List(c *gin.Context) {
	records, err := h.engine.ListVoteRecords(
		c.Request.Context(),
		governance.Address(c.Param("address")),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	ret := make([]VoteRecord, 0, len(records))
	for _, r := range records {
		ret = append(ret, VoteRecordFromGovernance(r))
	}
	c.JSON(http.StatusOK, ret)
}

func (h *Votes) Get(c *gin.Context) {
	record, err := h.engine.GetVoteRecord(
		c.Request.Context(),
		governance.Address(c.Param("address")),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, VoteRecordFromGovernance(record))
}

func (h *Votes) Relinquish(c *gin.Context) {
	record, err := h.engine.RelinquishVote(
		c.Request.Context(),
		engine.RelinquishVoteRequest{
			Signer:     signer(c),
			VoteRecord: governance.Address(c.Param("address")),
		},
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, VoteRecordFromGovernance(record))
}

type Stakes struct {
	engine *engine.Engine
}

func NewStakes(e *engine.Engine) *Stakes {
	return &Stakes{engine: e}
}

func (h *Stakes) bind(c *gin.Context) (engine.StakeRequest, bool) {
	var req Stake
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return engine.StakeRequest{}, false
	}
	return engine.StakeRequest{
		Signer: signer(c),
		Realm:  governance.Address(req.Realm),
		Mint:   governance.Address(req.Mint),
		Owner:  governance.Address(req.Owner),
		Amount: req.Amount,
	}, true
}

func (h *Stakes) Stake(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	record, err := h.engine.StakeTokens(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenOwnerRecordFromGovernance(record))
}

func (h *Stakes) Unstake(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	record, err := h.engine.UnstakeTokens(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenOwnerRecordFromGovernance(record))
}

func (h *Stakes) Get(c *gin.Context) {
	record, err := h.engine.GetTokenOwnerRecord(
		c.Request.Context(),
		governance.Address(c.Param("address")),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenOwnerRecordFromGovernance(record))
}

func (h *Stakes) ListByOwner(c *gin.Context) {
	records, err := h.engine.ListTokenOwnerRecords(
		c.Request.Context(),
		governance.Address(c.Param("owner")),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	ret := make([]TokenOwnerRecord, 0, len(records))
	for _, r := range records {
		ret = append(ret, TokenOwnerRecordFromGovernance(r))
	}
	c.JSON(http.StatusOK, ret)
}

// Balance handles GET /v1/mints/:mint/balances/:account
func (h *Stakes) Balance(c *gin.Context) {
	mint := governance.Address(c.Param("mint"))
	account := governance.Address(c.Param("account"))
	balance, err := h.engine.Ledger().BalanceOf(c.Request.Context(), mint, account)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, Balance{
		Mint:    string(mint),
		Account: string(account),
		Balance: balance,
	})
}

type Accounts struct {
	engine *engine.Engine
}

func NewAccounts(e *engine.Engine) *Accounts {
	return &Accounts{engine: e}
}

// Get returns the stored account image without finalizing proposals
func (h *Accounts) Get(c *gin.Context) {
	account, err := h.engine.GetAccount(
		c.Request.Context(),
		governance.Address(c.Param("address")),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, AccountFromDatabase(account))
}
