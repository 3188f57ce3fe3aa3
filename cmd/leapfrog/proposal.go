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

package main

import (
	"github.com/spf13/cobra"

	"github.com/blinklabs-io/leapfrog/api"
)

func proposalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Manage proposals",
	}
	cmd.AddCommand(proposalCreateCommand())
	cmd.AddCommand(getCommand("show <address>", "Show a proposal", func(a string) string {
		return "/proposals/" + a
	}))
	cmd.AddCommand(postCommand("activate <address>", "Open voting on a draft proposal", func(a string) string {
		return "/proposals/" + a + "/activate"
	}))
	cmd.AddCommand(postCommand("finalize <address>", "Finalize a proposal whose voting window elapsed", func(a string) string {
		return "/proposals/" + a + "/finalize"
	}))
	cmd.AddCommand(postCommand("execute <address>", "Execute an approved proposal", func(a string) string {
		return "/proposals/" + a + "/execute"
	}))
	return cmd
}

func proposalCreateCommand() *cobra.Command {
	var req api.CreateProposal
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a proposal",
		Args:  cobra.NoArgs,
		RunE: clientRunE(func(cmd *cobra.Command, c *apiClient, _ []string) error {
			return c.post(cmd.Context(), "/proposals", req)
		}),
	}
	f := cmd.Flags()
	f.StringVar(&req.Realm, "realm", "", "realm address")
	f.StringVar(&req.Address, "address", "", "proposal address (generated when empty)")
	f.StringVar(&req.GoverningTokenMint, "mint", "", "governing token mint (realm community mint when empty)")
	f.StringVar(&req.ProposalOwner, "owner", "", "proposal owner (signer when empty)")
	f.StringVar(&req.Name, "name", "", "proposal name")
	f.StringVar(&req.DescriptionLink, "description", "", "link to the proposal description")
	f.StringVar(&req.VoteType.Kind, "vote-type", "SingleChoice", "SingleChoice, MultiChoice or Weighted")
	f.Uint8Var(&req.VoteType.MaxVoterOptions, "max-options", 0, "options a MultiChoice voter may pick")
	f.StringArrayVar(&req.Options, "option", nil, "option label, repeat for each option")
	f.BoolVar(&req.UseDenialQuorum, "denial-quorum", false, "append a deny option that defeats the proposal")
	f.Uint8Var(&req.VotingPeriodDays, "days", 3, "voting period in days")
	f.StringVar(&req.Action, "action", "", "hex encoded action dispatched on execution")
	_ = cmd.MarkFlagRequired("realm")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
