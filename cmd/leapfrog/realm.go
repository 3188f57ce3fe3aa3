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

func realmCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realm",
		Short: "Manage realms",
	}
	cmd.AddCommand(realmInitCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List realms",
		Args:  cobra.NoArgs,
		RunE: clientRunE(func(cmd *cobra.Command, c *apiClient, _ []string) error {
			return c.get(cmd.Context(), "/realms")
		}),
	})
	cmd.AddCommand(getCommand("show <address>", "Show a realm", func(a string) string {
		return "/realms/" + a
	}))
	cmd.AddCommand(getCommand("proposals <address>", "List the proposals of a realm", func(a string) string {
		return "/realms/" + a + "/proposals"
	}))
	return cmd
}

func realmInitCommand() *cobra.Command {
	var req api.Realm
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a realm",
		Args:  cobra.NoArgs,
		RunE: clientRunE(func(cmd *cobra.Command, c *apiClient, _ []string) error {
			return c.post(cmd.Context(), "/realms", req)
		}),
	}
	f := cmd.Flags()
	f.StringVar(&req.Address, "address", "", "realm address (generated when empty)")
	f.StringVar(&req.Name, "name", "", "realm name")
	f.StringVar(&req.CommunityMint, "community-mint", "", "community token mint")
	f.StringVar(&req.CouncilMint, "council-mint", "", "council token mint")
	f.Uint64Var(
		&req.MinCommunityTokensToCreateProposal,
		"min-tokens",
		0,
		"community tokens needed to create a proposal",
	)
	f.StringVar(
		&req.CommunityMintMaxVoteWeightSource.Kind,
		"max-vote-weight",
		"SupplyFraction",
		"max vote weight source, SupplyFraction or Absolute",
	)
	f.Uint64Var(
		&req.CommunityMintMaxVoteWeightSource.Value,
		"max-vote-weight-value",
		0,
		"supply fraction or absolute max vote weight",
	)
	f.BoolVar(&req.UseQuadraticVoting, "quadratic", false, "weight votes by the square root of the stake")
	f.Uint8Var(&req.QuorumPercent, "quorum", 0, "quorum percent, 0 for the node default")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("community-mint")
	return cmd
}
