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

func stakeFlags(cmd *cobra.Command, req *api.Stake) {
	f := cmd.Flags()
	f.StringVar(&req.Realm, "realm", "", "realm address")
	f.StringVar(&req.Mint, "mint", "", "governing token mint (realm community mint when empty)")
	f.StringVar(&req.Owner, "owner", "", "token owner (signer when empty)")
	f.Uint64Var(&req.Amount, "amount", 0, "token amount")
	_ = cmd.MarkFlagRequired("realm")
	_ = cmd.MarkFlagRequired("amount")
}

func stakeCommand() *cobra.Command {
	var req api.Stake
	cmd := &cobra.Command{
		Use:   "stake",
		Short: "Deposit governing tokens into a token owner record",
		Args:  cobra.NoArgs,
		RunE: clientRunE(func(cmd *cobra.Command, c *apiClient, _ []string) error {
			return c.post(cmd.Context(), "/stake", req)
		}),
	}
	stakeFlags(cmd, &req)
	cmd.AddCommand(getCommand("show <address>", "Show a token owner record", func(a string) string {
		return "/token-owner-records/" + a
	}))
	cmd.AddCommand(getCommand("records <owner>", "List the token owner records of an owner", func(a string) string {
		return "/owners/" + a + "/token-owner-records"
	}))
	return cmd
}

func unstakeCommand() *cobra.Command {
	var req api.Stake
	cmd := &cobra.Command{
		Use:   "unstake",
		Short: "Withdraw governing tokens once the cooldown has passed",
		Args:  cobra.NoArgs,
		RunE: clientRunE(func(cmd *cobra.Command, c *apiClient, _ []string) error {
			return c.post(cmd.Context(), "/unstake", req)
		}),
	}
	stakeFlags(cmd, &req)
	return cmd
}

func balanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <mint> <account>",
		Short: "Show a token balance",
		Args:  cobra.ExactArgs(2),
		RunE: clientRunE(func(cmd *cobra.Command, c *apiClient, args []string) error {
			return c.get(cmd.Context(), "/mints/"+args[0]+"/balances/"+args[1])
		}),
	}
}

func accountCommand() *cobra.Command {
	return getCommand("account <address>", "Show the stored image of any account", func(a string) string {
		return "/accounts/" + a
	})
}
