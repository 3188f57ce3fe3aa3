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
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blinklabs-io/leapfrog/api"
	"github.com/blinklabs-io/leapfrog/governance"
)

func voteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Cast and manage votes",
	}
	cmd.AddCommand(voteCastCommand())
	cmd.AddCommand(getCommand("list <proposal>", "List the votes on a proposal", func(a string) string {
		return "/proposals/" + a + "/votes"
	}))
	cmd.AddCommand(getCommand("show <address>", "Show a vote record", func(a string) string {
		return "/votes/" + a
	}))
	cmd.AddCommand(postCommand("relinquish <address>", "Release the stake locked by a vote", func(a string) string {
		return "/votes/" + a + "/relinquish"
	}))
	return cmd
}

func voteCastCommand() *cobra.Command {
	var (
		req     api.CastVote
		options []uint
		choices []string
	)
	cmd := &cobra.Command{
		Use:   "cast <proposal>",
		Short: "Cast a vote on a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: clientRunE(func(cmd *cobra.Command, c *apiClient, args []string) error {
			ballot, err := buildBallot(req.Ballot.Kind, options, choices)
			if err != nil {
				return err
			}
			req.Ballot = ballot
			return c.post(cmd.Context(), "/proposals/"+args[0]+"/votes", req)
		}),
	}
	f := cmd.Flags()
	f.StringVar(&req.Owner, "owner", "", "token owner (signer when empty)")
	f.Uint64Var(&req.StakedAmount, "staked", 0, "staked amount backing the vote")
	f.StringVar(&req.Ballot.Kind, "kind", "", "ballot kind, inferred from the other flags when empty")
	f.UintSliceVar(&options, "option", nil, "option index, repeat or comma separate for MultiChoice")
	f.StringArrayVar(&choices, "choice", nil, "weighted choice as <option>=<weight>, repeat for each")
	_ = cmd.MarkFlagRequired("staked")
	return cmd
}

// buildBallot turns --option and --choice flags into a ballot. The kind
// defaults to Weighted when choices are given, MultiChoice for more than
// one option and SingleChoice otherwise.
func buildBallot(kind string, options []uint, choices []string) (api.Ballot, error) {
	ballot := api.Ballot{Kind: kind}
	for _, opt := range options {
		if opt > math.MaxUint16 {
			return api.Ballot{}, fmt.Errorf("option index out of range: %d", opt)
		}
		ballot.Options = append(ballot.Options, uint16(opt))
	}
	for _, choice := range choices {
		idx, weight, ok := strings.Cut(choice, "=")
		if !ok {
			return api.Ballot{}, fmt.Errorf("invalid choice %q, expected <option>=<weight>", choice)
		}
		optionIndex, err := strconv.ParseUint(idx, 10, 16)
		if err != nil {
			return api.Ballot{}, fmt.Errorf("invalid option in choice %q: %w", choice, err)
		}
		w, err := strconv.ParseUint(weight, 10, 64)
		if err != nil {
			return api.Ballot{}, fmt.Errorf("invalid weight in choice %q: %w", choice, err)
		}
		ballot.Choices = append(ballot.Choices, governance.WeightedChoice{
			OptionIndex: uint16(optionIndex),
			Weight:      w,
		})
	}
	if ballot.Kind == "" {
		switch {
		case len(ballot.Choices) > 0:
			ballot.Kind = governance.VoteTypeWeighted.String()
		case len(ballot.Options) > 1:
			ballot.Kind = governance.VoteTypeMultiChoice.String()
		default:
			ballot.Kind = governance.VoteTypeSingleChoice.String()
		}
	}
	return ballot, nil
}
