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
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/leapfrog/api"
	"github.com/blinklabs-io/leapfrog/database"
	"github.com/blinklabs-io/leapfrog/engine"
	"github.com/blinklabs-io/leapfrog/governance"
	"github.com/blinklabs-io/leapfrog/tokenledger"
)

type cliHarness struct {
	server     *httptest.Server
	configFile string
}

func newCliHarness(t *testing.T) *cliHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	ledger := tokenledger.NewMemory()
	require.NoError(t, ledger.Seed([]tokenledger.Allocation{
		{Mint: "community", Account: "alice", Amount: 10_000},
	}))
	e, err := engine.New(db, ledger)
	require.NoError(t, err)
	server := httptest.NewServer(api.New(e))
	t.Cleanup(server.Close)
	configFile := filepath.Join(t.TempDir(), "leapfrog.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("apiPort: 1\n"), 0o600))
	return &cliHarness{server: server, configFile: configFile}
}

func (h *cliHarness) run(t *testing.T, signer string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(
		[]string{
			"--config", h.configFile,
			"--server", h.server.URL,
			"--signer", signer,
		},
		args...,
	))
	err := cmd.Execute()
	return out.String(), err
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var ret T
	require.NoError(t, json.Unmarshal([]byte(out), &ret))
	return ret
}

func TestClientCommands(t *testing.T) {
	h := newCliHarness(t)

	out, err := h.run(t, "alice",
		"realm", "init",
		"--name", "dao",
		"--community-mint", "community",
		"--max-vote-weight", "Absolute",
		"--max-vote-weight-value", "1000",
	)
	require.NoError(t, err)
	realm := decode[api.Realm](t, out)
	assert.Equal(t, "dao", realm.Name)
	require.NotEmpty(t, realm.Address)

	out, err = h.run(t, "alice", "stake", "--realm", realm.Address, "--amount", "400")
	require.NoError(t, err)
	record := decode[api.TokenOwnerRecord](t, out)
	assert.Equal(t, uint64(400), record.GoverningTokenDepositAmount)

	out, err = h.run(t, "alice",
		"proposal", "create",
		"--realm", realm.Address,
		"--name", "upgrade",
		"--option", "yes",
		"--action", "beef",
	)
	require.NoError(t, err)
	proposal := decode[api.Proposal](t, out)
	assert.Equal(t, governance.ProposalStateActive.String(), proposal.State)

	out, err = h.run(t, "alice",
		"vote", "cast", proposal.Address,
		"--option", "0",
		"--staked", "400",
	)
	require.NoError(t, err)
	vote := decode[api.VoteRecord](t, out)
	assert.Equal(t, uint64(400), vote.VoteWeight)
	assert.Equal(t, "SingleChoice", vote.Vote.Kind)

	out, err = h.run(t, "alice", "vote", "list", proposal.Address)
	require.NoError(t, err)
	assert.Len(t, decode[[]api.VoteRecord](t, out), 1)

	out, err = h.run(t, "alice", "balance", "community", "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(9600), decode[api.Balance](t, out).Balance)

	out, err = h.run(t, "alice", "account", proposal.Address)
	require.NoError(t, err)
	account := decode[api.Account](t, out)
	require.NotNil(t, account.Proposal)
	assert.Equal(t, "beef", account.Proposal.Action)

	// Errors from the API carry their kind
	_, err = h.run(t, "alice",
		"vote", "cast", proposal.Address,
		"--option", "0",
		"--staked", "400",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already_voted")

	_, err = h.run(t, "mallory", "proposal", "execute", proposal.Address)
	require.Error(t, err)
}

func TestBuildBallot(t *testing.T) {
	testDefs := []struct {
		name    string
		kind    string
		options []uint
		choices []string
		want    api.Ballot
		wantErr bool
	}{
		{
			name:    "single",
			options: []uint{1},
			want:    api.Ballot{Kind: "SingleChoice", Options: []uint16{1}},
		},
		{
			name:    "multi",
			options: []uint{0, 2},
			want:    api.Ballot{Kind: "MultiChoice", Options: []uint16{0, 2}},
		},
		{
			name:    "explicit kind",
			kind:    "MultiChoice",
			options: []uint{0},
			want:    api.Ballot{Kind: "MultiChoice", Options: []uint16{0}},
		},
		{
			name:    "weighted",
			choices: []string{"0=60", "1=40"},
			want: api.Ballot{
				Kind: "Weighted",
				Choices: []governance.WeightedChoice{
					{OptionIndex: 0, Weight: 60},
					{OptionIndex: 1, Weight: 40},
				},
			},
		},
		{name: "missing weight", choices: []string{"0"}, wantErr: true},
		{name: "bad option", choices: []string{"x=1"}, wantErr: true},
		{name: "bad weight", choices: []string{"0=-1"}, wantErr: true},
		{name: "option overflow", options: []uint{70000}, wantErr: true},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			got, err := buildBallot(testDef.kind, testDef.options, testDef.choices)
			if testDef.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testDef.want, got)
		})
	}
}

func TestListPlugins(t *testing.T) {
	shouldExit, output := listPlugins("badger", "sqlite")
	assert.False(t, shouldExit)
	assert.Empty(t, output)

	shouldExit, output = listPlugins("list", "list")
	assert.True(t, shouldExit)
	assert.Contains(t, output, "Available blob plugins:")
	assert.Contains(t, output, "badger")
	assert.Contains(t, output, "Available metadata plugins:")
	assert.Contains(t, output, "sqlite")

	assert.Contains(t, listAllPlugins(), "Metadata Storage Plugins:")
}

func TestVersionCommand(t *testing.T) {
	h := newCliHarness(t)
	out, err := h.run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, programName)
}
