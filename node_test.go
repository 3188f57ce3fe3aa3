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

package leapfrog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/leapfrog"
	"github.com/blinklabs-io/leapfrog/api"
	"github.com/blinklabs-io/leapfrog/governance"
	"github.com/blinklabs-io/leapfrog/tokenledger"
)

func TestNewInvalidConfig(t *testing.T) {
	testDefs := []struct {
		name string
		opts []leapfrog.ConfigOptionFunc
	}{
		{
			name: "quorum above 100",
			opts: []leapfrog.ConfigOptionFunc{leapfrog.WithDefaultQuorumPercent(101)},
		},
		{
			name: "negative cooldown",
			opts: []leapfrog.ConfigOptionFunc{leapfrog.WithCooldownPeriod(-time.Second)},
		},
		{
			name: "stdout tracing without tracing",
			opts: []leapfrog.ConfigOptionFunc{leapfrog.WithTracingStdout(true)},
		},
	}
	for _, tc := range testDefs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := leapfrog.New(leapfrog.NewConfig(tc.opts...))
			require.Error(t, err)
		})
	}
}

type client struct {
	http *http.Client
	base string
}

func (c *client) post(t *testing.T, path, signer string, body any) int {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, c.base+path, bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.SignerHeader, signer)
	resp, err := c.http.Do(req)
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	require.NoError(t, resp.Body.Close())
	return resp.StatusCode
}

func TestNodeRunAndSweep(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var now atomic.Uint64
	now.Store(1_700_000_000)
	n, err := leapfrog.New(leapfrog.NewConfig(
		leapfrog.WithPrometheusRegistry(prometheus.NewRegistry()),
		leapfrog.WithApiListenAddress("127.0.0.1:0"),
		leapfrog.WithFinalizeInterval(10*time.Millisecond),
		leapfrog.WithClock(governance.ClockFunc(now.Load)),
		leapfrog.WithGenesis([]tokenledger.Allocation{
			{Mint: "community", Account: "alice", Amount: 10_000},
		}),
	))
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(context.Background())
	}()
	select {
	case <-n.Ready():
	case err := <-errCh:
		require.NoError(t, err)
		t.Fatal("node stopped during startup")
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for node startup")
	}

	transport := &http.Transport{}
	c := &client{
		http: &http.Client{Transport: transport, Timeout: 5 * time.Second},
		base: "http://" + n.ApiAddr().String(),
	}
	status := c.post(t, "/v1/realms", "alice", api.Realm{
		Address:       "realm",
		Name:          "Node Realm",
		CommunityMint: "community",
		CommunityMintMaxVoteWeightSource: api.MaxVoteWeightSource{
			Kind:  "Absolute",
			Value: 100,
		},
	})
	require.Equal(t, http.StatusCreated, status)
	status = c.post(t, "/v1/stake", "alice", api.Stake{Realm: "realm", Amount: 400})
	require.Equal(t, http.StatusOK, status)
	status = c.post(t, "/v1/proposals", "alice", api.CreateProposal{
		Realm:            "realm",
		Address:          "prop",
		Name:             "Sweep me",
		Options:          []string{"Yes"},
		VotingPeriodDays: 1,
	})
	require.Equal(t, http.StatusCreated, status)

	now.Add(governance.SecondsPerDay)
	db := n.Engine().Database()
	// Read the stored image directly, GetProposal on the engine would
	// finalize on its own
	require.Eventually(t, func() bool {
		p, err := db.GetProposal("prop", nil)
		return err == nil && p.State == governance.ProposalStateExpired
	}, 5*time.Second, 10*time.Millisecond)

	balance, err := n.Engine().Ledger().BalanceOf(context.Background(), "community", "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(9_600), balance)

	transport.CloseIdleConnections()
	require.NoError(t, n.Stop())
	require.NoError(t, <-errCh)
	// Stopping twice is a no-op
	require.NoError(t, n.Stop())
}
