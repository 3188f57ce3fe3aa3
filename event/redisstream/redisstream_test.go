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


package redisstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/leapfrog/event"
	"github.com/blinklabs-io/leapfrog/event/redisstream"
)

type fakeStream struct {
	mu      sync.Mutex
	entries []*redis.XAddArgs
	err     error
	block   chan struct{}
}

func (s *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return redis.NewStringResult("", s.err)
	}
	s.entries = append(s.entries, a)
	return redis.NewStringResult("1-0", nil)
}

func (s *fakeStream) Entries() []*redis.XAddArgs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*redis.XAddArgs(nil), s.entries...)
}

func TestForwarderWritesEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	stream := &fakeStream{}
	bus := event.NewEventBus(nil, nil)
	fwd := redisstream.New(
		stream,
		redisstream.WithStream("test.stream"),
		redisstream.WithMaxLen(100),
	)
	fwd.Start(bus, event.GovernanceEventTypes...)

	payload := event.VoteEvent{
		Realm:      "realm",
		Proposal:   "p1",
		VoteRecord: "v1",
		Owner:      "alice",
		VoteWeight: 10,
	}
	bus.Publish(event.VoteCastEventType, event.NewEvent(event.VoteCastEventType, payload))
	// Closes the forwarder and flushes the queue
	bus.Stop()

	entries := stream.Entries()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "test.stream", entry.Stream)
	assert.Equal(t, int64(100), entry.MaxLen)
	assert.True(t, entry.Approx)
	values, ok := entry.Values.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(event.VoteCastEventType), values["type"])
	var decoded event.VoteEvent
	require.NoError(t, json.Unmarshal([]byte(values["data"].(string)), &decoded))
	assert.Equal(t, payload, decoded)
}

func TestForwarderIgnoresUnregisteredTypes(t *testing.T) {
	stream := &fakeStream{}
	bus := event.NewEventBus(nil, nil)
	fwd := redisstream.New(stream)
	fwd.Start(bus, event.ProposalExecutedEventType)
	bus.Publish(event.VoteCastEventType, event.NewEvent(event.VoteCastEventType, nil))
	bus.Stop()
	assert.Empty(t, stream.Entries())
}

func TestForwarderWriteErrorKeepsRunning(t *testing.T) {
	stream := &fakeStream{err: errors.New("connection refused")}
	fwd := redisstream.New(stream)
	bus := event.NewEventBus(nil, nil)
	fwd.Start(bus, event.TokensStakedEventType)
	bus.Publish(event.TokensStakedEventType, event.NewEvent(event.TokensStakedEventType, nil))
	bus.Publish(event.TokensStakedEventType, event.NewEvent(event.TokensStakedEventType, nil))
	bus.Stop()
	assert.Empty(t, stream.Entries())
}

func TestForwarderDropsWhenFull(t *testing.T) {
	stream := &fakeStream{block: make(chan struct{})}
	fwd := redisstream.New(stream, redisstream.WithQueueSize(1))
	bus := event.NewEventBus(nil, nil)
	fwd.Start(bus, event.TokensStakedEventType)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 10 {
			bus.Publish(
				event.TokensStakedEventType,
				event.NewEvent(event.TokensStakedEventType, nil),
			)
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow stream")
	}
	close(stream.block)
	bus.Stop()
	// One in flight plus one queued
	assert.LessOrEqual(t, len(stream.Entries()), 2)
}

func TestForwarderCloseWithoutStart(t *testing.T) {
	fwd := redisstream.New(&fakeStream{})
	fwd.Close()
	fwd.Close()
	require.NoError(t, fwd.Deliver(event.NewEvent(event.VoteCastEventType, nil)))
}

func TestNewClient(t *testing.T) {
	client, err := redisstream.NewClient("redis://localhost:6379/0")
	require.NoError(t, err)
	assert.NoError(t, client.Close())
	_, err = redisstream.NewClient("not a url")
	require.Error(t, err)
}
