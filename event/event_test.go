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


package event_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/leapfrog/event"
)

const testEvtType event.EventType = "test.event"

func receive(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case evt, ok := <-ch:
		require.True(t, ok, "event channel closed unexpectedly")
		return evt
	case <-time.After(1 * time.Second):
		require.FailNow(t, "timeout waiting for event")
	}
	return event.Event{}
}

func TestEventBusSingleSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 999))
	evt := receive(t, subCh)
	assert.Equal(t, testEvtType, evt.Type)
	assert.Equal(t, 999, evt.Data)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 999))
	assert.Equal(t, 999, receive(t, sub1Ch).Data)
	assert.Equal(t, 999, receive(t, sub2Ch).Data)
}

func TestEventBusOtherTypeNotDelivered(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(event.VoteCastEventType)
	eb.Publish(event.TokensStakedEventType, event.NewEvent(event.TokensStakedEventType, nil))
	select {
	case <-subCh:
		t.Fatal("received event of another type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 999))
	select {
	case _, ok := <-subCh:
		// Unsubscribe closes the subscriber channel
		assert.False(t, ok, "received unexpected event")
	case <-time.After(1 * time.Second):
		t.Fatal("subscriber channel was not closed after Unsubscribe")
	}
}

func TestEventBusStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	eb := event.NewEventBus(nil, nil)

	_, subCh1 := eb.Subscribe(testEvtType)
	doneCh := make(chan bool, 1)
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		doneCh <- true
	})

	eb.Publish(testEvtType, event.NewEvent(testEvtType, "before"))
	select {
	case <-doneCh:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("SubscribeFunc did not receive event before Stop")
	}

	eb.Stop()

	// Drain buffered events until the channel closes
	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-subCh1:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, 5*time.Millisecond)

	eb.Publish(testEvtType, event.NewEvent(testEvtType, "after"))
	select {
	case <-doneCh:
		t.Fatal("SubscribeFunc should not have received event after Stop")
	case <-time.After(50 * time.Millisecond):
	}

	// The bus is reusable after Stop
	_, subCh3 := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "new"))
	assert.Equal(t, "new", receive(t, subCh3).Data)

	eb.Stop()
	select {
	case _, ok := <-subCh3:
		assert.False(t, ok, "new subscriber channel should be closed after second Stop")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("new subscriber channel was not closed after second Stop")
	}
}

func TestSubscribeFuncPanicRecovery(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	var testPanicType event.EventType = "test.panic"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()

	var received atomic.Int32
	eb.SubscribeFunc(testPanicType, func(evt event.Event) {
		if received.Add(1) == 1 {
			panic("intentional test panic")
		}
	})

	eb.Publish(testPanicType, event.NewEvent(testPanicType, "panic"))
	eb.Publish(testPanicType, event.NewEvent(testPanicType, "after-panic"))

	require.Eventually(t, func() bool {
		return received.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond,
		"handler should continue processing events after a panic",
	)
}

func TestPublishAsync(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(event.ProposalFinalizedEventType)
	payload := event.ProposalEvent{Realm: "realm", Proposal: "p1", State: "Approved"}
	ok := eb.PublishAsync(
		event.ProposalFinalizedEventType,
		event.NewEvent(event.ProposalFinalizedEventType, payload),
	)
	require.True(t, ok)
	evt := receive(t, subCh)
	assert.Equal(t, payload, evt.Data)
}

func TestEventBusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	eb := event.NewEventBus(registry, nil)
	defer eb.Stop()
	subId, _ := eb.Subscribe(event.VoteCastEventType)
	eb.Publish(event.VoteCastEventType, event.NewEvent(event.VoteCastEventType, nil))
	eb.Publish(event.VoteCastEventType, event.NewEvent(event.VoteCastEventType, nil))

	count, err := testutil.GatherAndCount(registry, "event_bus_events_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	mfs, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		switch mf.GetName() {
		case "event_bus_events_total":
			assert.InDelta(t, 2.0, mf.GetMetric()[0].GetCounter().GetValue(), 0)
		case "event_bus_subscribers":
			assert.InDelta(t, 1.0, mf.GetMetric()[0].GetGauge().GetValue(), 0)
		}
	}
	eb.Unsubscribe(event.VoteCastEventType, subId)
}

func TestGovernanceEventTypesUnique(t *testing.T) {
	seen := make(map[event.EventType]struct{})
	for _, typ := range event.GovernanceEventTypes {
		_, dup := seen[typ]
		assert.False(t, dup, "duplicate event type %s", typ)
		seen[typ] = struct{}{}
	}
	assert.Len(t, seen, 9)
}
