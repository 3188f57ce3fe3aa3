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


// Package redisstream forwards event bus events to a redis stream so that
// processes outside the node can follow governance activity
package redisstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blinklabs-io/leapfrog/event"
)

const (
	DefaultStream    = "leapfrog.events"
	DefaultQueueSize = 1000
	DefaultTimeout   = 5 * time.Second
)

// StreamAdder is the subset of the redis client used by the forwarder
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Forwarder is an event.Subscriber that appends every delivered event to a
// redis stream. Delivery never blocks the bus: events are queued and written
// by a background goroutine, and dropped when the queue is full.
type Forwarder struct {
	client    StreamAdder
	logger    *slog.Logger
	queue     chan event.Event
	doneCh    chan struct{}
	stream    string
	queueSize int
	maxLen    int64
	timeout   time.Duration
	mu        sync.RWMutex
	closed    bool
	started   bool
}

type OptionFunc func(*Forwarder)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) OptionFunc {
	return func(f *Forwarder) {
		f.logger = logger
	}
}

// WithStream specifies the stream key events are appended to
func WithStream(stream string) OptionFunc {
	return func(f *Forwarder) {
		f.stream = stream
	}
}

// WithMaxLen caps the stream at approximately maxLen entries
func WithMaxLen(maxLen int64) OptionFunc {
	return func(f *Forwarder) {
		f.maxLen = maxLen
	}
}

// WithQueueSize specifies how many events may wait to be written
func WithQueueSize(size int) OptionFunc {
	return func(f *Forwarder) {
		f.queueSize = size
	}
}

// WithTimeout specifies the timeout of each stream write
func WithTimeout(timeout time.Duration) OptionFunc {
	return func(f *Forwarder) {
		f.timeout = timeout
	}
}

// NewClient connects a redis client from a redis:// URL
func NewClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return redis.NewClient(opt), nil
}

// New creates a forwarder writing through client
func New(client StreamAdder, opts ...OptionFunc) *Forwarder {
	f := &Forwarder{
		client:    client,
		stream:    DefaultStream,
		queueSize: DefaultQueueSize,
		timeout:   DefaultTimeout,
		doneCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		f.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	f.queue = make(chan event.Event, f.queueSize)
	return f
}

// Start registers the forwarder on the bus for the given event types and
// starts the writer. Unsubscribing any of the types, or stopping the bus,
// closes the forwarder.
func (f *Forwarder) Start(bus *event.EventBus, eventTypes ...event.EventType) {
	f.mu.Lock()
	if f.started || f.closed {
		f.mu.Unlock()
		return
	}
	f.started = true
	f.mu.Unlock()
	go f.run()
	for _, eventType := range eventTypes {
		bus.RegisterSubscriber(eventType, f)
	}
}

// Deliver implements event.Subscriber
func (f *Forwarder) Deliver(evt event.Event) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return nil
	}
	select {
	case f.queue <- evt:
	default:
		f.logger.Warn(
			"redis stream queue full, dropping event",
			"component", "redisstream",
			"type", evt.Type,
		)
	}
	return nil
}

// Close implements event.Subscriber. It stops accepting events and waits for
// queued events to be written.
func (f *Forwarder) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	started := f.started
	close(f.queue)
	f.mu.Unlock()
	if started {
		<-f.doneCh
	}
}

func (f *Forwarder) run() {
	defer close(f.doneCh)
	for evt := range f.queue {
		if err := f.write(evt); err != nil {
			f.logger.Error(
				"failed to forward event",
				"component", "redisstream",
				"type", evt.Type,
				"stream", f.stream,
				"error", err,
			)
		}
	}
}

func (f *Forwarder) write(evt event.Event) error {
	values, err := streamValues(evt)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	args := &redis.XAddArgs{
		Stream: f.stream,
		Values: values,
	}
	if f.maxLen > 0 {
		args.MaxLen = f.maxLen
		args.Approx = true
	}
	return f.client.XAdd(ctx, args).Err()
}

func streamValues(evt event.Event) (map[string]any, error) {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", evt.Type, err)
	}
	return map[string]any{
		"type":      string(evt.Type),
		"timestamp": evt.Timestamp.UTC().Format(time.RFC3339Nano),
		"data":      string(data),
	}, nil
}
