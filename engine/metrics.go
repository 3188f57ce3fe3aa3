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

package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blinklabs-io/leapfrog/governance"
)

type engineMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	finalized  *prometheus.CounterVec
	executed   prometheus.Counter
	voteWeight prometheus.Counter
}

func (e *Engine) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	e.metrics = &engineMetrics{
		operations: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "governance_operations_total",
				Help: "governance operations by name and result kind",
			},
			[]string{"operation", "result"},
		),
		duration: promautoFactory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "governance_operation_duration_seconds",
				Help:    "governance operation latency",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"operation"},
		),
		finalized: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "governance_proposals_finalized_total",
				Help: "proposals closed by outcome state",
			},
			[]string{"state"},
		),
		executed: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "governance_proposals_executed_total",
				Help: "proposals whose action was dispatched",
			},
		),
		voteWeight: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "governance_vote_weight_cast_total",
				Help: "vote weight applied by cast votes",
			},
		),
	}
}

func (m *engineMetrics) observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = governance.ErrorKind(err)
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *engineMetrics) proposalFinalized(state governance.ProposalState) {
	if m == nil {
		return
	}
	m.finalized.WithLabelValues(state.String()).Inc()
}

func (m *engineMetrics) proposalExecuted() {
	if m == nil {
		return
	}
	m.executed.Inc()
}

func (m *engineMetrics) voteCast(weight uint64) {
	if m == nil {
		return
	}
	m.voteWeight.Add(float64(weight))
}
