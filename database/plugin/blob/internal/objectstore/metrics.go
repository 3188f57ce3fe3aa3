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

package objectstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricNamePrefix = "database_blob_"

type storeMetrics struct {
	ops        *prometheus.CounterVec
	bytesWrite prometheus.Counter
	conflicts  prometheus.Counter
}

func newStoreMetrics(registry prometheus.Registerer) *storeMetrics {
	factory := promauto.With(registry)
	return &storeMetrics{
		ops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricNamePrefix + "object_ops_total",
				Help: "Total number of object store operations",
			},
			[]string{"op"},
		),
		bytesWrite: factory.NewCounter(prometheus.CounterOpts{
			Name: metricNamePrefix + "write_bytes_total",
			Help: "Total number of value bytes written to the blob store",
		}),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: metricNamePrefix + "commit_conflicts_total",
			Help: "Total number of commits rejected because a read key changed",
		}),
	}
}

func (m *storeMetrics) op(name string, size int) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(name).Inc()
	if size > 0 {
		m.bytesWrite.Add(float64(size))
	}
}

func (m *storeMetrics) conflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}
