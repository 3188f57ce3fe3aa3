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

package badger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const badgerMetricNamePrefix = "database_blob_"

type blobMetrics struct {
	getOps     prometheus.Counter
	setOps     prometheus.Counter
	bytesWrite prometheus.Counter
}

func (d *BlobStoreBadger) registerBlobMetrics() *blobMetrics {
	factory := promauto.With(d.promRegistry)
	m := &blobMetrics{
		getOps: factory.NewCounter(prometheus.CounterOpts{
			Name: badgerMetricNamePrefix + "get_ops_total",
			Help: "Total number of blob get operations",
		}),
		setOps: factory.NewCounter(prometheus.CounterOpts{
			Name: badgerMetricNamePrefix + "set_ops_total",
			Help: "Total number of blob set operations",
		}),
		bytesWrite: factory.NewCounter(prometheus.CounterOpts{
			Name: badgerMetricNamePrefix + "write_bytes_total",
			Help: "Total number of value bytes written to the blob store",
		}),
	}
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: badgerMetricNamePrefix + "lsm_size_bytes",
			Help: "Size of the badger LSM tree",
		},
		func() float64 {
			lsm, _ := d.db.Size()
			return float64(lsm)
		},
	)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: badgerMetricNamePrefix + "vlog_size_bytes",
			Help: "Size of the badger value log",
		},
		func() float64 {
			_, vlog := d.db.Size()
			return float64(vlog)
		},
	)
	return m
}

// Metric helpers are safe to call when metrics are disabled

func (m *blobMetrics) get() {
	if m == nil {
		return
	}
	m.getOps.Inc()
}

func (m *blobMetrics) set(size int) {
	if m == nil {
		return
	}
	m.setOps.Inc()
	m.bytesWrite.Add(float64(size))
}
