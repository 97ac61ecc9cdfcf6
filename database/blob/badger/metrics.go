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

import "github.com/prometheus/client_golang/prometheus"

const badgerMetricNamePrefix = "database_blob_"

type blobMetrics struct {
	opsTotal   *prometheus.CounterVec
	bytesTotal *prometheus.CounterVec
}

func newBlobMetrics(registry prometheus.Registerer) *blobMetrics {
	m := &blobMetrics{
		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: badgerMetricNamePrefix + "ops_total",
				Help: "Total number of badger blob operations",
			},
			[]string{"op"},
		),
		bytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: badgerMetricNamePrefix + "bytes_total",
				Help: "Total bytes read/written for badger blob operations",
			},
			[]string{"op"},
		),
	}
	registry.MustRegister(m.opsTotal, m.bytesTotal)
	return m
}

func (m *blobMetrics) observeRead(size int) {
	if m == nil {
		return
	}
	m.opsTotal.WithLabelValues("read").Inc()
	m.bytesTotal.WithLabelValues("read").Add(float64(size))
}

func (m *blobMetrics) observeWrite(size int) {
	if m == nil {
		return
	}
	m.opsTotal.WithLabelValues("write").Inc()
	m.bytesTotal.WithLabelValues("write").Add(float64(size))
}
