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

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stateMetrics struct {
	transactionsTotal   *prometheus.CounterVec
	transactionDuration prometheus.Histogram
	transferredLamports prometheus.Counter
	airdropLamports     prometheus.Counter
}

// init registers the metrics. A nil registry leaves the metrics unregistered
// but usable
func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.transactionsTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "transactions submitted to the ledger by result",
		},
		[]string{"result"},
	)
	m.transactionDuration = promautoFactory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_transaction_duration_seconds",
			Help:    "time spent executing transactions",
			Buckets: prometheus.DefBuckets,
		},
	)
	m.transferredLamports = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "ledger_system_transfer_lamports_total",
		Help: "lamports moved by system transfers",
	})
	m.airdropLamports = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "ledger_airdrop_lamports_total",
		Help: "lamports created by airdrops",
	})
}
