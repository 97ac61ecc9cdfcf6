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

package registry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const registryMetricNamePrefix = "registry_"

type programMetrics struct {
	instructionsTotal *prometheus.CounterVec
	feeLamportsTotal  *prometheus.CounterVec
	refundedLamports  prometheus.Counter
}

func newProgramMetrics(registry prometheus.Registerer) *programMetrics {
	m := &programMetrics{
		instructionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: registryMetricNamePrefix + "instructions_total",
				Help: "Total number of registry instructions by result",
			},
			[]string{"instruction", "result"},
		),
		feeLamportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: registryMetricNamePrefix + "fee_lamports_total",
				Help: "Total lamports moved out of escrow by decisions",
			},
			[]string{"decision"},
		),
		refundedLamports: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: registryMetricNamePrefix + "refunded_lamports_total",
				Help: "Total lamports refunded to requestors",
			},
		),
	}
	registry.MustRegister(
		m.instructionsTotal,
		m.feeLamportsTotal,
		m.refundedLamports,
	)
	return m
}

func (m *programMetrics) observeInstruction(name string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.instructionsTotal.WithLabelValues(name, result).Inc()
}

func (m *programMetrics) observeDecision(state ApprovalState, fee uint64) {
	if m == nil {
		return
	}
	m.feeLamportsTotal.WithLabelValues(state.String()).Add(float64(fee))
}

func (m *programMetrics) observeRefund(amount uint64) {
	if m == nil {
		return
	}
	m.refundedLamports.Add(float64(amount))
}
