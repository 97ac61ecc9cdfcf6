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

package event

import (
	"github.com/prometheus/client_golang/prometheus"
)

const eventMetricNamePrefix = "event_bus_"

type eventMetrics struct {
	eventsTotal    *prometheus.CounterVec
	subscribers    *prometheus.GaugeVec
	deliveryErrors *prometheus.CounterVec
}

func newEventMetrics(promRegistry prometheus.Registerer) *eventMetrics {
	m := &eventMetrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: eventMetricNamePrefix + "events_total",
				Help: "Total number of events published by type",
			},
			[]string{"type"},
		),
		subscribers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: eventMetricNamePrefix + "subscribers",
				Help: "Current number of subscribers by type and kind",
			},
			[]string{"type", "kind"},
		),
		deliveryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: eventMetricNamePrefix + "delivery_errors_total",
				Help: "Total number of failed or dropped event deliveries",
			},
			[]string{"type", "kind"},
		),
	}
	promRegistry.MustRegister(m.eventsTotal, m.subscribers, m.deliveryErrors)
	return m
}

func (m *eventMetrics) published(eventType EventType) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(string(eventType)).Inc()
}

func (m *eventMetrics) subscriberAdded(eventType EventType, kind string) {
	if m == nil {
		return
	}
	m.subscribers.WithLabelValues(string(eventType), kind).Inc()
}

func (m *eventMetrics) subscriberRemoved(eventType EventType, kind string) {
	if m == nil {
		return
	}
	m.subscribers.WithLabelValues(string(eventType), kind).Dec()
}

func (m *eventMetrics) deliveryError(eventType EventType, kind string) {
	if m == nil {
		return
	}
	m.deliveryErrors.WithLabelValues(string(eventType), kind).Inc()
}

func (m *eventMetrics) reset() {
	if m == nil {
		return
	}
	m.subscribers.Reset()
}
