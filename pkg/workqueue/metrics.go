/*
SPDX-License-Identifier: Apache-2.0

Copyright Contributors to the Periscope project.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package workqueue

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	depthGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "periscope_workqueue_depth",
		Help: "Current number of keys ready for delivery, per queue.",
	}, []string{"queue"})

	addsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "periscope_workqueue_adds_total",
		Help: "Total number of keys added, per queue.",
	}, []string{"queue"})

	retriesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "periscope_workqueue_retries_total",
		Help: "Total number of rate-limited requeues, per queue.",
	}, []string{"queue"})
)

func init() {
	prometheus.MustRegister(depthGauge, addsCounter, retriesCounter)
}

type queueMetrics struct {
	depthGauge     prometheus.Gauge
	addsCounter    prometheus.Counter
	retriesCounter prometheus.Counter
}

func newQueueMetrics(name string) queueMetrics {
	return queueMetrics{
		depthGauge:     depthGauge.WithLabelValues(name),
		addsCounter:    addsCounter.WithLabelValues(name),
		retriesCounter: retriesCounter.WithLabelValues(name),
	}
}

func (m queueMetrics) add() {
	m.addsCounter.Inc()
}

func (m queueMetrics) retry() {
	m.retriesCounter.Inc()
}

func (m queueMetrics) depth(length int) {
	m.depthGauge.Set(float64(length))
}
