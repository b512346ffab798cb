// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tigernet",
			Subsystem: "rest",
			Name:      "requests_total",
			Help:      "Number of requests handled by the dispatcher.",
		},
		[]string{"route", "method", "status"},
	)
	latency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tigernet",
			Subsystem: "rest",
			Name:      "request_duration_seconds",
			Help:      "Time taken by the dispatcher to handle a request.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	var err error
	requests, err = register(reg, requests)
	if err != nil {
		return nil, err
	}
	latency, err = register(reg, latency)
	if err != nil {
		return nil, err
	}

	m := &metrics{
		requests: requests,
		latency:  latency,
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, err
	}
	existing, ok := are.ExistingCollector.(C)
	if !ok {
		return c, err
	}
	return existing, nil
}

func (m *metrics) observe(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
