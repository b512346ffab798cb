// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinary_Toggle(t *testing.T) {
	t.Run("will make it unhealthy", func(t *testing.T) {
		t.Run("if the current state is healthy", func(t *testing.T) {
			var m Binary
			m.Toggle()
			assert.False(t, m.Healthy(context.Background()))
		})
	})

	t.Run("will make it healthy", func(t *testing.T) {
		t.Run("if the current state is unhealthy", func(t *testing.T) {
			var m Binary
			m.Set(false)
			m.Toggle()
			assert.True(t, m.Healthy(context.Background()))
		})
	})
}

type healthyMetric bool

func (m healthyMetric) Healthy(_ context.Context) bool {
	return bool(m)
}

func TestAnd(t *testing.T) {
	testCases := []struct {
		Name     string
		Metrics  []Metric
		Expected bool
	}{
		{Name: "will be healthy if there are no metrics", Expected: true},
		{Name: "will be healthy if all metrics are healthy", Metrics: []Metric{healthyMetric(true), healthyMetric(true)}, Expected: true},
		{Name: "will be unhealthy if one metric is unhealthy", Metrics: []Metric{healthyMetric(true), healthyMetric(false)}, Expected: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			assert.Equal(t, testCase.Expected, And(testCase.Metrics...).Healthy(context.Background()))
		})
	}
}

func TestOr(t *testing.T) {
	testCases := []struct {
		Name     string
		Metrics  []Metric
		Expected bool
	}{
		{Name: "will be unhealthy if there are no metrics", Expected: false},
		{Name: "will be healthy if one metric is healthy", Metrics: []Metric{healthyMetric(false), healthyMetric(true)}, Expected: true},
		{Name: "will be unhealthy if all metrics are unhealthy", Metrics: []Metric{healthyMetric(false), healthyMetric(false)}, Expected: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			assert.Equal(t, testCase.Expected, Or(testCase.Metrics...).Healthy(context.Background()))
		})
	}
}

func TestNot(t *testing.T) {
	t.Run("will negate the metric", func(t *testing.T) {
		assert.False(t, Not(healthyMetric(true)).Healthy(context.Background()))
		assert.True(t, Not(healthyMetric(false)).Healthy(context.Background()))
	})
}

func TestNewHandler(t *testing.T) {
	t.Run("will return 200", func(t *testing.T) {
		t.Run("if the metric is healthy", func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/health/readiness", nil)

			NewHandler(healthyMetric(true)).ServeHTTP(w, r)

			resp := w.Result()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.JSONEq(t, `{"healthy":true}`, w.Body.String())
		})
	})

	t.Run("will return 503", func(t *testing.T) {
		t.Run("if the metric is unhealthy", func(t *testing.T) {
			var m Binary
			m.Toggle()

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/health/liveness", nil)

			NewHandler(&m).ServeHTTP(w, r)

			assert.Equal(t, http.StatusServiceUnavailable, w.Result().StatusCode)
			assert.JSONEq(t, `{"healthy":false}`, w.Body.String())
		})
	})
}
