// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "classroom"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	storeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_writes_total",
		Help:      "Store writes by entity, operation and outcome.",
	}, []string{"entity", "op", "outcome"})

	quickMarkFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quick_mark_failures_total",
		Help:      "Per-student attendance writes that failed inside a quick-mark batch.",
	})

	dashboardCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_cache_total",
		Help:      "Dashboard summary cache lookups by result.",
	}, []string{"result"})

	changeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "change_events_total",
		Help:      "Change events handled by the worker by type and outcome.",
	}, []string{"type", "outcome"})
)

// ObserveRequest records one served HTTP request.
func ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// StoreWrite records a write against entity. op is create, update, upsert or delete.
func StoreWrite(entity, op string, err error) {
	storeWrites.WithLabelValues(entity, op, outcome(err)).Inc()
}

// QuickMarkFailures adds n failed writes from a quick-mark batch.
func QuickMarkFailures(n int) {
	quickMarkFailures.Add(float64(n))
}

// DashboardCache records a cache hit or miss.
func DashboardCache(hit bool) {
	if hit {
		dashboardCache.WithLabelValues("hit").Inc()
		return
	}
	dashboardCache.WithLabelValues("miss").Inc()
}

// ChangeEvent records a change event handled by the worker.
func ChangeEvent(typ string, err error) {
	changeEvents.WithLabelValues(typ, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
