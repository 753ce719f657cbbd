// Package metrics exposes client-side counters for requests, refreshes and discarded responses.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pawnshop_client"

// Metrics groups the counters; a nil *Metrics is valid and records nothing.
type Metrics struct {
	Requests  *prometheus.CounterVec
	Refreshes *prometheus.CounterVec
	Stale     *prometheus.CounterVec
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Outbound backend requests by method and HTTP status.",
		}, []string{"method", "status"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refreshes_total",
			Help:      "Access token refresh attempts by outcome.",
		}, []string{"outcome"}),
		Stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer request superseded them.",
		}, []string{"view"}),
	}
	for _, c := range []prometheus.Collector{m.Requests, m.Refreshes, m.Stale} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Request counts one finished round trip; status 0 means a transport failure.
func (m *Metrics) Request(method string, status int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Refresh counts one refresh attempt by outcome: ok, failed, missing, or abandoned when the caller gave up.
func (m *Metrics) Refresh(outcome string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(outcome).Inc()
}

// Discarded counts a superseded response for view.
func (m *Metrics) Discarded(view string) {
	if m == nil {
		return
	}
	m.Stale.WithLabelValues(view).Inc()
}
