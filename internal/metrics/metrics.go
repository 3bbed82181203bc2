// Package metrics holds the domain counters of the gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Ingest outcomes.
const (
	OutcomeStored      = "stored"
	OutcomeNoFile      = "no_file"
	OutcomeWriteFailed = "write_failed"
)

// Gateway groups the counters recorded by ingestion and retrieval.
// A nil *Gateway is valid and records nothing.
type Gateway struct {
	ingestTotal  *prometheus.CounterVec
	listDegraded prometheus.Counter
	listFailed   prometheus.Counter
}

// NewGateway creates the domain counters and registers them with reg.
func NewGateway(reg prometheus.Registerer) (*Gateway, error) {
	g := &Gateway{
		ingestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docgateway_ingest_total",
				Help: "Total number of ingestion attempts by resource class and outcome.",
			},
			[]string{"class", "outcome"},
		),
		listDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docgateway_list_degraded_total",
			Help: "Listings answered with an empty feed because the blob store was temporarily unavailable.",
		}),
		listFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docgateway_list_failed_total",
			Help: "Listings that failed with a non-transient blob store error.",
		}),
	}

	for _, c := range []prometheus.Collector{g.ingestTotal, g.listDegraded, g.listFailed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Ingested counts one ingestion attempt. class may be empty when no file was given.
func (g *Gateway) Ingested(class, outcome string) {
	if g == nil {
		return
	}
	g.ingestTotal.WithLabelValues(class, outcome).Inc()
}

// ListDegraded counts a listing that fell back to an empty feed.
func (g *Gateway) ListDegraded() {
	if g == nil {
		return
	}
	g.listDegraded.Inc()
}

// ListFailed counts a listing that failed outright.
func (g *Gateway) ListFailed() {
	if g == nil {
		return
	}
	g.listFailed.Inc()
}
