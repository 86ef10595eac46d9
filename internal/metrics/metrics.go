// Package metrics implements membership.Metrics on top of Prometheus
// collectors registered against a process-owned registry (never the
// default global registry), so the core stays collector-agnostic and a
// no-op implementation remains available for tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcastellin/clustermemb/internal/membership"
)

// Recorder implements membership.Metrics.
type Recorder struct {
	tableSize   *prometheus.GaugeVec
	gossipSent  *prometheus.CounterVec
	peerRemoved *prometheus.CounterVec
	codecErrors *prometheus.CounterVec
}

// NewRecorder builds a Recorder with its collectors registered against
// reg.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	r := &Recorder{
		tableSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "clustermemb",
				Name:      "table_size",
				Help:      "Number of entries in a node's membership table.",
			},
			[]string{"self"},
		),
		gossipSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clustermemb",
				Name:      "gossip_sent_total",
				Help:      "Total number of gossip digests sent by a node.",
			},
			[]string{"self"},
		),
		peerRemoved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clustermemb",
				Name:      "peer_removed_total",
				Help:      "Total number of peers pruned from a node's table.",
			},
			[]string{"self"},
		),
		codecErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "clustermemb",
				Name:      "codec_errors_total",
				Help:      "Total number of frame decode errors observed by a node, by kind.",
			},
			[]string{"self", "kind"},
		),
	}
	reg.MustRegister(r.tableSize, r.gossipSent, r.peerRemoved, r.codecErrors)
	return r
}

// TableSize implements membership.Metrics.
func (r *Recorder) TableSize(self membership.Address, size int) {
	r.tableSize.WithLabelValues(self.String()).Set(float64(size))
}

// GossipSent implements membership.Metrics.
func (r *Recorder) GossipSent(self membership.Address) {
	r.gossipSent.WithLabelValues(self.String()).Inc()
}

// PeerRemoved implements membership.Metrics.
func (r *Recorder) PeerRemoved(self membership.Address) {
	r.peerRemoved.WithLabelValues(self.String()).Inc()
}

// CodecError implements membership.Metrics.
func (r *Recorder) CodecError(self membership.Address, kind string) {
	r.codecErrors.WithLabelValues(self.String(), kind).Inc()
}

var _ membership.Metrics = (*Recorder)(nil)
