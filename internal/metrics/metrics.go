// Package metrics instruments outbound remote-provider calls with
// Prometheus counters. The registry is instance-scoped so embedding hosts
// can mount it wherever they expose metrics; nothing is registered on the
// global default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Remote operation labels
const (
	OpRefreshToken        = "refresh_token"
	OpListFolder          = "list_folder"
	OpDownload            = "download"
	OpPropertiesGet       = "properties_get"
	OpPropertiesOverwrite = "properties_overwrite"
	OpPropertiesRemove    = "properties_remove"
)

// Recorder counts remote provider calls and their failures
type Recorder struct {
	registry *prometheus.Registry

	remoteCallsTotal  *prometheus.CounterVec
	remoteErrorsTotal *prometheus.CounterVec
}

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
	}

	r.remoteCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "captioner_remote_calls_total",
			Help: "Total number of remote storage provider API calls",
		},
		[]string{"operation"},
	)

	r.remoteErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "captioner_remote_errors_total",
			Help: "Total number of failed remote storage provider API calls",
		},
		[]string{"operation"},
	)

	r.registry.MustRegister(r.remoteCallsTotal, r.remoteErrorsTotal)

	return r
}

// RecordRemoteCall records one outbound provider call
func (r *Recorder) RecordRemoteCall(operation string, success bool) {
	r.remoteCallsTotal.WithLabelValues(operation).Inc()
	if !success {
		r.remoteErrorsTotal.WithLabelValues(operation).Inc()
	}
}

// Handler exposes the recorder's registry in Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, mainly so tests and embedding
// hosts can gather from it directly.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
