// Package metrics provides Prometheus metrics for the filehook service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filehook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Object store operation metrics
	storeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filehook_store_operations_total",
			Help: "Total number of object store operations",
		},
		[]string{"operation", "outcome"},
	)

	// Best-effort deletes that failed after the item record was removed
	orphanedObjectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filehook_orphaned_objects_total",
			Help: "Objects left behind by failed post-delete cleanup",
		},
	)
)

// RecordHTTPRequest records one handled HTTP request.
func RecordHTTPRequest(method, path, status string) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordStoreOperation records one object store call and its outcome.
func RecordStoreOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	storeOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordOrphanedObject records an object orphaned by a failed cleanup delete.
func RecordOrphanedObject() {
	orphanedObjectsTotal.Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
