package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	JobsCreated       = prometheus.NewCounter(prometheus.CounterOpts{Name: "scribed_jobs_created_total", Help: "Transcription jobs created"})
	JobsFinished      = prometheus.NewCounter(prometheus.CounterOpts{Name: "scribed_jobs_finished_total", Help: "Jobs that reached finished"})
	JobsFailed        = prometheus.NewCounter(prometheus.CounterOpts{Name: "scribed_jobs_failed_total", Help: "Jobs that reached error"})
	JobsCancelled     = prometheus.NewCounter(prometheus.CounterOpts{Name: "scribed_jobs_cancelled_total", Help: "Jobs cancelled by request"})
	OperationsCreated = prometheus.NewCounter(prometheus.CounterOpts{Name: "scribed_operations_created_total", Help: "LLM operations created"})
	LedgerIncrements  = prometheus.NewCounter(prometheus.CounterOpts{Name: "scribed_ledger_increments_total", Help: "Usage ledger upserts"})
	QuotaRejections   = prometheus.NewCounter(prometheus.CounterOpts{Name: "scribed_quota_rejections_total", Help: "Creations rejected by quota"})
	RetentionHidden   = prometheus.NewCounter(prometheus.CounterOpts{Name: "scribed_retention_hidden_total", Help: "Jobs soft-deleted by retention"})
	RetentionPurged   = prometheus.NewCounter(prometheus.CounterOpts{Name: "scribed_retention_purged_total", Help: "Jobs hard-deleted by retention"})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			JobsCreated,
			JobsFinished,
			JobsFailed,
			JobsCancelled,
			OperationsCreated,
			LedgerIncrements,
			QuotaRejections,
			RetentionHidden,
			RetentionPurged,
		)
	})
	return promhttp.Handler()
}
