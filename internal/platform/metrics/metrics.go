package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	voteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "halalan_vote_requests_total",
		Help: "Total ballot submissions received",
	}, []string{"status"})

	voterImportRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "halalan_voter_import_rows_total",
		Help: "Voter roll import rows by outcome",
	}, []string{"result"})

	applicationRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "halalan_application_requests_total",
		Help: "Candidacy application submissions received",
	}, []string{"status"})

	taskProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "halalan_task_processed_total",
		Help: "Side-effect tasks handled by the worker",
	}, []string{"kind", "outcome"})

	taskProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "halalan_task_processing_duration_seconds",
		Help:    "Time to process one side-effect task",
		Buckets: prometheus.DefBuckets,
	})
)

func ObserveVoteRequest(status string) {
	voteRequestsTotal.WithLabelValues(status).Inc()
}

func AddImportedRows(n int) {
	voterImportRowsTotal.WithLabelValues("imported").Add(float64(n))
}

func AddSkippedRows(n int) {
	voterImportRowsTotal.WithLabelValues("skipped").Add(float64(n))
}

func ObserveApplicationRequest(status string) {
	applicationRequestsTotal.WithLabelValues(status).Inc()
}

func IncTaskProcessed(kind, outcome string) {
	taskProcessedTotal.WithLabelValues(kind, outcome).Inc()
}

func ObserveTaskDuration(seconds float64) {
	taskProcessingDuration.Observe(seconds)
}
