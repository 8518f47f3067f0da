package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explainer_requests_total",
		Help: "Explain requests by entry point and outcome",
	}, []string{"entrypoint", "outcome"}) // outcome=ok|no_text|rejected|error

	urgencyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explainer_urgency_total",
		Help: "Explanations returned per urgency level",
	}, []string{"urgency"})

	urgencyDefaulted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "explainer_urgency_defaulted_total",
		Help: "Model outputs whose urgency was not recognized and fell back to medium",
	})

	scamFlagged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "explainer_scam_flagged_total",
		Help: "Messages the model flagged as scam or suspicious",
	})

	providerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explainer_provider_errors_total",
		Help: "Upstream provider failures by stage",
	}, []string{"stage"}) // stage=stt|pdf|ocr|generate|tts

	partialParses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "explainer_partial_parses_total",
		Help: "Model outputs that did not map cleanly to the response schema",
	})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "explainer_ratelimit_exceeded_total",
		Help: "Requests rejected by the per-client rate limiter",
	})
)

func RecordRequest(entrypoint, outcome string) {
	requestsTotal.WithLabelValues(entrypoint, outcome).Inc()
}

func RecordUrgency(urgency string) {
	urgencyTotal.WithLabelValues(urgency).Inc()
}

func RecordUrgencyDefaulted() {
	urgencyDefaulted.Inc()
}

func RecordScamFlagged() {
	scamFlagged.Inc()
}

func RecordProviderError(stage string) {
	providerErrors.WithLabelValues(stage).Inc()
}

func RecordPartialParse() {
	partialParses.Inc()
}

func RecordRateLimited() {
	rateLimited.Inc()
}
