// Package metrics registers the core's prometheus collectors via
// prometheus/client_golang. The handlers update SurveySteps,
// SurveyConfidenceAtCompletion and SRSReviews; EconomyGrants, HTTPRequests
// and HTTPLatency are registered and exported but nothing in the core
// updates them.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SurveySteps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lexicore_survey_steps_total",
		Help: "Survey engine steps processed, by outcome.",
	}, []string{"outcome"})

	SurveyConfidenceAtCompletion = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lexicore_survey_confidence_at_completion",
		Help:    "Confidence score recorded when a survey session completes.",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	SRSReviews = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lexicore_srs_reviews_total",
		Help: "Spaced-repetition reviews processed, by algorithm and rating.",
	}, []string{"algorithm", "rating"})

	EconomyGrants = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lexicore_economy_grants_total",
		Help: "Currency grants recorded, by currency type and source.",
	}, []string{"currency", "source"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lexicore_http_requests_total",
		Help: "HTTP requests handled, by route and status class.",
	}, []string{"route", "status"})

	HTTPLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lexicore_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// Register adds every collector to the default prometheus registry. Called
// once at process start.
func Register() {
	prometheus.MustRegister(
		SurveySteps,
		SurveyConfidenceAtCompletion,
		SRSReviews,
		EconomyGrants,
		HTTPRequests,
		HTTPLatency,
	)
}
