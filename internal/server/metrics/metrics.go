// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	Requests          *prometheus.CounterVec
	RequestLatencySec *prometheus.HistogramVec
	Submissions       *prometheus.CounterVec
	SubmittedPremium  prometheus.Counter
	CommissionTotal   prometheus.Counter
	LedgerErrors      prometheus.Counter
	PublishErrors     prometheus.Counter
	Exports           *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "premiumkeeper_http_requests_total",
		Help: "HTTP requests by route pattern, method and status.",
	}, []string{"route", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "premiumkeeper_http_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "premiumkeeper_submissions_total",
		Help: "Submission attempts by outcome.",
	}, []string{"outcome"})
	premiumTotal := prometheus.NewCounter(prometheus.CounterOpts{Name: "premiumkeeper_submitted_premium_dkk_total"})
	commissionTotal := prometheus.NewCounter(prometheus.CounterOpts{Name: "premiumkeeper_commission_dkk_total"})
	ledgerErrors := prometheus.NewCounter(prometheus.CounterOpts{Name: "premiumkeeper_ledger_errors_total"})
	publishErrors := prometheus.NewCounter(prometheus.CounterOpts{Name: "premiumkeeper_changelog_publish_errors_total"})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "premiumkeeper_exports_total",
	}, []string{"kind"})

	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requests, latency, submissions, premiumTotal, commissionTotal, ledgerErrors, publishErrors, exports,
	)

	return &Registry{
		reg:               r,
		Requests:          requests,
		RequestLatencySec: latency,
		Submissions:       submissions,
		SubmittedPremium:  premiumTotal,
		CommissionTotal:   commissionTotal,
		LedgerErrors:      ledgerErrors,
		PublishErrors:     publishErrors,
		Exports:           exports,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
