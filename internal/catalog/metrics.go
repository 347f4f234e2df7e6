package catalog

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Lookup outcomes recorded in catalog_lookups_total.
const (
	resultFound    = "found"
	resultNotFound = "not_found"
	resultError    = "error"
	resultLimited  = "rate_limited"

	sourceHTTP  = "http"
	sourceCache = "cache"
)

var (
	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_lookups_total",
			Help: "Total number of product catalog lookups by source and result",
		},
		[]string{"source", "result"},
	)

	lookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_lookup_duration_seconds",
			Help:    "Latency of product catalog HTTP lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(lookupsTotal, lookupDuration)
}

func resultFor(err error) string {
	switch {
	case err == nil:
		return resultFound
	case errors.Is(err, ErrProductNotFound):
		return resultNotFound
	case errors.Is(err, errRateLimited):
		return resultLimited
	default:
		return resultError
	}
}
