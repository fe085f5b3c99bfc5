// Package metrics defines the client-side Prometheus metrics. It is the
// single source of truth for metric names, labels, and help strings.
//
// Metrics register with the default registry at package init via promauto;
// the stub server exposes them on /metrics, and embedders can scrape them
// through their own registry handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "appart"

// TokenRefreshTotal counts refresh-token exchanges.
// Label:
//   - result: "success", "failure", or "coalesced" (waited on another caller's exchange)
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of refresh-token exchanges, by result.",
	},
	[]string{"result"},
)

// UserCacheTotal counts current-user cache decisions.
// Label:
//   - result: "hit" (fresh), "stale" (served stale, revalidating), or "miss" (network fetch)
var UserCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_cache_total",
		Help:      "Total number of current-user cache reads, by result.",
	},
	[]string{"result"},
)

// APIRequestsTotal counts completed API round-trips as seen by the transport,
// after any refresh-and-retry.
// Label:
//   - status: final HTTP status class ("2xx", "4xx", "5xx") or "error"
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of API requests, by final status class.",
	},
	[]string{"status"},
)

// StatusClass buckets an HTTP status code for the status label.
func StatusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "other"
	}
}
