// Package metrics defines the domain Prometheus metrics for the listing API:
// logins, listing writes and photo normalisation. Per-request HTTP metrics are
// recorded by the echoprometheus middleware in the router.
//
// Metrics are registered with the default Prometheus registry through promauto
// when the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "listing"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// ── Listing metrics ───────────────────────────────────────────────────────────

// ListingMutationsTotal counts successful listing writes.
// Label:
//   - op: "create", "update" or "delete"
var ListingMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_mutations_total",
		Help:      "Total number of listing writes, by operation.",
	},
	[]string{"op"},
)

// ── Image metrics ─────────────────────────────────────────────────────────────

// PhotosNormalizedTotal counts photos passed through the normaliser.
// Label:
//   - result: "ok", "over_budget" (floor quality reached) or "fallback" (input kept)
var PhotosNormalizedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photos_normalized_total",
		Help:      "Total number of photos normalised, labelled by result.",
	},
	[]string{"result"},
)

// PhotoBytes records the encoded size of normalised photos.
var PhotoBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "photo_bytes",
		Help:      "Size in bytes of normalised JPEG photos.",
		Buckets:   prometheus.ExponentialBuckets(16*1024, 2, 8), // 16KiB .. 2MiB
	},
)

// PhotoNormalizeDuration measures time spent decoding and re-encoding a photo.
var PhotoNormalizeDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "photo_normalize_duration_seconds",
		Help:      "Duration of a single photo normalisation.",
		Buckets:   prometheus.DefBuckets,
	},
)
