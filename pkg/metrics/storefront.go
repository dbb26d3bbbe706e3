package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Storefront records gateway-level metrics. A nil *Storefront is a valid no-op.
type Storefront struct {
	httpDuration     *prometheus.HistogramVec
	upstreamDuration *prometheus.HistogramVec
	mergeItems       *prometheus.CounterVec
	guestFallbacks   *prometheus.CounterVec
	checkouts        *prometheus.CounterVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "Latency of gateway HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_upstream_request_duration_seconds",
		Help:    "Latency of calls to the commerce backend.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "method", "status"})
	mergeItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_merge_items_total",
		Help: "Guest items pushed to the backend on login, by outcome.",
	}, []string{"kind", "outcome"})
	guestFallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_guest_fallbacks_total",
		Help: "Reads served from guest state because the backend was unavailable.",
	}, []string{"kind"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkouts_total",
		Help: "Checkout attempts by final state.",
	}, []string{"state"})
	reg.MustRegister(httpDuration, upstreamDuration, mergeItems, guestFallbacks, checkouts)
	return &Storefront{
		httpDuration:     httpDuration,
		upstreamDuration: upstreamDuration,
		mergeItems:       mergeItems,
		guestFallbacks:   guestFallbacks,
		checkouts:        checkouts,
	}
}

// ObserveHTTP records one served request. route is the chi route pattern.
func (s *Storefront) ObserveHTTP(route, method string, status int, d time.Duration) {
	if s == nil || s.httpDuration == nil {
		return
	}
	s.httpDuration.WithLabelValues(normalizeLabel(route), method, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveUpstream records one backend call. status 0 means the request never got a response.
func (s *Storefront) ObserveUpstream(endpoint, method string, status int, d time.Duration) {
	if s == nil || s.upstreamDuration == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	s.upstreamDuration.WithLabelValues(normalizeLabel(endpoint), method, label).Observe(d.Seconds())
}

// IncMergeItem counts one guest item pushed during a login merge.
func (s *Storefront) IncMergeItem(kind string, ok bool) {
	if s == nil || s.mergeItems == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	s.mergeItems.WithLabelValues(normalizeLabel(kind), outcome).Inc()
}

// IncGuestFallback counts a stale read served from guest state.
func (s *Storefront) IncGuestFallback(kind string) {
	if s == nil || s.guestFallbacks == nil {
		return
	}
	s.guestFallbacks.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncCheckout counts a checkout attempt that ended in state.
func (s *Storefront) IncCheckout(state string) {
	if s == nil || s.checkouts == nil {
		return
	}
	s.checkouts.WithLabelValues(normalizeLabel(state)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
