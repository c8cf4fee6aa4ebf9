package metrics

import (
	"sync"

	"shareit/internal/events"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shareit"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	httpErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP error responses by error kind.",
		},
		[]string{"kind"},
	)

	domainEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Published domain events by type.",
		},
		[]string{"type"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-user rate limit.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpErrors, domainEvents, rateLimited)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncHTTPError counts an error response of the given domain error kind.
func IncHTTPError(kind string) {
	httpErrors.WithLabelValues(kind).Inc()
}

func IncRateLimited() {
	rateLimited.Inc()
}

// ObserveEvents counts every domain event published on bus.
func ObserveEvents(bus *events.EventBus) {
	for _, eventType := range events.AllEventTypes {
		bus.Subscribe(eventType, func(event *events.Event) error {
			domainEvents.WithLabelValues(event.Type).Inc()
			return nil
		})
	}
}
