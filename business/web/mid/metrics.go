package mid

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics counts the requests and errors seen by the web api.
type RequestMetrics struct {
	requests *prometheus.CounterVec
	errors   prometheus.Counter
	panics   prometheus.Counter
}

// NewRequestMetrics constructs the request collectors and registers them.
func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	rm := RequestMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "powledger",
			Subsystem: "web",
			Name:      "requests_total",
			Help:      "the number of requests by method and status code",
		}, []string{"method", "code"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "powledger",
			Subsystem: "web",
			Name:      "errors_total",
			Help:      "the number of requests that returned an error",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "powledger",
			Subsystem: "web",
			Name:      "panics_total",
			Help:      "the number of requests that panicked",
		}),
	}

	if reg != nil {
		reg.MustRegister(rm.requests, rm.errors, rm.panics)
	}

	return &rm
}

// Metrics updates program counters. It must sit between Errors and Panics
// so it sees the errors a recovered panic produces.
func Metrics(rm *RequestMetrics) web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)
			if rm == nil {
				return err
			}

			if err != nil {
				rm.errors.Inc()
				if isPanic(err) {
					rm.panics.Inc()
				}
			}

			// Errors are answered further up the chain so no status
			// code is known yet.
			code := "error"
			if err == nil {
				if v, verr := web.GetValues(ctx); verr == nil {
					code = strconv.Itoa(v.StatusCode)
				}
			}
			rm.requests.WithLabelValues(r.Method, code).Inc()

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}

func isPanic(err error) bool {
	return strings.HasPrefix(err.Error(), "PANIC [")
}
