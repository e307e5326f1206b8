package httpclient

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// requestsTotal はAPI呼び出しの結果別件数。
// outcomeは "success" または Kind.String() の値。
var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "gct_console",
		Subsystem: "api_client",
		Name:      "requests_total",
		Help:      "Total number of backend API calls, by method and outcome.",
	},
	[]string{"method", "outcome"},
)

// requestDuration はAPI呼び出しの所要時間。
var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "gct_console",
		Subsystem: "api_client",
		Name:      "request_duration_seconds",
		Help:      "Duration of backend API calls including interceptors.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// observe は一回の呼び出し結果をメトリクスに記録する。
func observe(method string, err error, elapsed time.Duration) {
	requestsTotal.WithLabelValues(method, outcome(err)).Inc()
	requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.String()
	}
	return KindUnknown.String()
}
