package socialite

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opToken = "token"
	opUser  = "user"

	resultOK     = "ok"
	resultFailed = "failed" // provider rejected the exchange
	resultError  = "error"  // transport-level failure
)

var (
	metricsOnce sync.Once
	metricsErr  error

	exchangesTotal   *prometheus.CounterVec
	exchangeDuration *prometheus.HistogramVec
)

// RegisterMetrics registers the exchange metrics on the given registry
// (prometheus.DefaultRegisterer when nil). Until it is called the
// library records nothing. Safe to call once per process.
func RegisterMetrics(registry prometheus.Registerer) error {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		exchangesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialite_exchange_total",
			Help: "Token/user exchanges by provider, operation and result",
		}, []string{"provider", "op", "result"})

		exchangeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "socialite_exchange_duration_seconds",
			Help:    "Latency of provider exchanges",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "op"})

		for _, c := range []prometheus.Collector{exchangesTotal, exchangeDuration} {
			if err := registry.Register(c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	return metricsErr
}

func observeExchange(provider, op, result string, d time.Duration) {
	if exchangesTotal == nil {
		return
	}
	exchangesTotal.WithLabelValues(provider, op, result).Inc()
	exchangeDuration.WithLabelValues(provider, op).Observe(d.Seconds())
}
