// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fundgate"

var (
	DepositsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deposits_submitted_total",
		Help:      "Deposit submissions by result.",
	}, []string{"result"})

	DepositReviews = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deposit_reviews_total",
		Help:      "Admin approve/reject calls by action and result.",
	}, []string{"action", "result"})

	SagaCompensations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "saga_compensations_total",
		Help:      "Compensation runs triggered by a failed saga.",
	}, []string{"saga"})

	PromoValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promo_validations_total",
		Help:      "Promo code validations by outcome (valid, invalid, error).",
	}, []string{"outcome"})

	PromoCodesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promo_codes_generated_total",
		Help:      "Promo codes created by admins.",
	})

	WithdrawalsRequested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "withdrawals_requested_total",
		Help:      "Withdrawal requests by wallet type and result.",
	}, []string{"wallet_type", "result"})

	NotificationsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_delivered_total",
		Help:      "Workflow events turned into in-app notifications.",
	}, []string{"event_type", "result"})

	RemoteCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_call_duration_seconds",
		Help:      "Latency of calls to the backend-as-a-service.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind", "target"})
)

// Result 把 error 折叠成 "ok" / "error" 标签值
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
