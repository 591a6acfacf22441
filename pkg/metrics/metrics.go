package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "college_news"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// ArticleMutations counts committed article writes by operation (create|update|delete).
	ArticleMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "article_mutations_total", Help: "Committed article mutations by operation."},
		[]string{"op"},
	)
	// AttachmentOps counts attachment store calls by operation (accept|remove) and result (ok|rejected|error).
	AttachmentOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "attachment_ops_total", Help: "Attachment store operations by operation and result."},
		[]string{"op", "result"},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "login_attempts_total", Help: "Admin login attempts by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ArticleMutations)
	reg.MustRegister(AttachmentOps)
	reg.MustRegister(LoginAttempts)
}
