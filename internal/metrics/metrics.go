// Package metrics 提供 luckpool-registry 服务的 Prometheus 监控指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "luckpool_registry"

// 注册表指标
var (
	// ProjectsCreatedTotal 创建项目总数
	ProjectsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projects_created_total",
			Help:      "创建项目总数",
		},
	)

	// StatusTransitionsTotal 项目状态流转总数
	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "项目状态流转总数",
		},
		[]string{"status"}, // IN_PROGRESS, FINISHED
	)

	// ParticipantsRegisteredTotal 登记参与者总数
	ParticipantsRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "participants_registered_total",
			Help:      "登记参与者总数",
		},
	)

	// MerkleVerificationsTotal Merkle 证明校验总数
	MerkleVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merkle_verifications_total",
			Help:      "Merkle 证明校验总数",
		},
		[]string{"result"}, // valid, invalid
	)

	// LotteryDrawsTotal 开奖尝试总数
	LotteryDrawsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lottery_draws_total",
			Help:      "开奖尝试总数",
		},
		[]string{"result"}, // drawn, rejected
	)
)

// HTTP 指标
var (
	// HTTPRequestsTotal HTTP 请求总数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP 请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP 请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时(秒)",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	// KafkaMessagesConsumedTotal 消费的 Kafka 消息总数
	KafkaMessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_consumed_total",
			Help:      "消费的 Kafka 消息总数",
		},
		[]string{"topic", "result"}, // result: ok, error
	)

	// KafkaMessagesProducedTotal 发送的 Kafka 消息总数
	KafkaMessagesProducedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_produced_total",
			Help:      "发送的 Kafka 消息总数",
		},
		[]string{"topic"},
	)
)

// RecordHTTPRequest 记录一次 HTTP 请求
func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}
