package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	WorkflowEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_events_total",
			Help: "Total number of editorial events handled by the notification engine (count)",
		},
		[]string{"event", "status"},
	)

	WorkflowRuleMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_rule_matches_total",
			Help: "Total number of trigger matches per rule (count)",
		},
		[]string{"rule"},
	)

	WorkflowRenderFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_render_failures_total",
			Help: "Total number of template or action link render failures (count)",
		},
		[]string{"rule", "stage"},
	)

	WorkflowDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_deliveries_total",
			Help: "Total number of per-recipient channel deliveries (count)",
		},
		[]string{"rule", "channel", "status"},
	)

	WorkflowProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_processing_duration_ms",
			Help:    "Time from event receipt to last delivery in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"status"},
	)

	WorkflowActiveRules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "workflow_active_rules",
			Help: "Number of registered notification rules (count)",
		},
	)

	WorkflowStoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_store_operations_total",
			Help: "Total number of per-user notification store operations (count)",
		},
		[]string{"backend", "operation", "status"},
	)

	WorkflowStoreDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_store_duration_ms",
			Help:    "Duration of notification store operations in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"backend", "operation"},
	)

	DirectoryLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_lookups_total",
			Help: "Total number of user and post directory lookups (count)",
		},
		[]string{"kind", "source"},
	)

	DedupEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_events_total",
			Help: "Total number of events checked against the redelivery guard (count)",
		},
		[]string{"status"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"service", "target"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to DLQ (count)",
		},
		[]string{"service", "topic", "reason"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Total number of times fallback strategies were used (count)",
		},
		[]string{"service", "strategy", "reason"},
	)

	KafkaMessagesReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_read_total",
			Help: "Total number of messages read from Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaMessageSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_message_size_bytes",
			Help:    "Size of Kafka messages in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"service", "topic", "direction"},
	)

	KafkaConsumerLag = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kafka_consumer_lag",
			Help: "Kafka consumer lag (difference between latest offset and committed offset) (count)",
		},
		[]string{"service", "topic", "partition"},
	)

	KafkaReadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_read_duration_ms",
			Help:    "Duration of reading messages from Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)
)

var (
	workflowOnce       sync.Once
	brokerOnce         sync.Once
	circuitBreakerOnce sync.Once
	httpOnce           sync.Once
)

func RegisterWorkflowMetrics() {
	workflowOnce.Do(func() {
		prometheus.MustRegister(WorkflowEventsTotal)
		prometheus.MustRegister(WorkflowRuleMatchesTotal)
		prometheus.MustRegister(WorkflowRenderFailuresTotal)
		prometheus.MustRegister(WorkflowDeliveriesTotal)
		prometheus.MustRegister(WorkflowProcessingDuration)
		prometheus.MustRegister(WorkflowActiveRules)
		prometheus.MustRegister(WorkflowStoreOperationsTotal)
		prometheus.MustRegister(WorkflowStoreDuration)
		prometheus.MustRegister(DirectoryLookupsTotal)
		prometheus.MustRegister(DedupEventsTotal)
		prometheus.MustRegister(FallbackUsageTotal)
	})
}

func RegisterBrokerMetrics() {
	brokerOnce.Do(func() {
		prometheus.MustRegister(RetryAttemptsTotal)
		prometheus.MustRegister(DLQMessagesTotal)
		prometheus.MustRegister(KafkaMessagesReadTotal)
		prometheus.MustRegister(KafkaMessagesWrittenTotal)
		prometheus.MustRegister(KafkaMessageSizeBytes)
		prometheus.MustRegister(KafkaConsumerLag)
		prometheus.MustRegister(KafkaReadDuration)
		prometheus.MustRegister(KafkaWriteDuration)
	})
}

func RegisterCircuitBreakerMetrics() {
	circuitBreakerOnce.Do(func() {
		prometheus.MustRegister(CircuitBreakerState)
		prometheus.MustRegister(CircuitBreakerRequests)
		prometheus.MustRegister(CircuitBreakerFailures)
	})
}

func RegisterHTTPMetrics() {
	httpOnce.Do(func() {
		prometheus.MustRegister(RateLimitRequestsTotal)
	})
}

func IncWorkflowEvent(event, status string) {
	WorkflowEventsTotal.WithLabelValues(event, status).Inc()
}

func IncRuleMatch(rule string) {
	WorkflowRuleMatchesTotal.WithLabelValues(rule).Inc()
}

func IncRenderFailure(rule, stage string) {
	WorkflowRenderFailuresTotal.WithLabelValues(rule, stage).Inc()
}

func IncDelivery(rule, channel, status string) {
	WorkflowDeliveriesTotal.WithLabelValues(rule, channel, status).Inc()
}

func ObserveProcessingDuration(duration time.Duration, status string) {
	WorkflowProcessingDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func SetActiveRules(count int) {
	WorkflowActiveRules.Set(float64(count))
}

func ObserveStoreOperation(backend, operation, status string, duration time.Duration) {
	WorkflowStoreOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	WorkflowStoreDuration.WithLabelValues(backend, operation).Observe(float64(duration.Milliseconds()))
}

func IncDirectoryLookup(kind, source string) {
	DirectoryLookupsTotal.WithLabelValues(kind, source).Inc()
}

func IncDedupEvent(status string) {
	DedupEventsTotal.WithLabelValues(status).Inc()
}

func IncRetryAttempt(service, target string) {
	RetryAttemptsTotal.WithLabelValues(service, target).Inc()
}

func IncFallbackUsage(service, strategy, reason string) {
	FallbackUsageTotal.WithLabelValues(service, strategy, reason).Inc()
}

func IncKafkaMessagesRead(service, topic string) {
	KafkaMessagesReadTotal.WithLabelValues(service, topic).Inc()
}

func IncKafkaMessagesWritten(service, topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Inc()
}

func ObserveKafkaMessageSize(service, topic, direction string, sizeBytes int) {
	KafkaMessageSizeBytes.WithLabelValues(service, topic, direction).Observe(float64(sizeBytes))
}

func SetKafkaConsumerLag(service, topic string, partition int, lag int64) {
	KafkaConsumerLag.WithLabelValues(service, topic, fmt.Sprintf("%d", partition)).Set(float64(lag))
}

func ObserveKafkaReadDuration(service, topic string, duration time.Duration) {
	KafkaReadDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}

func ObserveKafkaWriteDuration(service, topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}
