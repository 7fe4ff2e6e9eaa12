package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixDedup = "dedup:"
)

const (
	DefaultEventTopic        = "editorial_events"
	DefaultNotificationTopic = "workflow_notifications"
)

// NotificationMetaKey is the per-user key notifications are appended under.
const (
	NotificationMetaKey           = "workflow.notification"
	DefaultNotificationCollection = "user_notifications"
	DashboardChannelPrefix        = "workflow:dashboard:"
)

const (
	StoreBackendMemory   = "memory"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
	StoreBackendMongoDB  = "mongodb"

	DirectoryBackendMemory   = "memory"
	DirectoryBackendPostgres = "postgres"
)

const (
	ChannelEmail     = "email"
	ChannelDashboard = "dashboard"
	ChannelWebhook   = "webhook"
	ChannelKafka     = "kafka"
)

const (
	DefaultDirectoryCacheTTL = 5 * time.Minute
)

const (
	DefaultMongoDBName = "workflow"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultTTLSeconds = 3600
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

const (
	FallbackAllow = "allow"
	FallbackDeny  = "deny"
	FallbackError = "error"
)

// UserIDHeader carries the authenticated CMS user on diagnostics requests.
const UserIDHeader = "X-User-ID"
