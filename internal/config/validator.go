package config

import (
	"fmt"
	"net/url"
	"strings"

	"workflow/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateLogging(cfg.Logging); err != nil {
		errors = append(errors, err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateDeduplication(cfg.Deduplication); err != nil {
		errors = append(errors, err)
	}

	// Broker, store and channels are only required once the subsystem runs.
	if cfg.Notifications.Enabled() {
		if err := validateBroker(cfg.Broker); err != nil {
			errors = append(errors, err)
		}

		if err := validateStore(cfg.Store, cfg.Database); err != nil {
			errors = append(errors, err)
		}

		if err := validateDirectory(cfg.Directory, cfg.Database); err != nil {
			errors = append(errors, err)
		}

		if err := validateChannels(cfg.Channels); err != nil {
			errors = append(errors, err)
		}

		if err := validateCustomRules(cfg.Notifications.CustomRules); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeout <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeout <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	if cfg.Type == "" {
		return &ValidationError{
			Field:   "broker.type",
			Message: "broker type is required",
		}
	}

	switch cfg.Type {
	case "kafka":
		return validateKafka(cfg.Kafka)
	default:
		return &ValidationError{
			Field:   "broker.type",
			Message: fmt.Sprintf("unknown broker type: %s (supported: kafka)", cfg.Type),
		}
	}
}

func validateKafka(cfg KafkaConfig) error {
	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "broker.kafka.brokers",
			Message: "at least one Kafka broker is required",
		}
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.GroupID == "" {
		return &ValidationError{
			Field:   "broker.kafka.group_id",
			Message: "Kafka consumer group ID is required",
		}
	}

	if cfg.EventTopic == "" {
		return &ValidationError{
			Field:   "broker.kafka.event_topic",
			Message: "event topic is required",
		}
	}

	return validateRetry("broker.kafka.retry", cfg.Retry)
}

func validateRetry(prefix string, cfg RetryConfig) error {
	if cfg.MaxAttempts < 0 {
		return &ValidationError{
			Field:   prefix + ".max_attempts",
			Message: "max_attempts must be non-negative",
		}
	}

	if cfg.InitialInterval < 0 {
		return &ValidationError{
			Field:   prefix + ".initial_interval",
			Message: "initial_interval must be non-negative",
		}
	}

	if cfg.MaxInterval < 0 {
		return &ValidationError{
			Field:   prefix + ".max_interval",
			Message: "max_interval must be non-negative",
		}
	}

	if cfg.MaxInterval > 0 && cfg.InitialInterval > 0 && cfg.MaxInterval < cfg.InitialInterval {
		return &ValidationError{
			Field:   prefix + ".max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	if cfg.Multiplier <= 0 {
		return &ValidationError{
			Field:   prefix + ".multiplier",
			Message: "multiplier must be positive",
		}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Postgres.Host != "" || cfg.Postgres.Port > 0 {
		if err := validatePostgres(cfg.Postgres); err != nil {
			return err
		}
	}

	if cfg.Redis.Host != "" || cfg.Redis.Port > 0 {
		if err := validateRedis(cfg.Redis); err != nil {
			return err
		}
	}

	if cfg.MongoDB.URI != "" {
		if err := validateMongoDB(cfg.MongoDB); err != nil {
			return err
		}
	}

	return nil
}

func validatePostgres(cfg PostgresConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.postgres.host",
			Message: "PostgreSQL host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.User == "" {
		return &ValidationError{
			Field:   "database.postgres.user",
			Message: "PostgreSQL user is required",
		}
	}

	if cfg.DBName == "" {
		return &ValidationError{
			Field:   "database.postgres.dbname",
			Message: "PostgreSQL database name is required",
		}
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		return &ValidationError{
			Field:   "database.postgres.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s (valid: disable, allow, prefer, require, verify-ca, verify-full)", cfg.SSLMode),
		}
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.redis.host",
			Message: "Redis host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateMongoDB(cfg MongoDBConfig) error {
	if cfg.URI == "" {
		return &ValidationError{
			Field:   "database.mongodb.uri",
			Message: "MongoDB URI is required",
		}
	}

	if !strings.HasPrefix(cfg.URI, "mongodb://") && !strings.HasPrefix(cfg.URI, "mongodb+srv://") {
		return &ValidationError{
			Field:   "database.mongodb.uri",
			Message: "MongoDB URI must start with mongodb:// or mongodb+srv://",
		}
	}

	if cfg.Database == "" {
		return &ValidationError{
			Field:   "database.mongodb.database",
			Message: "MongoDB database name is required",
		}
	}

	return nil
}

func validateDeduplication(cfg DeduplicationConfig) error {
	validAlgorithms := map[string]bool{
		"md5": true, "sha256": true,
	}
	if cfg.HashAlgorithm != "" && !validAlgorithms[strings.ToLower(cfg.HashAlgorithm)] {
		return &ValidationError{
			Field:   "deduplication.hash_algorithm",
			Message: fmt.Sprintf("invalid hash algorithm: %s (valid: md5, sha256)", cfg.HashAlgorithm),
		}
	}

	if cfg.TTLSeconds < 0 {
		return &ValidationError{
			Field:   "deduplication.ttl_seconds",
			Message: "TTL must be non-negative",
		}
	}

	validOnError := map[string]bool{
		"allow": true, "deny": true, "error": true,
	}
	if cfg.OnRedisError != "" && !validOnError[strings.ToLower(cfg.OnRedisError)] {
		return &ValidationError{
			Field:   "deduplication.on_redis_error",
			Message: fmt.Sprintf("invalid on_redis_error value: %s (valid: allow, deny, error)", cfg.OnRedisError),
		}
	}

	return nil
}

func validateLogging(cfg LoggingConfig) error {
	switch strings.ToLower(cfg.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return &ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", cfg.Level),
		}
	}

	if cfg.Format != "" && cfg.Format != "json" && cfg.Format != "console" {
		return &ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: json, console)", cfg.Format),
		}
	}

	return nil
}

func validateStore(cfg StoreConfig, db DatabaseConfig) error {
	switch cfg.Backend {
	case constants.StoreBackendMemory:
		return nil
	case constants.StoreBackendRedis:
		if db.Redis.Host == "" {
			return &ValidationError{Field: "store.backend", Message: "redis store requires database.redis"}
		}
	case constants.StoreBackendPostgres:
		if db.Postgres.Host == "" {
			return &ValidationError{Field: "store.backend", Message: "postgres store requires database.postgres"}
		}
	case constants.StoreBackendMongoDB:
		if db.MongoDB.URI == "" {
			return &ValidationError{Field: "store.backend", Message: "mongodb store requires database.mongodb"}
		}
	default:
		return &ValidationError{
			Field:   "store.backend",
			Message: fmt.Sprintf("unknown store backend: %s (supported: memory, redis, postgres, mongodb)", cfg.Backend),
		}
	}
	return nil
}

func validateDirectory(cfg DirectoryConfig, db DatabaseConfig) error {
	switch cfg.Backend {
	case constants.DirectoryBackendMemory:
	case constants.DirectoryBackendPostgres:
		if db.Postgres.Host == "" {
			return &ValidationError{Field: "directory.backend", Message: "postgres directory requires database.postgres"}
		}
	default:
		return &ValidationError{
			Field:   "directory.backend",
			Message: fmt.Sprintf("unknown directory backend: %s (supported: memory, postgres)", cfg.Backend),
		}
	}

	if cfg.CacheTTL < 0 {
		return &ValidationError{Field: "directory.cache_ttl", Message: "cache TTL must be non-negative"}
	}

	return nil
}

func validateChannels(cfg ChannelsConfig) error {
	if cfg.Email.Enabled {
		if cfg.Email.URL == "" {
			return &ValidationError{Field: "channels.email.url", Message: "email channel requires a service URL"}
		}
		if err := validateRetry("channels.email.retry", cfg.Email.Retry); err != nil {
			return err
		}
	}

	if cfg.Webhook.Enabled {
		u, err := url.Parse(cfg.Webhook.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &ValidationError{Field: "channels.webhook.url", Message: "webhook channel requires an absolute URL"}
		}
		if cfg.Webhook.Timeout <= 0 {
			return &ValidationError{Field: "channels.webhook.timeout", Message: "timeout must be positive"}
		}
	}

	if cfg.Kafka.Enabled && cfg.Kafka.Topic == "" {
		return &ValidationError{Field: "channels.kafka.topic", Message: "kafka channel requires a topic"}
	}

	return nil
}

func validateCustomRules(rules []CustomRuleConfig) error {
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		field := fmt.Sprintf("notifications.custom_rules[%d]", i)

		if r.Name == "" {
			return &ValidationError{Field: field + ".name", Message: "rule name is required"}
		}
		if seen[r.Name] {
			return &ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate rule name: %s", r.Name)}
		}
		seen[r.Name] = true

		if r.Event == "" {
			return &ValidationError{Field: field + ".event", Message: "event name is required"}
		}
		if r.Text == "" {
			return &ValidationError{Field: field + ".text", Message: "text template is required"}
		}
		if len(r.Roles) == 0 && r.RecipientField == "" {
			return &ValidationError{Field: field + ".roles", Message: "either roles or recipient_field is required"}
		}
		if len(r.Channels) == 0 {
			return &ValidationError{Field: field + ".channels", Message: "at least one channel is required"}
		}
	}
	return nil
}
