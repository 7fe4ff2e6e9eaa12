package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 9090
logging:
  level: debug
broker:
  kafka:
    brokers: ["localhost:9092"]
    group_id: workflow-notifier
notifications:
  on-post-published: true
  on-submit-for-review: true
  on-update-assignees: false
  admin_url: https://cms.example.com/wp-admin
  custom_rules:
    - name: featured_published
      event: publish_post
      condition: payload.featured == true
      text: "Featured: %title%"
      roles: [editor]
      channels: [dashboard]
channels:
  dashboard:
    enabled: true
directory:
  users:
    - id: "5"
      display_name: Bob
      email: bob@example.com
      roles: [editor]
  posts:
    - id: "7"
      title: Hello world
      author_id: "3"
      assignees: ["5"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "kafka", cfg.Broker.Type)
	assert.Equal(t, "editorial_events", cfg.Broker.Kafka.EventTopic)

	assert.True(t, cfg.Notifications.OnPostPublished)
	assert.True(t, cfg.Notifications.OnSubmitForReview)
	assert.False(t, cfg.Notifications.OnUpdateAssignees)
	assert.False(t, cfg.Notifications.OnEditorialComment)
	assert.True(t, cfg.Notifications.Enabled())
	require.Len(t, cfg.Notifications.CustomRules, 1)
	assert.Equal(t, "payload.featured == true", cfg.Notifications.CustomRules[0].Condition)

	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "workflow.notification", cfg.Store.KeyPrefix)
	assert.Equal(t, "workflow:dashboard:", cfg.Channels.Dashboard.ChannelPrefix)
	require.Len(t, cfg.Directory.Posts, 1)
	assert.Equal(t, []string{"5"}, cfg.Directory.Posts[0].Assignees)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("BROKER_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNotificationsEnabled(t *testing.T) {
	assert.False(t, NotificationsConfig{}.Enabled())
	assert.False(t, NotificationsConfig{AdminURL: "https://cms.example.com"}.Enabled())
	assert.True(t, NotificationsConfig{OnEditorialComment: true}.Enabled())
	assert.True(t, NotificationsConfig{CustomRules: []CustomRuleConfig{{Name: "x"}}}.Enabled())
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, ReadTimeout: time.Second, WriteTimeout: time.Second},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Broker: BrokerConfig{
			Type: "kafka",
			Kafka: KafkaConfig{
				Brokers:    []string{"localhost:9092"},
				GroupID:    "workflow",
				EventTopic: "editorial_events",
				Retry:      RetryConfig{Multiplier: 2},
			},
		},
		Notifications: NotificationsConfig{OnPostPublished: true},
		Store:         StoreConfig{Backend: "memory"},
		Directory:     DirectoryConfig{Backend: "memory"},
	}
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: "logging.level",
		},
		{
			name:    "missing brokers",
			mutate:  func(c *Config) { c.Broker.Kafka.Brokers = nil },
			wantErr: "broker.kafka.brokers",
		},
		{
			name: "broker not required when disabled",
			mutate: func(c *Config) {
				c.Notifications = NotificationsConfig{}
				c.Broker = BrokerConfig{}
			},
		},
		{
			name:    "redis store without redis",
			mutate:  func(c *Config) { c.Store.Backend = "redis" },
			wantErr: "store.backend",
		},
		{
			name:    "unknown store backend",
			mutate:  func(c *Config) { c.Store.Backend = "file" },
			wantErr: "store.backend",
		},
		{
			name:    "postgres directory without postgres",
			mutate:  func(c *Config) { c.Directory.Backend = "postgres" },
			wantErr: "directory.backend",
		},
		{
			name:    "email without url",
			mutate:  func(c *Config) { c.Channels.Email = EmailChannelConfig{Enabled: true, Retry: RetryConfig{Multiplier: 2}} },
			wantErr: "channels.email.url",
		},
		{
			name: "relative webhook url",
			mutate: func(c *Config) {
				c.Channels.Webhook = WebhookChannelConfig{Enabled: true, URL: "/hooks", Timeout: time.Second}
			},
			wantErr: "channels.webhook.url",
		},
		{
			name: "custom rule without recipients",
			mutate: func(c *Config) {
				c.Notifications.CustomRules = []CustomRuleConfig{{Name: "x", Event: "publish_post", Text: "t", Channels: []string{"email"}}}
			},
			wantErr: "notifications.custom_rules[0].roles",
		},
		{
			name: "duplicate custom rule",
			mutate: func(c *Config) {
				rule := CustomRuleConfig{Name: "x", Event: "publish_post", Text: "t", Roles: []string{"editor"}, Channels: []string{"email"}}
				c.Notifications.CustomRules = []CustomRuleConfig{rule, rule}
			},
			wantErr: "duplicate rule name",
		},
		{
			name:    "unsupported hash",
			mutate:  func(c *Config) { c.Deduplication.HashAlgorithm = "sha1" },
			wantErr: "deduplication.hash_algorithm",
		},
		{
			name:    "mongodb uri scheme",
			mutate:  func(c *Config) { c.Database.MongoDB = MongoDBConfig{URI: "localhost:27017", Database: "workflow"} },
			wantErr: "mongodb://",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
