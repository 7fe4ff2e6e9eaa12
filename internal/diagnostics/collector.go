// Package diagnostics exposes per-user data collectors to CMS
// administrators.
package diagnostics

import (
	"context"

	"workflow/internal/logger"
)

// Collector produces diagnostic data for one user.
type Collector interface {
	ID() string
	Name() string
	Process(ctx context.Context, userID string) map[string]interface{}
}

// NotificationLister is satisfied by *store.Store. Records are returned as
// stored so the report shows every field.
type NotificationLister interface {
	Records(ctx context.Context, recipientID string) ([]map[string]interface{}, error)
}

const (
	NotificationsCollectorID   = "workflow_notifications"
	NotificationsCollectorName = "Workflow Notifications"
)

// NotificationsCollector reports every workflow notification stored for a
// user.
type NotificationsCollector struct {
	store  NotificationLister
	logger logger.Logger
}

func NewNotificationsCollector(store NotificationLister, log logger.Logger) *NotificationsCollector {
	if log == nil {
		log = logger.NopLogger()
	}
	return &NotificationsCollector{store: store, logger: log}
}

func (c *NotificationsCollector) ID() string   { return NotificationsCollectorID }
func (c *NotificationsCollector) Name() string { return NotificationsCollectorName }

// Process never fails. An unknown user or a store error yields an empty
// list.
func (c *NotificationsCollector) Process(ctx context.Context, userID string) map[string]interface{} {
	notifications := []map[string]interface{}{}

	if userID != "" {
		stored, err := c.store.Records(ctx, userID)
		if err != nil {
			c.logger.WarnwCtx(ctx, "Failed to list notifications for diagnostics",
				"user_id", userID,
				"error", err,
			)
		} else if len(stored) > 0 {
			notifications = stored
		}
	}

	return map[string]interface{}{"notifications": notifications}
}
