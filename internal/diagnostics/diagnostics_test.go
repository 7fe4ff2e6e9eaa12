package diagnostics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow/internal/logger"
	"workflow/internal/store"
	"workflow/internal/workflow"
	"workflow/pkg/middleware"
	"workflow/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(store.NewMemoryBackend(), nil)
	for i, id := range []string{"n1", "n2", "n3"} {
		require.NoError(t, s.Record(context.Background(), "5", models.Notification{
			ID:        id,
			Rule:      "post_submitted_for_review",
			Recipient: "5",
			Channel:   "dashboard",
			Text:      fmt.Sprintf(`Ready for review: "Post %d" by Alice`, i+1),
			CreatedAt: time.Now().UTC(),
		}))
	}
	return s
}

func TestNotificationsCollector(t *testing.T) {
	c := NewNotificationsCollector(seededStore(t), nil)
	ctx := context.Background()

	assert.Equal(t, "workflow_notifications", c.ID())
	assert.Equal(t, "Workflow Notifications", c.Name())

	got := c.Process(ctx, "5")["notifications"].([]map[string]interface{})
	require.Len(t, got, 3)
	for i, id := range []string{"n1", "n2", "n3"} {
		assert.Equal(t, id, got[i]["id"])
		assert.Equal(t, fmt.Sprintf(`Ready for review: "Post %d" by Alice`, i+1), got[i]["text"])
	}

	empty := c.Process(ctx, "")["notifications"].([]map[string]interface{})
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	assert.Empty(t, c.Process(ctx, "404")["notifications"])
}

func TestNotificationsCollectorKeepsUnknownFields(t *testing.T) {
	backend := store.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, backend.Append(ctx, "5", []byte(`{"id":"legacy","text":"Imported","source_site":"news"}`)))
	require.NoError(t, backend.Append(ctx, "5", []byte(`not json`)))

	c := NewNotificationsCollector(store.New(backend, nil), nil)
	got := c.Process(ctx, "5")["notifications"].([]map[string]interface{})
	require.Len(t, got, 1)
	assert.Equal(t, "legacy", got[0]["id"])
	assert.Equal(t, "news", got[0]["source_site"])
}

type failingLister struct{}

func (failingLister) Records(context.Context, string) ([]map[string]interface{}, error) {
	return nil, errors.New("redis down")
}

func TestNotificationsCollectorStoreError(t *testing.T) {
	got := NewNotificationsCollector(failingLister{}, nil).Process(context.Background(), "5")
	notifications, ok := got["notifications"].([]map[string]interface{})
	require.True(t, ok)
	assert.Empty(t, notifications)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	c := NewNotificationsCollector(failingLister{}, nil)

	require.NoError(t, reg.Register("workflow-notifications", c))
	assert.Error(t, reg.Register("workflow-notifications", c))
	assert.Error(t, reg.Register("", c))

	byKey, ok := reg.Get("workflow-notifications")
	require.True(t, ok)
	byID, ok := reg.Get("workflow_notifications")
	require.True(t, ok)
	assert.Same(t, byKey, byID)

	_, ok = reg.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []Info{{Key: "workflow-notifications", ID: "workflow_notifications", Name: "Workflow Notifications"}}, reg.List())
}

type staticRules []workflow.Rule

func (s staticRules) Rules() []workflow.Rule { return s }

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Register("workflow-notifications", NewNotificationsCollector(seededStore(t), nil)))

	rules := staticRules{{
		Name:       "post_published",
		Trigger:    workflow.NamedTrigger{Event: "publish_post"},
		Text:       workflow.StaticText("Post published: %title%"),
		Recipients: []workflow.RecipientSpec{workflow.Roles{"post_author", "assignee"}},
		Channels:   []string{"email", "dashboard"},
	}}

	router := gin.New()
	router.Use(middleware.CurrentUserMiddleware())
	NewHandler(reg, rules, logger.NopLogger()).RegisterRoutes(router)
	return router
}

func get(router *gin.Engine, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlerRunCollector(t *testing.T) {
	router := newRouter(t)

	w := get(router, "/api/v1/diagnostics/collectors/workflow_notifications", "5")
	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		UserID string `json:"user_id"`
		Data   struct {
			Notifications []models.Notification `json:"notifications"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "workflow_notifications", report.ID)
	assert.Equal(t, "5", report.UserID)
	require.Len(t, report.Data.Notifications, 3)
	assert.Equal(t, "n1", report.Data.Notifications[0].ID)
	assert.Equal(t, "n3", report.Data.Notifications[2].ID)

	w = get(router, "/api/v1/diagnostics/collectors/workflow-notifications", "9")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"notifications":[]`)
}

func TestHandlerErrors(t *testing.T) {
	router := newRouter(t)

	w := get(router, "/api/v1/diagnostics/collectors/workflow_notifications", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	w = get(router, "/api/v1/diagnostics/collectors", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(router, "/api/v1/diagnostics/collectors/nope", "5")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerListings(t *testing.T) {
	router := newRouter(t)

	w := get(router, "/api/v1/diagnostics/collectors", "5")
	require.Equal(t, http.StatusOK, w.Code)
	var infos []Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "workflow-notifications", infos[0].Key)

	w = get(router, "/api/v1/rules", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rules []workflow.RuleInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, "post_published", rules[0].Name)
	assert.Equal(t, []string{"post_author", "assignee"}, rules[0].Recipients)
}
