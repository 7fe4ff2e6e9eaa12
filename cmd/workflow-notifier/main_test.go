package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow/internal/config"
	"workflow/internal/editorial"
	"workflow/internal/workflow"
	"workflow/pkg/models"
)

func TestBuildEvent(t *testing.T) {
	ev, err := buildEvent(models.EventAddPostMeta, "evt-1", "cli", "", `[7, "assignees", 5]`)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", ev.ID)
	assert.Equal(t, "cli", ev.Source)
	assert.Equal(t, []interface{}{float64(7), "assignees", float64(5)}, ev.Args)
	assert.False(t, ev.Timestamp.IsZero())
	assert.Equal(t, "7", eventKey(ev))

	ev, err = buildEvent(models.EventDraftToPending, "", "cli", `{"post_id": 12}`, "")
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "12", eventKey(ev))

	_, err = buildEvent(models.EventPublishPost, "", "cli", `{"post_id":`, "")
	assert.ErrorContains(t, err, "--payload")

	_, err = buildEvent("", "", "cli", "", "")
	assert.Error(t, err)
}

func TestEventKeyFallsBackToID(t *testing.T) {
	ev := models.NewEventBuilder(models.EventPublishPost).WithID("evt-9").Build()
	assert.Equal(t, "evt-9", eventKey(ev))
}

func TestRenderTable(t *testing.T) {
	assert.Empty(t, renderTable(nil, nil, nil))

	out := renderTable(
		[]string{"Rule", "Links"},
		[][]string{{"assignee_updated", "1"}, {"post_published"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	assert.Contains(t, out, "assignee_updated")
	assert.Contains(t, out, "post_published")
	assert.Contains(t, out, "Links")
}

func TestChannelsInUse(t *testing.T) {
	reg := workflow.NewRegistry()
	_, err := editorial.Setup(config.NotificationsConfig{
		OnPostPublished:    true,
		OnEditorialComment: true,
		CustomRules: []config.CustomRuleConfig{{
			Name: "hooked", Event: models.EventPublishPost, Text: "x",
			Roles: []string{"editor"}, Channels: []string{"webhook", "email"},
		}},
	}, reg, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"email", "dashboard", "webhook"}, channelsInUse(reg))
}
