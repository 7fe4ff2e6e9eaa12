package editorial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow/internal/config"
	"workflow/internal/workflow"
	apperrors "workflow/pkg/errors"
	"workflow/pkg/models"
)

func TestAssigneeTrigger(t *testing.T) {
	rule, err := AssigneeUpdated("https://cms.example.com/wp-admin/").Build()
	require.NoError(t, err)

	tests := []struct {
		name    string
		args    []interface{}
		want    workflow.Payload
		matched bool
	}{
		{name: "assignees key", args: []interface{}{float64(7), "assignees", "5"}, want: workflow.Payload{"post_id": int64(7), "assignee": int64(5)}, matched: true},
		{name: "negative ids are made absolute", args: []interface{}{"-7", "assignees", float64(-5)}, want: workflow.Payload{"post_id": int64(7), "assignee": int64(5)}, matched: true},
		{name: "non numeric assignee", args: []interface{}{7, "assignees", "bob"}, want: workflow.Payload{"post_id": int64(7), "assignee": int64(0)}, matched: true},
		{name: "other meta key", args: []interface{}{7, "_edit_lock", "5"}},
		{name: "too few args", args: []interface{}{7, "assignees"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := workflow.Match(rule.Trigger, models.Event{Name: models.EventAddPostMeta, Args: tt.args})
			assert.Equal(t, tt.matched, ok)
			if tt.matched {
				assert.Equal(t, tt.want, p)
			}
		})
	}
}

func TestAssigneeMessage(t *testing.T) {
	rule, err := AssigneeUpdated("https://cms.example.com/wp-admin/").Build()
	require.NoError(t, err)

	msg, linkErrs, err := workflow.RenderMessage(rule, workflow.Payload{"post_id": int64(7), "assignee": int64(5), "title": "Hello world"})
	require.NoError(t, err)
	assert.Empty(t, linkErrs)
	assert.Equal(t, `"Hello world" has been assigned to you`, msg.Text)
	require.Len(t, msg.Links, 1)
	assert.Equal(t, "edit", msg.Links[0].Name)
	assert.Equal(t, "Edit post", msg.Links[0].Label)
	assert.Equal(t, "https://cms.example.com/wp-admin/post.php?post=7&action=edit", msg.Links[0].URL)
	assert.Equal(t, int64(7), msg.Links[0].Args["post_id"])

	untitled, _, err := workflow.RenderMessage(rule, workflow.Payload{"post_id": int64(7)})
	require.NoError(t, err)
	assert.Equal(t, `"#7" has been assigned to you`, untitled.Text)
}

func TestAssigneeLinkDroppedWithoutPost(t *testing.T) {
	rule, err := AssigneeUpdated("https://cms.example.com/wp-admin").Build()
	require.NoError(t, err)

	msg, linkErrs, err := workflow.RenderMessage(rule, workflow.Payload{"title": "x"})
	require.NoError(t, err)
	assert.Empty(t, msg.Links)
	require.Len(t, linkErrs, 1)
	assert.True(t, apperrors.IsRenderValidation(linkErrs[0]))
}

func TestBuiltInRulesDescribe(t *testing.T) {
	tests := []struct {
		builder    *workflow.RuleBuilder
		event      string
		text       string
		recipients []string
	}{
		{PostPublished(), models.EventPublishPost, "Post published: %title%", []string{"post_author", "assignee"}},
		{SubmittedForReview(), models.EventDraftToPending, `Ready for review: "%title%" by %author%`, []string{"assignee", "editor"}},
		{EditorialCommentAdded(), models.EventNewEditorialComment, "New comment on: %post.title% from %comment.author%", []string{"assignees", "post_author"}},
	}

	for _, tt := range tests {
		rule, err := tt.builder.Build()
		require.NoError(t, err)

		info := workflow.Describe(rule)
		assert.Equal(t, tt.event, info.Event, rule.Name)
		assert.Equal(t, tt.text, info.Text, rule.Name)
		assert.Equal(t, tt.recipients, info.Recipients, rule.Name)
		assert.Equal(t, []string{"email", "dashboard"}, info.Channels, rule.Name)
	}

	comment, err := EditorialCommentAdded().Build()
	require.NoError(t, err)
	assert.Equal(t, workflow.StaticText("%comment.text%"), comment.Body)
	assert.Len(t, comment.Recipients, 2)
}

func TestSetupToggles(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.NotificationsConfig
		want []string
	}{
		{name: "nothing enabled", cfg: config.NotificationsConfig{}, want: nil},
		{name: "published only", cfg: config.NotificationsConfig{OnPostPublished: true}, want: []string{RulePostPublished}},
		{
			name: "all",
			cfg: config.NotificationsConfig{
				OnPostPublished:    true,
				OnSubmitForReview:  true,
				OnUpdateAssignees:  true,
				OnEditorialComment: true,
			},
			want: []string{RulePostPublished, RuleSubmittedForReview, RuleAssigneeUpdated, RuleEditorialCommentAdded},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := workflow.NewRegistry()
			names, err := Setup(tt.cfg, reg, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names)
			assert.Equal(t, len(tt.want), reg.Len())
		})
	}
}

func TestSetupSkipsBrokenRules(t *testing.T) {
	reg := workflow.NewRegistry()
	require.NoError(t, reg.Register(mustBuild(t, PostPublished())))

	cfg := config.NotificationsConfig{
		OnPostPublished:   true,
		OnSubmitForReview: true,
		CustomRules: []config.CustomRuleConfig{
			{Name: "bad_condition", Event: "publish_post", Condition: "payload.", Text: "x", Roles: []string{"editor"}, Channels: []string{"email"}},
			{Name: "no_channels", Event: "publish_post", Text: "x", Roles: []string{"editor"}},
			{Name: "featured", Event: "publish_post", Condition: `payload.featured == true`, Text: "Featured: %title%", Roles: []string{"editor"}, Channels: []string{"dashboard"}},
		},
	}

	names, err := Setup(cfg, reg, nil)
	require.Error(t, err)
	assert.Equal(t, []string{RuleSubmittedForReview, "featured"}, names)
	assert.True(t, apperrors.IsConfiguration(err))
	assert.Equal(t, 3, reg.Len())
}

func mustBuild(t *testing.T, b *workflow.RuleBuilder) workflow.Rule {
	t.Helper()
	rule, err := b.Build()
	require.NoError(t, err)
	return rule
}

func TestRecipientsFrom(t *testing.T) {
	assert.Equal(t, []string{"5"}, recipientsFrom(float64(5)))
	assert.Equal(t, []string{"5", "9"}, recipientsFrom([]interface{}{"5", float64(9)}))
	assert.Equal(t, []string{"a"}, recipientsFrom([]string{"a"}))
	assert.Equal(t, []string{""}, recipientsFrom(nil))
}
