package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	rule, err := Define("assignee_updated").
		When(PredicateTrigger{Action: "add_post_meta", Arity: 3, Predicate: func([]interface{}) (Payload, bool) { return nil, true }}).
		What(ComputedText{Fields: []string{"title"}, Fn: func(...interface{}) string { return "" }}).
		Link(ActionLink{Name: "edit", Label: StaticText("Edit post"), Target: LinkURL("/edit")}).
		Who(DynamicRecipients{Fields: []string{"assignee"}, Fn: func(...interface{}) []string { return nil }}).
		Who(Roles{"editor"}).
		Where("email").
		Build()
	require.NoError(t, err)

	info := Describe(rule)
	assert.Equal(t, "assignee_updated", info.Name)
	assert.Equal(t, "predicate", info.Trigger)
	assert.Equal(t, "add_post_meta", info.Event)
	assert.False(t, info.Conditional)
	assert.Equal(t, "fn(title)", info.Text)
	assert.Equal(t, []string{"fn(assignee)", "editor"}, info.Recipients)
	assert.Equal(t, []string{"edit"}, info.Links)
	assert.Equal(t, []string{"email"}, info.Channels)

	static := Describe(Rule{Name: "p", Trigger: NamedTrigger{Event: "publish_post"}, Text: StaticText("Post published: %title%")})
	assert.Equal(t, "named", static.Trigger)
	assert.Equal(t, "Post published: %title%", static.Text)
}
