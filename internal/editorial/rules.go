// Package editorial defines the built-in editorial workflow notification
// rules and registers them according to configuration.
package editorial

import (
	"fmt"
	"net/url"
	"strings"

	"workflow/internal/constants"
	"workflow/internal/directory"
	"workflow/internal/workflow"
	"workflow/pkg/models"
)

// Rule names.
const (
	RulePostPublished         = "post_published"
	RuleSubmittedForReview    = "post_submitted_for_review"
	RuleAssigneeUpdated       = "assignee_updated"
	RuleEditorialCommentAdded = "editorial_comment_added"
)

// AssigneesMetaKey is the post meta key whose additions signal a new
// assignee.
const AssigneesMetaKey = "assignees"

var defaultChannels = []string{constants.ChannelEmail, constants.ChannelDashboard}

func PostPublished() *workflow.RuleBuilder {
	return workflow.Define(RulePostPublished).
		When(workflow.NamedTrigger{Event: models.EventPublishPost}).
		What(workflow.StaticText("Post published: %title%")).
		Who(workflow.Roles{directory.RolePostAuthor, directory.RoleAssignee}).
		Where(defaultChannels...)
}

func SubmittedForReview() *workflow.RuleBuilder {
	return workflow.Define(RuleSubmittedForReview).
		When(workflow.NamedTrigger{Event: models.EventDraftToPending}).
		What(workflow.StaticText(`Ready for review: "%title%" by %author%`)).
		Who(workflow.Roles{directory.RoleAssignee, "editor"}).
		Where(defaultChannels...)
}

// AssigneeUpdated fires when an assignee is added to a post. adminURL is
// the CMS admin base the edit link points into.
func AssigneeUpdated(adminURL string) *workflow.RuleBuilder {
	return workflow.Define(RuleAssigneeUpdated).
		When(workflow.PredicateTrigger{
			Action:    models.EventAddPostMeta,
			Arity:     3,
			Predicate: assigneeAdded,
		}).
		What(workflow.ComputedText{
			Fields: []string{"title", "post_id"},
			Fn: func(args ...interface{}) string {
				title := workflow.Format(args[0])
				if title == "" {
					title = "#" + workflow.Format(args[1])
				}
				return fmt.Sprintf(`"%s" has been assigned to you`, title)
			},
		}).
		Link(workflow.ActionLink{
			Name:   "edit",
			Label:  workflow.StaticText("Edit post"),
			Target: workflow.LinkFunc(editLink(adminURL)),
			Args: workflow.ComputedArgs(func(p workflow.Payload) map[string]interface{} {
				return map[string]interface{}{"post_id": p["post_id"]}
			}),
			Schema: map[string]workflow.Coercion{"post_id": workflow.Int},
		}).
		Who(workflow.DynamicRecipients{
			Fields: []string{"post_id", "assignee"},
			Fn: func(args ...interface{}) []string {
				return []string{workflow.UserID(args[1])}
			},
		}).
		Where(defaultChannels...)
}

func EditorialCommentAdded() *workflow.RuleBuilder {
	return workflow.Define(RuleEditorialCommentAdded).
		When(workflow.NamedTrigger{Event: models.EventNewEditorialComment}).
		What(workflow.StaticText("New comment on: %post.title% from %comment.author%")).
		Body(workflow.StaticText("%comment.text%")).
		Who(workflow.Roles{directory.RoleAssignees}).
		Who(workflow.Roles{directory.RolePostAuthor}).
		Where(defaultChannels...)
}

// assigneeAdded accepts (object_id, meta_key, meta_value) for the assignees
// meta key only.
func assigneeAdded(args []interface{}) (workflow.Payload, bool) {
	if key, _ := args[1].(string); key != AssigneesMetaKey {
		return nil, false
	}
	return workflow.Payload{
		"post_id":  absint(args[0]),
		"assignee": absint(args[2]),
	}, true
}

// absint mirrors the CMS helper: the absolute integer value, 0 when the
// input is not numeric.
func absint(v interface{}) int64 {
	n, err := workflow.Int.Coerce(v)
	if err != nil {
		return 0
	}
	i := n.(int64)
	if i < 0 {
		return -i
	}
	return i
}

func editLink(adminURL string) func(workflow.Payload) (string, error) {
	base := strings.TrimRight(adminURL, "/")
	return func(p workflow.Payload) (string, error) {
		postID := workflow.UserID(p["post_id"])
		if postID == "" {
			return "", fmt.Errorf("post_id is required")
		}
		return fmt.Sprintf("%s/post.php?post=%s&action=edit", base, url.QueryEscape(postID)), nil
	}
}
