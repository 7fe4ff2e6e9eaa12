package directory

import "context"

// User is a CMS account as seen by the notification engine.
type User struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
}

type Post struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	AuthorID  string   `json:"author_id"`
	Status    string   `json:"status"`
	Assignees []string `json:"assignees"`
}

// Source reads users and posts from the content platform. Missing rows are
// reported as apperrors.ErrNotFound.
type Source interface {
	User(ctx context.Context, id string) (User, error)
	Post(ctx context.Context, id string) (Post, error)
	UsersWithRole(ctx context.Context, role string) ([]string, error)
}

// Role tags understood without a user-role lookup.
const (
	RolePostAuthor = "post_author"
	RoleAssignee   = "assignee"
	RoleAssignees  = "assignees"
)
