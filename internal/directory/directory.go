package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/k3a/html2text"

	"workflow/internal/workflow"
	apperrors "workflow/pkg/errors"
)

// Directory answers role lookups and fills in post and comment details for
// rule payloads.
type Directory struct {
	source Source
}

func New(source Source) *Directory {
	return &Directory{source: source}
}

// Lookup maps a role tag to user ids for the post in p.
func (d *Directory) Lookup(ctx context.Context, role string, p workflow.Payload) ([]string, error) {
	switch role {
	case RolePostAuthor:
		if id := workflow.UserID(first(p, "post_author", "author_id", "post.author_id")); id != "" {
			return []string{id}, nil
		}
		post, err := d.post(ctx, p)
		if err != nil {
			return nil, err
		}
		if post.AuthorID == "" {
			return nil, nil
		}
		return []string{post.AuthorID}, nil

	case RoleAssignee, RoleAssignees:
		post, err := d.post(ctx, p)
		if err != nil {
			return nil, err
		}
		return append([]string(nil), post.Assignees...), nil

	default:
		ids, err := d.source.UsersWithRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("role %q: %w", role, err)
		}
		return append([]string(nil), ids...), nil
	}
}

// Hydrate adds title, author, post and comment author details. Keys already
// present in p are kept.
func (d *Directory) Hydrate(ctx context.Context, p workflow.Payload) (workflow.Payload, error) {
	extra := map[string]interface{}{}

	if postID := workflow.UserID(first(p, "post_id", "post.id")); postID != "" {
		post, err := d.source.Post(ctx, postID)
		if err != nil {
			return p, fmt.Errorf("hydrate post %s: %w", postID, err)
		}

		author := d.displayName(ctx, post.AuthorID)
		extra["title"] = post.Title
		extra["author"] = author
		extra["author_id"] = post.AuthorID
		extra["post"] = mergeMap(p["post"], map[string]interface{}{
			"id":        post.ID,
			"title":     post.Title,
			"author":    author,
			"author_id": post.AuthorID,
			"status":    post.Status,
			"assignees": toInterfaces(post.Assignees),
		})
	}

	if comment, ok := p["comment"].(map[string]interface{}); ok {
		details := map[string]interface{}{}
		if authorID := workflow.UserID(comment["author_id"]); authorID != "" {
			details["author"] = d.displayName(ctx, authorID)
		}
		if text, ok := comment["text"].(string); ok {
			comment = copyMap(comment)
			comment["text"] = strings.TrimSpace(html2text.HTML2Text(text))
		}
		extra["comment"] = mergeMap(comment, details)
		p = p.Clone()
		delete(p, "comment")
	}

	if _, ok := extra["post"]; ok {
		p = p.Clone()
		delete(p, "post")
	}

	return p.Merge(extra), nil
}

// Email returns the address for userID, used by the email channel.
func (d *Directory) Email(ctx context.Context, userID string) (string, error) {
	u, err := d.source.User(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.Email == "" {
		return "", apperrors.ErrNotFound.WithDetail("user_id", userID).WithDetail("field", "email")
	}
	return u.Email, nil
}

func (d *Directory) post(ctx context.Context, p workflow.Payload) (Post, error) {
	postID := workflow.UserID(first(p, "post_id", "post.id"))
	if postID == "" {
		return Post{}, apperrors.ErrValidation.WithDetail("field", "post_id")
	}
	return d.source.Post(ctx, postID)
}

// displayName falls back to the id when the user is unknown.
func (d *Directory) displayName(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}
	u, err := d.source.User(ctx, userID)
	if err != nil || u.DisplayName == "" {
		return userID
	}
	return u.DisplayName
}

func first(p workflow.Payload, paths ...string) interface{} {
	for _, path := range paths {
		if v, ok := p.Lookup(path); ok && v != nil {
			return v
		}
	}
	return nil
}

// mergeMap overlays extra under base when base is a map. Keys in base win.
func mergeMap(base interface{}, extra map[string]interface{}) map[string]interface{} {
	out := copyMap(extra)
	if m, ok := base.(map[string]interface{}); ok {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func toInterfaces(ids []string) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
