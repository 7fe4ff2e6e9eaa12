package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow/internal/config"
	"workflow/internal/workflow"
	apperrors "workflow/pkg/errors"
)

func seeded() *MemorySource {
	return NewMemorySourceFromConfig(config.DirectoryConfig{
		Users: []config.UserSeed{
			{ID: "3", DisplayName: "Alice", Email: "alice@example.com", Roles: []string{"author"}},
			{ID: "5", DisplayName: "Bob", Email: "bob@example.com", Roles: []string{"editor"}},
			{ID: "9", DisplayName: "Carol", Roles: []string{"editor", "admin"}},
		},
		Posts: []config.PostSeed{
			{ID: "7", Title: "Hello", AuthorID: "3", Status: "pending", Assignees: []string{"5", "9"}},
		},
	})
}

func TestLookup(t *testing.T) {
	dir := New(seeded())
	ctx := context.Background()

	tests := []struct {
		name    string
		role    string
		payload workflow.Payload
		want    []string
		wantErr bool
	}{
		{name: "post author from post", role: RolePostAuthor, payload: workflow.Payload{"post_id": float64(7)}, want: []string{"3"}},
		{name: "post author from payload", role: RolePostAuthor, payload: workflow.Payload{"post_author": "11"}, want: []string{"11"}},
		{name: "assignee", role: RoleAssignee, payload: workflow.Payload{"post_id": "7"}, want: []string{"5", "9"}},
		{name: "assignees", role: RoleAssignees, payload: workflow.Payload{"post": map[string]interface{}{"id": 7}}, want: []string{"5", "9"}},
		{name: "user role", role: "editor", payload: workflow.Payload{}, want: []string{"5", "9"}},
		{name: "unused role", role: "subscriber", payload: workflow.Payload{}, want: nil},
		{name: "assignee without post", role: RoleAssignee, payload: workflow.Payload{}, wantErr: true},
		{name: "unknown post", role: RolePostAuthor, payload: workflow.Payload{"post_id": "404"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dir.Lookup(ctx, tt.role, tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupUnknownPostIsNotFound(t *testing.T) {
	_, err := New(seeded()).Lookup(context.Background(), RoleAssignee, workflow.Payload{"post_id": "404"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestHydratePost(t *testing.T) {
	dir := New(seeded())

	got, err := dir.Hydrate(context.Background(), workflow.Payload{"post_id": float64(7)})
	require.NoError(t, err)

	assert.Equal(t, "Hello", got["title"])
	assert.Equal(t, "Alice", got["author"])
	title, ok := got.Lookup("post.title")
	require.True(t, ok)
	assert.Equal(t, "Hello", title)
	status, _ := got.Lookup("post.status")
	assert.Equal(t, "pending", status)
}

func TestHydrateKeepsEventValues(t *testing.T) {
	dir := New(seeded())
	in := workflow.Payload{
		"post_id": "7",
		"title":   "Event title",
		"post":    map[string]interface{}{"title": "Nested event title"},
	}

	got, err := dir.Hydrate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "Event title", got["title"])
	title, _ := got.Lookup("post.title")
	assert.Equal(t, "Nested event title", title)
	author, _ := got.Lookup("post.author")
	assert.Equal(t, "Alice", author)

	_, touched := in["author"]
	assert.False(t, touched)
}

func TestHydrateComment(t *testing.T) {
	dir := New(seeded())

	got, err := dir.Hydrate(context.Background(), workflow.Payload{
		"post_id": "7",
		"comment": map[string]interface{}{"author_id": float64(5), "text": "Looks <b>good</b>"},
	})
	require.NoError(t, err)

	author, _ := got.Lookup("comment.author")
	assert.Equal(t, "Bob", author)
	text, _ := got.Lookup("comment.text")
	assert.Equal(t, "Looks good", text)
}

func TestHydrateUnknownPost(t *testing.T) {
	in := workflow.Payload{"post_id": "404"}
	got, err := New(seeded()).Hydrate(context.Background(), in)
	assert.Error(t, err)
	assert.Equal(t, in, got)
}

func TestEmail(t *testing.T) {
	dir := New(seeded())

	email, err := dir.Email(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", email)

	_, err = dir.Email(context.Background(), "9")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = dir.Email(context.Background(), "404")
	assert.True(t, apperrors.IsNotFound(err))
}

type countingSource struct {
	Source
	posts int
}

func (c *countingSource) Post(ctx context.Context, id string) (Post, error) {
	c.posts++
	return c.Source.Post(ctx, id)
}

func TestCachedSource(t *testing.T) {
	counter := &countingSource{Source: seeded()}
	cached := NewCachedSource(counter, time.Minute, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := cached.Post(ctx, "7")
		require.NoError(t, err)
		assert.Equal(t, "Hello", p.Title)
	}
	assert.Equal(t, 1, counter.posts)

	_, err := cached.Post(ctx, "404")
	assert.Error(t, err)
	_, err = cached.Post(ctx, "404")
	assert.Error(t, err)
	assert.Equal(t, 3, counter.posts)

	cached.Flush()
	_, err = cached.Post(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, 4, counter.posts)
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(config.DirectoryConfig{Backend: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemorySource{}, src)

	src, err = NewSource(config.DirectoryConfig{CacheTTL: time.Minute, CleanupInterval: time.Minute}, nil)
	require.NoError(t, err)
	assert.IsType(t, &CachedSource{}, src)

	_, err = NewSource(config.DirectoryConfig{Backend: "postgres"}, nil)
	assert.Error(t, err)

	_, err = NewSource(config.DirectoryConfig{Backend: "ldap"}, nil)
	assert.Error(t, err)
}
